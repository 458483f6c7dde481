package models

import "time"

type Participant struct {
	ID          int       `json:"id"`
	PoolID      int       `json:"pool_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
