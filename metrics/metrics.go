// Package metrics exposes prometheus counters for the resolution engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bracket_pools",
		Name:      "resolutions_applied_total",
		Help:      "Matchup resolutions committed, by result type.",
	}, []string{"result_type"})

	resolutionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bracket_pools",
		Name:      "resolutions_failed_total",
		Help:      "Matchup resolution passes rolled back, by reason.",
	}, []string{"reason"})

	correctionsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bracket_pools",
		Name:      "corrections_applied_total",
		Help:      "Correction passes committed.",
	})

	correctionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bracket_pools",
		Name:      "corrections_failed_total",
		Help:      "Correction passes rolled back, by reason.",
	}, []string{"reason"})

	auditArchives = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bracket_pools",
		Name:      "audit_archives_total",
		Help:      "Audit trail snapshots exported to object storage.",
	})
)

func ResolutionApplied(resultType string) { resolutionsApplied.WithLabelValues(resultType).Inc() }
func ResolutionFailed(reason string)      { resolutionsFailed.WithLabelValues(reason).Inc() }
func CorrectionApplied()                  { correctionsApplied.Inc() }
func CorrectionFailed(reason string)      { correctionsFailed.WithLabelValues(reason).Inc() }
func AuditArchived()                      { auditArchives.Inc() }
