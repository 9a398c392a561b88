// Package metrics holds Prometheus collectors for identity store operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for adapter operations.
type Metrics struct {
	UsersCreated    prometheus.Counter
	SessionsCreated prometheus.Counter
	SessionsDeleted prometheus.Counter
	TokensConsumed  prometheus.Counter
	OperationErrors *prometheus.CounterVec
}

// New registers and returns adapter metrics collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "identikit_users_created_total",
			Help: "Total number of users created",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "identikit_sessions_created_total",
			Help: "Total number of sessions created",
		}),
		SessionsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "identikit_sessions_deleted_total",
			Help: "Total number of sessions deleted, including forced sign-outs",
		}),
		TokensConsumed: factory.NewCounter(prometheus.CounterOpts{
			Name: "identikit_verification_tokens_consumed_total",
			Help: "Total number of verification tokens consumed",
		}),
		OperationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "identikit_operation_errors_total",
			Help: "Total number of failed adapter operations",
		}, []string{"operation"}),
	}
}
