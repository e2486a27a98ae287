package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fluyo/backend/internal/apperrors"
)

const namespace = "fluyo"

// Metrics counts authentication outcomes on its own registry.
type Metrics struct {
	registry        *prometheus.Registry
	logins          *prometheus.CounterVec
	authentications *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		authentications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "token_validations_total",
			Help:      "Bearer token validations by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.logins,
		m.authentications,
	)

	return m
}

func (m *Metrics) ObserveLogin(err error) {
	m.logins.WithLabelValues(Outcome(err)).Inc()
}

func (m *Metrics) ObserveAuthentication(err error) {
	m.authentications.WithLabelValues(Outcome(err)).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var outcomes = []struct {
	err   error
	label string
}{
	{apperrors.ErrTokenGeneration, "token_generation_error"},
	{apperrors.ErrUserNotFound, "user_not_found"},
	{apperrors.ErrIncorrectPassword, "incorrect_password"},
	{apperrors.ErrHashFormat, "hash_format_error"},
	{apperrors.ErrInvalidToken, "invalid_token"},
	{apperrors.ErrTokenExpired, "token_expired"},
	{apperrors.ErrTokenNotFound, "token_not_found"},
	{apperrors.ErrTokenRevoked, "token_revoked"},
}

// Outcome maps an auth error to a bounded label value.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return "error"
}
