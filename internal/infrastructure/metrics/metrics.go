// Package metrics agrupa los collectors prometheus de la API y su registro.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collectors métricas de mutaciones y auditoría.
type Collectors struct {
	Registry *prometheus.Registry

	mutations     *prometheus.CounterVec
	auditFailures *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

// New crea un registro propio (no el global) con los collectors de proceso y Go.
func New(namespace string) *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collectors{
		Registry: reg,
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Mutaciones aplicadas con éxito por entidad y acción.",
		}, []string{"entity", "action"}),
		auditFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_failures_total",
			Help:      "Entradas de auditoría que no se pudieron escribir.",
		}, []string{"entity", "action"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método y clase de status.",
		}, []string{"method", "status"}),
	}
	reg.MustRegister(c.mutations, c.auditFailures, c.httpRequests)
	return c
}

// MutationApplied cuenta una mutación aplicada.
func (c *Collectors) MutationApplied(entity, action string) {
	c.mutations.WithLabelValues(entity, action).Inc()
}

// AuditFailed cuenta una entrada de auditoría descartada.
func (c *Collectors) AuditFailed(entity, action string) {
	c.auditFailures.WithLabelValues(entity, action).Inc()
}

// HTTPRequest cuenta una petición; status se agrupa por clase (2xx, 4xx...).
func (c *Collectors) HTTPRequest(method string, status int) {
	class := "5xx"
	switch {
	case status < 300:
		class = "2xx"
	case status < 400:
		class = "3xx"
	case status < 500:
		class = "4xx"
	}
	c.httpRequests.WithLabelValues(method, class).Inc()
}
