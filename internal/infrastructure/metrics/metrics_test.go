package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue busca en el registro el valor de un counter con esas etiquetas.
func counterValue(t *testing.T, c *Collectors, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := c.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCollectors_AuditFailed(t *testing.T) {
	c := New("inventory")
	c.AuditFailed("product", "CREATE")
	c.AuditFailed("product", "CREATE")
	c.AuditFailed("user", "DELETE")

	assert.Equal(t, 2.0, counterValue(t, c, "inventory_audit_failures_total", map[string]string{"entity": "product", "action": "CREATE"}))
	assert.Equal(t, 1.0, counterValue(t, c, "inventory_audit_failures_total", map[string]string{"entity": "user", "action": "DELETE"}))
}

func TestCollectors_HTTPRequestAgrupaPorClase(t *testing.T) {
	c := New("inventory")
	c.HTTPRequest("GET", 200)
	c.HTTPRequest("GET", 204)
	c.HTTPRequest("GET", 404)
	c.HTTPRequest("POST", 500)

	name := "inventory_http_requests_total"
	assert.Equal(t, 2.0, counterValue(t, c, name, map[string]string{"method": "GET", "status": "2xx"}))
	assert.Equal(t, 1.0, counterValue(t, c, name, map[string]string{"method": "GET", "status": "4xx"}))
	assert.Equal(t, 1.0, counterValue(t, c, name, map[string]string{"method": "POST", "status": "5xx"}))
}
