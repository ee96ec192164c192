package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ResolveFormat(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"development sin formato", Config{Env: "development"}, FormatConsole},
		{"production sin formato", Config{Env: "production"}, FormatJSON},
		{"json explícito en development", Config{Env: "development", Format: "JSON"}, FormatJSON},
		{"console explícito en production", Config{Env: "production", Format: " console "}, FormatConsole},
		{"formato desconocido cae a Env", Config{Env: "staging", Format: "xml"}, FormatJSON},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cfg.ResolveFormat())
		})
	}
}

func TestBuild_JSONConAppYComponent(t *testing.T) {
	var buf bytes.Buffer
	l := build(Config{Env: "development", Format: FormatJSON, App: "inventory-manager", Output: &buf}).Named("http")

	l.Info().Str("path", "/health").Msg("ok")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "inventory-manager", line["app"])
	assert.Equal(t, "http", line["component"])
	assert.Equal(t, "/health", line["path"])
	assert.Equal(t, "ok", line["message"])
}

func TestBuild_ConsoleNoEsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := build(Config{Env: "production", Format: FormatConsole, Output: &buf})

	l.Warn().Msg("pool lento")

	out := buf.String()
	assert.Contains(t, out, "pool lento")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
}

func TestNewWriter_FiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "warn")

	l.Info().Msg("descartado")
	l.Debug().Msg("descartado")
	assert.Zero(t, buf.Len())

	l.Error().Msg("visible")
	assert.Contains(t, buf.String(), `"message":"visible"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
	assert.Equal(t, "info", parseLevel("").String())
	assert.Equal(t, "info", parseLevel("ruidoso").String())
}
