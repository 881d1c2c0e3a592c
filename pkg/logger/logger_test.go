package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" warn "))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("desconocido"))
}

func TestNew_Nivel(t *testing.T) {
	l := New(Config{Env: "production", Level: "error", Service: "pos-stock-api", Out: &bytes.Buffer{}})
	assert.Equal(t, zerolog.ErrorLevel, l.Zerolog().GetLevel())
	assert.Equal(t, zerolog.ErrorLevel, l.Component("ledger").GetLevel())
}

func TestComponent_CamposEstructurados(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Service: "pos-stock-api", Out: &buf})

	sub := l.Component("ledger")
	sub.Info().Str("product_id", "p-1").Msg("movimiento registrado")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pos-stock-api", entry["service"])
	assert.Equal(t, "ledger", entry["component"])
	assert.Equal(t, "p-1", entry["product_id"])
	assert.Equal(t, "movimiento registrado", entry["message"])
}

func TestDebug_FiltradoPorNivel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Out: &buf})

	l.Debug().Msg("no visible")
	assert.Zero(t, buf.Len())
}
