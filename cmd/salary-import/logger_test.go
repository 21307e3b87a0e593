package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_CopiesErrorsOnly(t *testing.T) {
	var console, errs bytes.Buffer
	log := newLogger(envLocal, &console, &errs).With("import_id", "imp-1").WithGroup("chunk")

	log.Debug("planning")
	log.Info("chunk sent", "index", 1)
	log.Error("chunk submit failed", "index", 2)

	assert.Equal(t, 3, strings.Count(console.String(), "\n"))

	lines := strings.Split(strings.TrimSpace(errs.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "chunk submit failed", rec["msg"])
	assert.Equal(t, "imp-1", rec["import_id"])
	assert.Equal(t, map[string]interface{}{"index": float64(2)}, rec["chunk"])
}

func TestNewLogger_ProdHidesDebug(t *testing.T) {
	var console bytes.Buffer
	log := newLogger(envProd, &console, nil)

	log.Debug("noise")
	log.Info("ready")

	assert.NotContains(t, console.String(), "noise")
	assert.Contains(t, console.String(), "ready")
}

func TestNewLogger_DevIsJSON(t *testing.T) {
	var console bytes.Buffer
	newLogger(envDev, &console, nil).Info("ready")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(console.Bytes(), &rec))
	assert.Equal(t, "ready", rec["msg"])
}
