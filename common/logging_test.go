package common

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := SetupLogger(&LoggingOpts{JSON: true, Service: "aoss-provision", Version: "v1.2.3", Output: &buf})

	log.Debug("hidden")
	log.Info("collection active", "name", "action-movies")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "collection active", line["msg"])
	assert.Equal(t, "aoss-provision", line["service"])
	assert.Equal(t, "v1.2.3", line["version"])
	assert.Equal(t, "action-movies", line["name"])
}

func TestSetupLogger_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	log := SetupLogger(&LoggingOpts{Debug: true, Output: &buf})

	log.Debug("polling", "attempt", 3)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "attempt=3")
	assert.NotContains(t, buf.String(), "service=")
}
