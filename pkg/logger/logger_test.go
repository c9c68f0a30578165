package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, slog.LevelInfo, "xml")
	assert.Error(t, err)
}

func TestNew_RedactsSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, slog.LevelInfo, FormatJSON)
	require.NoError(t, err)

	log.Info("sign-in attempt",
		"email", "jane@example.com",
		"password", "hunter22",
		"authorization", "Bearer abc.def.ghi",
		"detail", "upstream said token=abc123",
	)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "jane@example.com", record["email"])
	assert.Equal(t, redactedPlaceholder, record["password"])
	assert.Equal(t, redactedPlaceholder, record["authorization"])
	assert.Equal(t, "upstream said token="+redactedPlaceholder, record["detail"])
}

func TestSanitizeLogMessage(t *testing.T) {
	assert.Equal(t, "password="+redactedPlaceholder+" ok", SanitizeLogMessage("password: hunter22 ok"))
	assert.Equal(t, "nothing to hide", SanitizeLogMessage("nothing to hide"))
}

func TestIsSensitiveKey(t *testing.T) {
	assert.True(t, IsSensitiveKey("Set-Cookie"))
	assert.True(t, IsSensitiveKey("access_token"))
	assert.False(t, IsSensitiveKey("correlation_id"))
}
