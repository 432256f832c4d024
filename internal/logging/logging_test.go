package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesComponentAndMessage(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.InfoLevel, "store")

	log.Info().Str("path", "/tmp/x").Msg("saved")

	out := buf.String()
	assert.Contains(t, out, "saved")
	assert.Contains(t, out, "component=store")
	assert.Contains(t, out, "path=/tmp/x")
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.WarnLevel, "store")

	log.Debug().Msg("hidden")
	log.Info().Msg("also hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.InfoLevel, "daemon")

	ctx := NewContext(context.Background(), log)
	got := FromContext(ctx)
	got.Info().Msg("from context")

	require.Contains(t, buf.String(), "from context")
}

func TestFromContext_Missing(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestIsTerminal_RegularFileAndBuffer(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, isTerminal(f))
	assert.False(t, isTerminal(&bytes.Buffer{}))
}

func TestNew_PlainOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clippy.log")
	f, err := os.Create(path)
	require.NoError(t, err)

	log := New(f, zerolog.InfoLevel, "daemon")
	log.Info().Str("entry", "abc").Msg("saved")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "saved")
	assert.NotContains(t, string(data), "\x1b[")
}
