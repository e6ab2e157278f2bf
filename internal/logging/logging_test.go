package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetup_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Setup("not-a-level", &buf)
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSetup_NilOutDefaultsToStderr(t *testing.T) {
	require.NotPanics(t, func() { Setup("debug", nil) })
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestIsTTY_PipeIsNotATerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	require.False(t, IsTTY(w))
}
