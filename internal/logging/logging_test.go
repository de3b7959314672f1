package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestComponent_AddsField(t *testing.T) {
	var buf bytes.Buffer
	old := log.Logger
	t.Cleanup(func() { log.Logger = old })
	log.Logger = zerolog.New(&buf)

	l := Component("deduce")
	l.Warn().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"deduce"`)
	assert.Contains(t, buf.String(), "hello")
}

func TestSetup_LevelByVerbosity(t *testing.T) {
	oldLevel := zerolog.GlobalLevel()
	old := log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(oldLevel)
		log.Logger = old
	})

	cases := map[int]zerolog.Level{
		0: zerolog.WarnLevel,
		1: zerolog.InfoLevel,
		2: zerolog.DebugLevel,
		5: zerolog.TraceLevel,
	}
	for v, want := range cases {
		var buf bytes.Buffer
		Setup(v, &buf)
		assert.Equal(t, want, zerolog.GlobalLevel(), "verbosity=%d", v)
	}
}

func TestOperationStart_LogsDuration(t *testing.T) {
	oldLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(oldLevel) })
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	done := OperationStart(zerolog.New(&buf), "read")
	done()

	assert.Contains(t, buf.String(), `"operation":"read"`)
	assert.Contains(t, buf.String(), `"duration"`)
}
