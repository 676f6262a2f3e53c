package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	log.With(String("component", "facility")).Info(context.Background(), "built",
		Int("units", 3), Float("elapsed", 0.5), Err(errors.New("boom")))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "built", rec["msg"])
	assert.Equal(t, "facility", rec["component"])
	assert.EqualValues(t, 3, rec["units"])
	assert.Equal(t, "boom", rec["error"])
}

func TestLevelFiltersLowerSeverity(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info(context.Background(), "dropped")
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestOrNoop(t *testing.T) {
	assert.NotNil(t, OrNoop(nil))
	l := Noop()
	assert.Equal(t, l, OrNoop(l))
	assert.Equal(t, "", Err(nil).Value)
}
