package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/moffa90/go-hf2/bootloader"
)

var _ bootloader.Logger = (*Adapter)(nil)

func TestAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := NewAdapter(zap.New(core))

	adapter.Debug("bin info", "page_size", 256)
	adapter.Info("flashing complete", "written", 3)
	adapter.Error("flash aborted", "error", "boom")

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, int64(256), entries[0].ContextMap()["page_size"])
		assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
		assert.Equal(t, "flash aborted", entries[2].Message)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zapcore.InfoLevel)

	logger.Debug("hidden")
	logger.Info("shown", zap.Int("pages", 2))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "pages")
}
