package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
)

func TestMockLoggerRecordsEntries(t *testing.T) {
	log := NewMockLogger()
	log.Info("indexed", logging.String("source", "a.txt"))
	log.Warn("publish failed")
	log.Warn("publish failed")

	assert.Len(t, log.GetMessages(), 3)
	assert.Equal(t, 2, log.CountByLevel("warn"))
	assert.True(t, log.HasMessage("info", "indexed"))
	assert.False(t, log.HasMessage("error", "indexed"))
}

func TestMockLoggerReset(t *testing.T) {
	log := NewMockLogger()
	log.Error("boom")
	log.Reset()
	assert.Empty(t, log.GetMessages())
}
