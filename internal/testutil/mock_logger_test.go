package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
)

func TestMockLogger_Records(t *testing.T) {
	m := NewMockLogger()
	m.Info("cycle started", logging.String("cycle_id", "abc"))
	m.Warn("duplicate time filter skipped")

	assert.True(t, m.HasMessage("info", "cycle started"))
	assert.True(t, m.HasMessage("warn", "time filter"))
	assert.False(t, m.HasMessage("error", "cycle started"))

	infos := m.Filter("info")
	assert.Len(t, infos, 1)
	assert.Equal(t, "abc", infos[0].Field("cycle_id"))
	assert.Nil(t, infos[0].Field("missing"))

	m.Clear()
	assert.Empty(t, m.GetMessages())
}

//Personal.AI order the ending
