package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerEntryPending(t *testing.T) {
	assert.True(t, LedgerEntry{Score: 0.01}.Pending())
	assert.False(t, LedgerEntry{Score: 0}.Pending())
	assert.False(t, LedgerEntry{Score: -1.5}.Pending())
}

func TestShardEngineString(t *testing.T) {
	assert.Equal(t, "v1", ShardV1.String())
	assert.Equal(t, "v2", ShardV2.String())
}
