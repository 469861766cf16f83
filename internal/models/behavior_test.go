package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationWeights(t *testing.T) {
	cases := map[Operation]float64{
		OperationWatch:   0.1,
		OperationCollect: 0.2,
		OperationShare:   0.3,
		OperationStar:    0.2,
		OperationDislike: -0.5,
	}
	for op, want := range cases {
		assert.Equal(t, want, op.Weight(), "operation %s", op)
	}
}

func TestOperationValid(t *testing.T) {
	assert.True(t, OperationWatch.Valid())
	assert.True(t, OperationDislike.Valid())
	assert.False(t, Operation(0).Valid())
	assert.False(t, Operation(6).Valid())
	assert.False(t, Operation(-1).Valid())
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "watch", OperationWatch.String())
	assert.Equal(t, "dislike", OperationDislike.String())
	assert.Contains(t, Operation(99).String(), "99")
}
