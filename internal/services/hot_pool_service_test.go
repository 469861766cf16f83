package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestHotPoolService(members []string) *HotPoolService {
	mirror := make(map[string]float64, len(members))
	for i, id := range members {
		mirror[id] = float64(i)
	}
	return &HotPoolService{mirror: mirror, members: members}
}

func TestSampleHotReturnsRequestedCount(t *testing.T) {
	svc := newTestHotPoolService([]string{"v1", "v2", "v3", "v4", "v5"})

	sample := svc.SampleHot(3)

	assert.Len(t, sample, 3)
}

func TestSampleHotHasNoDuplicates(t *testing.T) {
	svc := newTestHotPoolService([]string{"v1", "v2", "v3", "v4", "v5"})

	sample := svc.SampleHot(5)

	seen := make(map[string]bool, len(sample))
	for _, id := range sample {
		assert.False(t, seen[id], "duplicate member %s", id)
		seen[id] = true
	}
}

func TestSampleHotCapsAtMirrorSize(t *testing.T) {
	svc := newTestHotPoolService([]string{"v1", "v2"})

	sample := svc.SampleHot(10)

	assert.Len(t, sample, 2)
	assert.ElementsMatch(t, []string{"v1", "v2"}, sample)
}

func TestSampleHotEmptyMirror(t *testing.T) {
	svc := newTestHotPoolService(nil)

	assert.Empty(t, svc.SampleHot(5))
}

func TestSizeReflectsMirror(t *testing.T) {
	svc := newTestHotPoolService([]string{"v1", "v2", "v3"})
	assert.Equal(t, 3, svc.Size())
}
