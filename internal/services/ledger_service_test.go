package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/streamreco/recommend-engine/internal/models"
)

func TestSortedEntriesOrdersDescending(t *testing.T) {
	working := map[string]float64{"a": 1.0, "b": 5.0, "c": -2.0}
	out := sortedEntries(working)

	assert.Equal(t, []models.LedgerEntry{
		{VideoID: "b", Score: 5.0},
		{VideoID: "a", Score: 1.0},
		{VideoID: "c", Score: -2.0},
	}, out)
}

func TestAdmitCappedEnforcesBothHalves(t *testing.T) {
	sorted := []models.LedgerEntry{
		{VideoID: "p1", Score: 3},
		{VideoID: "p2", Score: 2},
		{VideoID: "p3", Score: 1},
		{VideoID: "s1", Score: 0},
		{VideoID: "s2", Score: -1},
		{VideoID: "s3", Score: -2},
	}

	admitted := admitCapped(sorted, 2, 1)

	assert.Len(t, admitted, 3)
	assert.Equal(t, "p1", admitted[0].VideoID)
	assert.Equal(t, "p2", admitted[1].VideoID)
	assert.Equal(t, "s1", admitted[2].VideoID)
}

// TestMergeWorkingSetBehaviorBoost reproduces §8 scenario 3: a share
// event boosts a pending candidate already in the ledger and inserts a
// new candidate at its raw log10(popularity).
func TestMergeWorkingSetBehaviorBoost(t *testing.T) {
	existing := []models.LedgerEntry{
		{VideoID: "v1", Score: 2.0},
		{VideoID: "v2", Score: 1.5},
		{VideoID: "v3", Score: 1.0},
	}
	candidates := models.CandidateSet{"v2": 1_000_000, "v4": 100_000}

	working := mergeWorkingSet(existing, "vseed", -42, models.ShardV1, models.OperationShare, candidates)

	assert.InDelta(t, 1.5+0.3*math.Log10(1_000_000), working["v2"], 1e-9)
	assert.InDelta(t, math.Log10(100_000), working["v4"], 1e-9)
	assert.Equal(t, -42.0, working["vseed"])
	assert.Equal(t, 2.0, working["v1"])
	assert.Equal(t, 1.0, working["v3"])
}

// TestMergeWorkingSetDislike reproduces §8 scenario 5: the dislike weight
// lowers v2 by 0.5·log10(10⁶) = 3.0, from 1.5 to -1.5, which moves it into
// the served half.
func TestMergeWorkingSetDislike(t *testing.T) {
	existing := []models.LedgerEntry{
		{VideoID: "v1", Score: 2.0},
		{VideoID: "v2", Score: 1.5},
		{VideoID: "v3", Score: 1.0},
	}
	candidates := models.CandidateSet{"v2": 1_000_000, "v4": 100_000}

	working := mergeWorkingSet(existing, "vseed", -42, models.ShardV1, models.OperationDislike, candidates)

	assert.InDelta(t, 1.5+(-0.5)*math.Log10(1_000_000), working["v2"], 1e-9)
	assert.InDelta(t, math.Log10(100_000), working["v4"], 1e-9)
}

// TestMergeWorkingSetV1ResetsAlreadyServed verifies the V1-only rule: a
// candidate already in the served half (score <= 0) gets no increment and
// is instead set to log10(popularity), per §4.5 step 4.
func TestMergeWorkingSetV1ResetsAlreadyServed(t *testing.T) {
	existing := []models.LedgerEntry{{VideoID: "served1", Score: -5.0}}
	candidates := models.CandidateSet{"served1": 1_000_000}

	working := mergeWorkingSet(existing, "vseed", -42, models.ShardV1, models.OperationWatch, candidates)

	assert.InDelta(t, math.Log10(1_000_000), working["served1"], 1e-9)
}

// TestMergeWorkingSetV2IncrementsUnconditionally verifies the V2 merge
// rule applies the increment even to an already-served candidate.
func TestMergeWorkingSetV2IncrementsUnconditionally(t *testing.T) {
	existing := []models.LedgerEntry{{VideoID: "served1", Score: -5.0}}
	candidates := models.CandidateSet{"served1": 1_000_000}

	working := mergeWorkingSet(existing, "vseed", -42, models.ShardV2, models.OperationWatch, candidates)

	assert.InDelta(t, -5.0+0.1*math.Log10(1_000_000), working["served1"], 1e-9)
}

func TestMergeWorkingSetForcesSeedIntoServedHalf(t *testing.T) {
	existing := []models.LedgerEntry{{VideoID: "vseed", Score: 3.0}}
	working := mergeWorkingSet(existing, "vseed", -99, models.ShardV1, models.OperationWatch, models.CandidateSet{})

	assert.Equal(t, -99.0, working["vseed"])
}

// TestAdmitCappedInvariant is a property-style check of §8 invariant 1:
// after admission, no more than the configured cap survives in either
// half, for an oversized working set.
func TestAdmitCappedInvariant(t *testing.T) {
	working := make(map[string]float64, 2000)
	for i := 0; i < 1000; i++ {
		working[pendingID(i)] = float64(i + 1)
	}
	for i := 0; i < 1000; i++ {
		working[servedID(i)] = -float64(i + 1)
	}

	admitted := admitCapped(sortedEntries(working), 500, 500)

	pending, served := 0, 0
	for _, e := range admitted {
		if e.Pending() {
			pending++
		} else {
			served++
		}
	}
	assert.LessOrEqual(t, pending, 500)
	assert.LessOrEqual(t, served, 500)
	assert.Equal(t, 1000, len(admitted))
}

func pendingID(i int) string { return "p" + itoa(i) }
func servedID(i int) string  { return "s" + itoa(i) }

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}
