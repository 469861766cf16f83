package models

// LedgerEntry is a single (video id, signed score) pair stored in a
// device's recommendation ledger. Sign carries meaning: positive is
// pending, non-positive is recently served.
type LedgerEntry struct {
	VideoID string
	Score   float64
}

// Pending reports whether the entry is in the "not yet served" half of
// the ledger.
func (e LedgerEntry) Pending() bool {
	return e.Score > 0
}

// ShardEngine identifies which ledger scoring variant a device uses.
type ShardEngine int

const (
	// ShardV1 devices (ids starting with hex '0'-'7') use the conditional
	// merge increment and the unscaled served-score encoding.
	ShardV1 ShardEngine = iota
	// ShardV2 devices use the unconditional merge increment and the
	// rescaled served-score encoding.
	ShardV2
)

func (s ShardEngine) String() string {
	if s == ShardV1 {
		return "v1"
	}
	return "v2"
}

// RecommendationItem is a single outgoing recommendation, optionally
// enriched with a resolved publish id (§4.8 / C8).
type RecommendationItem struct {
	VideoID   string `json:"video_id"`
	PublishID string `json:"publish_id,omitempty"`
}
