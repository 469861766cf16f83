package repository

import "errors"

var (
	// ErrLedgerEmpty describes a device ledger key that does not exist or
	// has no members. No function in the engine returns it: the drain path
	// reseeds an empty ledger and the merge path treats it as a no-op.
	ErrLedgerEmpty = errors.New("ledger empty")
	// ErrHotPoolEmpty describes a hot pool that holds no entries. No
	// function in the engine returns it: HotPoolService.Load reports an
	// empty build with its own error.
	ErrHotPoolEmpty = errors.New("hot pool empty")
	// ErrContentIndexUnavailable is returned when the content index
	// transport fails; callers treat it the same as an empty result.
	ErrContentIndexUnavailable = errors.New("content index unavailable")
)
