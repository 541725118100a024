package packsched

import "context"

// Producer is an external source of packs (a "company").
//
// WaitForPack blocks until the next pack is available. A nil pack means
// the producer is permanently exhausted; the scheduler never calls
// WaitForPack again after that. A non-nil pack with no problems is a valid
// pack: it is solved on arrival and returned in its turn.
//
// SolvedPack receives every pack exactly once, in exactly the order
// WaitForPack returned them. Implementations may verify this and report a
// violation by returning an error; any error from either method is fatal
// for the whole run and is returned by Scheduler.Stop.
//
// The context is cancelled when the run aborts. Implementations that block
// should honour it, otherwise Stop waits for the blocked call to return.
type Producer[P any] interface {
	WaitForPack(ctx context.Context) (*Pack[P], error)
	SolvedPack(ctx context.Context, pack *Pack[P]) error
}
