// Package dispatch provides the fork-join work dispatcher used by every
// simulation phase.
//
// A [Pool] owns a fixed set of worker goroutines. A dispatch call splits a
// linear index range [0, count) into one contiguous chunk per worker (chunk
// sizes differ by at most one) and runs a task on each chunk:
//
//	pool := dispatch.New(0) // GOMAXPROCS workers
//	defer pool.Close()
//
//	err := pool.Dispatch(len(cells), func(begin, end int) {
//		for i := begin; i < end; i++ {
//			cells[i] = 0
//		}
//	})
//
// [For] is the typed variant: the per-call context is passed to the task
// instead of being captured.
//
// # Ordering
//
// Chunks run in no particular order. Blocking calls return only after every
// chunk has finished, which is the barrier the simulation phases rely on.
// Tasks must not dispatch on the pool that is running them.
package dispatch
