package packsched

// reportInternalError reports a non-fatal internal condition.
//
// Internal errors are things like a worker failing to pin itself to a CPU
// or a solver acquisition that needed a retry. They never stop the run.
// If no handler is registered, the error is silently ignored.
func (s *Scheduler[P, M]) reportInternalError(e error) {
	if s.opts.OnInternalError != nil {
		s.opts.OnInternalError(e)
	}
}
