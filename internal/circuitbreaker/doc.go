// Package circuitbreaker tracks whether the remote highlight feed should be
// tried at all.
//
// The tracker is deliberately permissive. While enabled, every call may go to
// the remote feed. Once disabled by a failure streak, a call is still let
// through when either condition holds:
//
//   - the cooldown has elapsed since the last success
//   - the retry budget is not exhausted (each such call spends one retry)
//
// Usage:
//
//	tracker := circuitbreaker.NewTracker(cfg, guard, bus)
//	if tracker.ShouldRetry() {
//	    // call remote...
//	    if ok {
//	        tracker.RecordSuccess()
//	    } else {
//	        tracker.RecordFailure()
//	    }
//	}
package circuitbreaker
