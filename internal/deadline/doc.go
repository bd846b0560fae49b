// Package deadline races a call against a timer.
//
// The losing call is not cancelled. A call that outlives its deadline keeps
// running in its own goroutine and its result is dropped when it arrives:
//
//	matches, err := deadline.Race(ctx, 10*time.Second, client.Recommended)
//	if deadline.IsTimeout(err) {
//	    // fall back
//	}
package deadline
