package market

import "time"

// Clock supplies the time every state transition is gated against. The
// engine never schedules anything; it only reads the clock at call time.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now()
}
