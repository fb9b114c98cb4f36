package reclaim

import "time"

// SetClock replaces the time source used for cooldowns and partial ages.
func (r *Reclaimer) SetClock(now func() time.Time) {
	r.now = now
}
