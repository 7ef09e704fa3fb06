package main

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// UpdateWidgetOnMainThread schedules a widget update function to run on the main Fyne thread.
// This is required because Fyne widgets cannot be updated directly from goroutines.
// The callback should copy data quickly and return as fast as possible.
func UpdateWidgetOnMainThread(callback func()) {
	if callback == nil {
		return
	}
	fyne.Do(callback)
}

// throttle limits how often the player goroutine schedules redraws.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// Allow reports whether at least interval passed since the last allowed
// call. force always allows and restarts the interval.
func (t *throttle) Allow(now time.Time, force bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !force && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}
