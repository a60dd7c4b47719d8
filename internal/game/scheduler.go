package game

import "time"

// Scheduler runs f once after d. There is no cancellation; callbacks
// re-validate engine state when they fire. f may run on any goroutine,
// including the caller's; the engine never holds its lock while scheduling.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TimerScheduler schedules callbacks on the runtime timer heap.
type TimerScheduler struct{}

// AfterFunc implements Scheduler with time.AfterFunc.
func (TimerScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }
