package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrQueueFull   = fmt.Errorf("queue is full")
	ErrStopped     = fmt.Errorf("engine stopped")

	ErrInvalidEventValue = fmt.Errorf("invalid event value")
	ErrNoThrowsRecorded  = fmt.Errorf("no throws recorded")
	ErrNoActiveSession   = fmt.Errorf("no active session")
	ErrSessionEnded      = fmt.Errorf("session has ended")
	ErrForwardedEvent    = fmt.Errorf("forwarded events are not counted")
	ErrInvalidConfig     = fmt.Errorf("invalid configuration")
)
