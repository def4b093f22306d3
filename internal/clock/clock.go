// Package clock abstracts the time source so time dependent rules (gate
// decision dates, history timestamps, overdue checks) can be tested.
package clock

import "time"

// Clock is an interface for time operations.
type Clock interface {
	Now() time.Time
}

// Real implements Clock using the system time.
type Real struct{}

// Now returns the current UTC time.
func (Real) Now() time.Time { return time.Now().UTC() }

// Fixed is a Clock that always returns the same instant.
type Fixed struct {
	Time time.Time
}

// Now returns the fixed time.
func (f Fixed) Now() time.Time { return f.Time }

var (
	_ Clock = Real{}
	_ Clock = Fixed{}
)
