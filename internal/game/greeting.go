package game

import "time"

// Greeting returns the welcome line for the local hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning!"
	case h < 18:
		return "Good afternoon!"
	default:
		return "Good evening!"
	}
}
