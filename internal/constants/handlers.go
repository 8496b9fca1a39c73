// Package constants provides shared constants used across the codebase.
package constants

// Web server constants
const (
	// DefaultWebHost is the address the web server binds to
	DefaultWebHost = "127.0.0.1"

	// DefaultWebPort is the port the web server listens on
	DefaultWebPort = 8080
)

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100

	// EventHistoryLimit is the number of past events kept per run for late subscribers
	EventHistoryLimit = 1000
)
