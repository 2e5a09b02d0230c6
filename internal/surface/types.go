package surface

import (
	"time"
)

// Config defines content-surface runtime limits.
type Config struct {
	Timeout       time.Duration // per-evaluation limit
	EnableConsole bool          // allow console.log/warn/error
}

// DefaultConfig returns the limits used for embedded surfaces.
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		EnableConsole: true,
	}
}

// LogEntry captures console output from surface scripts.
type LogEntry struct {
	Level   string
	Message string
	Time    time.Time
}

// Call records one invocation of a registered callback: the callback name
// and the JSON-encoded first argument.
type Call struct {
	Callback string
	Argument string
}
