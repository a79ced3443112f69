package loader

import (
	"time"
	"unicode/utf8"

	"github.com/okian/reelrank/pkg/logger"
)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithDelimiter sets the field separator. Anything other than a single
// character is ignored.
func WithDelimiter(delim string) Option {
	return func(l *Loader) {
		if utf8.RuneCountInString(delim) == 1 {
			l.delimiter = delim
		}
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithMaxLineBytes bounds the length of a single record line.
func WithMaxLineBytes(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxLineBytes = n
		}
	}
}

// WithClock overrides the time source stamped on loaded snapshots.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}
