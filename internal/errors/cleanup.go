// Package errors provides utilities for error handling in fieldtrace.
package errors

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// DeferClose properly closes an io.Closer with logging.
// Use this in defer statements to avoid suppressing close errors.
func DeferClose(logger zerolog.Logger, closer io.Closer, msg string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Err(err).Msg(msg)
	}
}

// CloseAll closes every closer and returns the first error encountered.
// Later failures are logged so none of them is silently dropped.
func CloseAll(logger zerolog.Logger, closers ...io.Closer) error {
	var first error
	for _, c := range closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			if first == nil {
				first = err
				continue
			}
			logger.Warn().Err(err).Msg("additional close failure")
		}
	}
	return first
}

// Must panics if error is not nil.
// Use only for initialization code where failure should halt the program.
func Must(err error, msg string) {
	if err != nil {
		panic(fmt.Sprintf("%s: %v", msg, err))
	}
}
