package console

import "github.com/jhau/s7150duo/internal/errors"

const (
	ErrNoTerminal = errors.ErrorCode("console_no_terminal")
	ErrRawMode    = errors.ErrorCode("console_raw_mode_failed")
)
