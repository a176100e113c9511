package dvm

import "github.com/jhau/s7150duo/internal/errors"

const (
	ErrOpenFailed      = errors.ErrorCode("dvm_open_failed")
	ErrConfigureFailed = errors.ErrorCode("dvm_configure_failed")
	ErrReadFailed      = errors.ErrorCode("dvm_read_failed")
	ErrShortResponse   = errors.ErrorCode("dvm_short_response")
	ErrCloseFailed     = errors.ErrorCode("dvm_close_failed")
	ErrInvalidState    = errors.ErrorCode("dvm_invalid_state")
	ErrInvalidMode     = errors.ErrorCode("dvm_invalid_mode")
)
