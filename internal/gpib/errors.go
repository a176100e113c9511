package gpib

import "github.com/jhau/s7150duo/internal/errors"

const (
	ErrDialFailed  = errors.ErrorCode("gpib_dial_failed")
	ErrAddressBind = errors.ErrorCode("gpib_address_bind_failed")
	ErrWriteFailed = errors.ErrorCode("gpib_write_failed")
	ErrReadFailed  = errors.ErrorCode("gpib_read_failed")
	ErrCloseFailed = errors.ErrorCode("gpib_close_failed")
)
