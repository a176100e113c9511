package acquire

import "github.com/jhau/s7150duo/internal/errors"

const (
	ErrInstrumentRead   = errors.ErrorCode("acquire_instrument_read_failed")
	ErrRecordWrite      = errors.ErrorCode("acquire_record_write_failed")
	ErrFlushFailed      = errors.ErrorCode("acquire_flush_failed")
	ErrBadFlushInterval = errors.ErrorCode("acquire_bad_flush_interval")
)
