package datafile

import "github.com/jhau/s7150duo/internal/errors"

const (
	ErrCreateFailed = errors.ErrorCode("datafile_create_failed")
	ErrHeaderTwice  = errors.ErrorCode("datafile_header_written_twice")
	ErrNoHeader     = errors.ErrorCode("datafile_missing_header")
	ErrFooterTwice  = errors.ErrorCode("datafile_footer_written_twice")
	ErrAfterFooter  = errors.ErrorCode("datafile_record_after_footer")
	ErrWriteFailed  = errors.ErrorCode("datafile_write_failed")
	ErrSyncFailed   = errors.ErrorCode("datafile_sync_failed")
	ErrParseFailed  = errors.ErrorCode("datafile_parse_failed")
)
