package config

import "github.com/jhau/s7150duo/internal/errors"

const (
	ErrInvalidAddress  = errors.ErrorCode("config_invalid_address")
	ErrPortConflict    = errors.ErrorCode("config_port_conflict")
	ErrInvalidMode     = errors.ErrorCode("config_invalid_mode")
	ErrInvalidDelay    = errors.ErrorCode("config_invalid_delay")
	ErrInvalidFlush    = errors.ErrorCode("config_invalid_flush_interval")
	ErrInvalidStop     = errors.ErrorCode("config_invalid_stop_time")
	ErrMissingDatabase = errors.ErrorCode("config_missing_database_path")
)
