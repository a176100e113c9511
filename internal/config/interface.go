package config

// Measurement mode ordinals as understood by the Solartron 7150. The
// temperature modes require the 7150-plus.
const (
	ModeDCV = iota
	ModeACV
	ModeOhm
	ModeDCA
	ModeACA
	ModeDiode
	ModeDegC
	ModeDegF
)

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}
