package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevMessage is for informational output gated by verbosity.
	SevMessage Severity = iota
	// SevWarning is non-fatal and gated by verbosity.
	SevWarning
	// SevError is recoverable: recorded, processing continues up to the ceiling.
	SevError
	// SevFatal aborts the compiler instance immediately (fatal and internal errors).
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevMessage:
		return "MESSAGE"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// Prefix returns the lowercase label used in "module:line: <prefix>: msg" output.
func (s Severity) Prefix() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	case SevFatal:
		return "fatal error"
	}
	return ""
}
