package errors

// Codes shared across packages.
const (
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
)

var messages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrReadConfig:      "Failed to read configuration",
	ErrBindFlags:       "Failed to bind flags",
}

// Register sets the default message for a package-local code. Called
// from init in the package that owns the code.
func Register(code ErrorCode, message string) {
	messages[code] = message
}

func messageFor(code ErrorCode) string {
	if msg, ok := messages[code]; ok {
		return msg
	}

	return string(code)
}
