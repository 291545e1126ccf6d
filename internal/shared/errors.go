package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrUnsupportedMedia = fmt.Errorf("unsupported media type")
	ErrUnknownStyle     = fmt.Errorf("unknown style")
	ErrNotReady         = fmt.Errorf("style and media must both be selected")
	ErrProcessing       = fmt.Errorf("transform already in progress")
	ErrSessionNotFound  = fmt.Errorf("session not found")
	ErrSessionClosed    = fmt.Errorf("session closed")
	ErrPreviewNotFound  = fmt.Errorf("preview not found")
	ErrMediaTooLarge    = fmt.Errorf("media exceeds upload limit")

	// Persistence errors
	ErrJobNotFound = fmt.Errorf("transform job not found")

	// Service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
