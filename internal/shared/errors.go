package shared

import "fmt"

var (
	// Data errors abort the run before any output is written.
	ErrInvalidData  = fmt.Errorf("invalid library data")
	ErrEmptyInput   = fmt.Errorf("empty input collection")
	ErrItemNotFound = fmt.Errorf("item not found")
	ErrRunNotFound  = fmt.Errorf("run not found")

	// Selection errors are fatal: a short or duplicated permutation would
	// silently corrupt downstream playlists.
	ErrSelectionFailed = fmt.Errorf("weighted selection failed")

	// Configuration errors
	ErrMissingConfig   = fmt.Errorf("configuration not found")
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrMissingSnapshot = fmt.Errorf("calibration snapshot not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
