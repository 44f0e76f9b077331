package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Metadata errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNoResults          = fmt.Errorf("no results found")
	ErrUnavailable        = fmt.Errorf("tracks unavailable")
	ErrAlbumNotFound      = fmt.Errorf("album not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Pipeline errors
	ErrAlreadyPresent    = fmt.Errorf("already in library")
	ErrDownloadFailed    = fmt.Errorf("download failed")
	ErrNoFiles           = fmt.Errorf("no audio files produced")
	ErrTagFailed         = fmt.Errorf("tag write failed")
	ErrImportFailed      = fmt.Errorf("import failed")
	ErrUnsupportedFormat = fmt.Errorf("unsupported audio format")
	ErrOutsideCache      = fmt.Errorf("path outside staging cache")

	// Persistence errors
	ErrRecordNotFound = fmt.Errorf("record not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
