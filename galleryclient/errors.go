package galleryclient

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrConfigRequired    = errors.New("config is required")
	ErrDirectoryRequired = errors.New("directory is required")
	ErrNoImages          = errors.New("no images configured")
)

// Errors returned by Client.
var (
	// ErrRequestFailed wraps transport failures: the request never produced
	// an HTTP response.
	ErrRequestFailed = errors.New("request failed")
	// ErrInvalidResponse is returned when the server reply is not the JSON
	// document the API promises.
	ErrInvalidResponse = errors.New("invalid response")
)

// ErrIndexOutOfRange is returned by Gallery.Select.
var ErrIndexOutOfRange = errors.New("index out of range")
