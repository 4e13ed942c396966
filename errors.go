package galleria

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigMissing is returned when required store configuration is absent
	ErrConfigMissing = errors.New("configuration missing")
	// ErrCredentialParse is returned when configured credentials cannot be parsed
	ErrCredentialParse = errors.New("credential parse failure")
	// ErrClientInit is returned when a store client cannot be constructed
	ErrClientInit = errors.New("client init failure")
	// ErrBackendUnavailable is returned when no driver is registered for a backend
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrStoreOperation is returned when the object store rejects an operation
	ErrStoreOperation = errors.New("store operation failed")
	// ErrUnexpected is returned for failures outside every known category
	ErrUnexpected = errors.New("unexpected failure")
	// ErrUnauthorized is returned when signature verification fails
	ErrUnauthorized = errors.New("unauthorized")
)

// Stage names the step of the issuance pipeline in which a failure occurred.
type Stage string

const (
	StageConfig          Stage = "config"
	StageValidation      Stage = "validation"
	StageImport          Stage = "import"
	StageClientInit      Stage = "client_init"
	StageCredentialParse Stage = "credential_parse"
	StageNotFound        Stage = "not_found"
	StageStoreOperation  Stage = "store_operation"
	StageUnexpected      Stage = "unexpected"
)

var stageSentinels = map[Stage]error{
	StageConfig:          ErrConfigMissing,
	StageValidation:      ErrInvalidInput,
	StageImport:          ErrBackendUnavailable,
	StageClientInit:      ErrClientInit,
	StageCredentialParse: ErrCredentialParse,
	StageNotFound:        ErrNotFound,
	StageStoreOperation:  ErrStoreOperation,
	StageUnexpected:      ErrUnexpected,
}

// IssueError is returned by IssuerService.Issue. Message is safe to show to
// API clients; Details carries diagnostics for store and unexpected failures.
type IssueError struct {
	Stage   Stage
	Message string
	Key     string
	Details string
	Err     error
}

func (e *IssueError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("issue signed url [%s]: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("issue signed url [%s]: %s: %v", e.Stage, e.Message, e.Err)
}

func (e *IssueError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel error of e's stage, so callers
// can match with errors.Is(err, galleria.ErrNotFound) regardless of the cause.
func (e *IssueError) Is(target error) bool {
	sentinel, ok := stageSentinels[e.Stage]
	return ok && sentinel == target
}

func newIssueError(stage Stage, message string, err error) *IssueError {
	return &IssueError{Stage: stage, Message: message, Err: err}
}
