package errcodes

import (
	"fmt"
	"net/http"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// HasCode reports whether err wraps an *Error carrying code.
func HasCode(err error, code string) bool {
	var e *Error
	if !asError(err, &e) {
		return false
	}
	return e.Code == code
}

const (
	CodeNotFound            = "not_found"
	CodeIntegrityViolation  = "integrity_violation"
	CodeFileMissing         = "file_missing"
	CodeContainerUnreadable = "container_unreadable"
	CodeRemoteUnavailable   = "remote_unavailable"
	CodeConflict            = "conflict"
)

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		http.StatusNotFound,
		resource + " not found.",
		CodeNotFound,
	}
}

// IntegrityViolation is returned when a save would break a store constraint
// (duplicate path, duplicate slug). The surrounding transaction is rolled back.
func IntegrityViolation(detail string) error {
	return &Error{
		http.StatusConflict,
		"Integrity violation: " + detail,
		CodeIntegrityViolation,
	}
}

// Conflict is returned when a request clashes with work already under way.
func Conflict(msg string) error {
	return &Error{
		http.StatusConflict,
		msg,
		CodeConflict,
	}
}

// FileMissing is returned when a Book's file no longer exists on disk.
func FileMissing(path string) error {
	return &Error{
		http.StatusGone,
		fmt.Sprintf("File %q is missing.", path),
		CodeFileMissing,
	}
}

// ContainerUnreadable is returned when an EPUB or PDF cannot be opened.
func ContainerUnreadable(path string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Container %q is unreadable.", path),
		CodeContainerUnreadable,
	}
}

// RemoteUnavailable is returned when a metadata provider can't be reached.
func RemoteUnavailable(provider string) error {
	return &Error{
		http.StatusBadGateway,
		provider + " is unavailable.",
		CodeRemoteUnavailable,
	}
}

func UnsupportedMediaType() error {
	return &Error{
		http.StatusUnsupportedMediaType,
		"Unsupported Media Type",
		"unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Unknown Parameter %q", param),
		"unknown_parameter",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"validation_type_error",
	}
}

func ValidationError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"validation_error",
	}
}

func MalformedPayload() error {
	return &Error{
		http.StatusBadRequest,
		"Malformed Payload",
		"malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		http.StatusBadRequest,
		"Request body can't be empty.",
		"empty_request_body",
	}
}
