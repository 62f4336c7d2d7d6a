package smolnet

import (
	"fmt"
	"io/fs"
	"os"
)

// ErrorKind classifies a failed dispatch.
type ErrorKind int

const (
	// KindUnknown is an unexpected status code, or a transport error on an
	// otherwise successful response.
	KindUnknown ErrorKind = iota
	// KindBadRequest is a 4xx status or a request that could not be built.
	KindBadRequest
	// KindServerError is a 5xx status.
	KindServerError
	// KindInvalidResponse means no HTTP response was received at all.
	KindInvalidResponse
	// KindNoData is a successful response without a body.
	KindNoData
	// KindDecoding means the body could not be parsed into the expected type.
	KindDecoding
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad request"
	case KindServerError:
		return "server error"
	case KindInvalidResponse:
		return "invalid response"
	case KindNoData:
		return "no data"
	case KindDecoding:
		return "decoding error"
	default:
		return "unknown error"
	}
}

// Sentinel errors, to be used with errors.Is.
var (
	ErrBadRequest      = &Error{Kind: KindBadRequest}
	ErrServerError     = &Error{Kind: KindServerError}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
	ErrNoData          = &Error{Kind: KindNoData}
	ErrDecoding        = &Error{Kind: KindDecoding}
	ErrUnknown         = &Error{Kind: KindUnknown}
)

// Error is a classified dispatch failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Meta    *ResponseMeta // nil if no response was received
	Body    []byte        // raw body of the failed response, if any

	e error
}

func newError(kind ErrorKind, meta *ResponseMeta, err error) *Error {
	res := &Error{Kind: kind, Meta: meta, e: err}
	if err != nil {
		res.Message = err.Error()
	}
	return res
}

func (r *Error) Error() string {
	if r.Message == "" {
		if r.Meta != nil {
			return fmt.Sprintf("[smolnet] %s: HTTP status %d", r.Kind, r.Meta.StatusCode)
		}
		return fmt.Sprintf("[smolnet] %s", r.Kind)
	}
	return fmt.Sprintf("[smolnet] %s: %s", r.Kind, r.Message)
}

func (r *Error) Unwrap() error {
	if r.e != nil {
		return r.e
	}
	if r.Meta == nil {
		return nil
	}
	switch r.Meta.StatusCode {
	case 403:
		return os.ErrPermission
	case 404:
		return fs.ErrNotExist
	default:
		return nil
	}
}

// Is matches the sentinel errors by kind.
func (r *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Meta != nil || t.e != nil || t.Message != "" {
		return false
	}
	return t.Kind == r.Kind
}
