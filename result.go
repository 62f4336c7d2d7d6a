package smolnet

import "net/http"

// ResponseMeta is what was received of an HTTP response besides its body.
type ResponseMeta struct {
	StatusCode int
	Header     http.Header
}

func metaOf(resp *http.Response) *ResponseMeta {
	if resp == nil {
		return nil
	}
	return &ResponseMeta{StatusCode: resp.StatusCode, Header: resp.Header}
}

// ResultKind tells which field of a Result is populated.
type ResultKind int

const (
	ResultValue ResultKind = iota
	ResultFile
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultValue:
		return "value"
	case ResultFile:
		return "file"
	case ResultError:
		return "error"
	default:
		return "invalid"
	}
}

// Result is the outcome of a dispatch. Value is set for Data and Upload
// endpoints, Path for Download endpoints, and Err when the call failed.
type Result[T any] struct {
	Kind  ResultKind
	Value T
	Path  string
	Err   *Error
	Meta  *ResponseMeta
}

func valueResult[T any](v T, meta *ResponseMeta) *Result[T] {
	return &Result[T]{Kind: ResultValue, Value: v, Meta: meta}
}

func fileResult[T any](path string, meta *ResponseMeta) *Result[T] {
	return &Result[T]{Kind: ResultFile, Path: path, Meta: meta}
}

func errorResult[T any](err *Error) *Result[T] {
	return &Result[T]{Kind: ResultError, Err: err, Meta: err.Meta}
}

// Error returns the failure as a plain error, or nil on success.
func (r *Result[T]) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}
