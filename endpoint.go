package smolnet

import (
	"net/http"
	"net/url"
	"strings"
)

// Method is the HTTP verb of an endpoint.
type Method string

const (
	GET    Method = http.MethodGet
	POST   Method = http.MethodPost
	PUT    Method = http.MethodPut
	PATCH  Method = http.MethodPatch
	DELETE Method = http.MethodDelete
)

// TransferMode selects how the Session moves the payload of a call.
type TransferMode int

const (
	// Data is a plain request/response exchange held in memory.
	Data TransferMode = iota
	// Download stores the response body into a file.
	Download
	// Upload streams a Payload as the request body.
	Upload
)

func (m TransferMode) String() string {
	switch m {
	case Data:
		return "data"
	case Download:
		return "download"
	case Upload:
		return "upload"
	default:
		return "invalid"
	}
}

// ResponseKind is the kind of response an endpoint expects.
type ResponseKind int

const (
	JSON ResponseKind = iota
	File
)

// Param holds request parameters. Used for query parameters on GET and DELETE
// requests, and as the JSON body on POST, PUT and PATCH. Keys with a nil value
// are not transmitted.
type Param map[string]any

// ProgressFunc receives the completed fraction (0 to 1) of a download or upload.
type ProgressFunc func(fraction float64)

// Endpoint describes one logical API call.
type Endpoint interface {
	Path() string
	Method() Method
	Parameters() Param
	TransferMode() TransferMode
	ResponseKind() ResponseKind
	Progress() ProgressFunc
}

// HeaderEndpoint is implemented by endpoints carrying their own request headers.
// These are applied before the environment headers.
type HeaderEndpoint interface {
	Endpoint
	Headers() http.Header
}

// UploadEndpoint is implemented by endpoints in Upload mode to provide the data
// to send.
type UploadEndpoint interface {
	Endpoint
	Payload() Payload
}

// Request is a general purpose Endpoint, useful for calls that do not belong to
// an endpoint family.
type Request struct {
	URLPath    string
	Verb       Method
	Params     Param
	Mode       TransferMode
	Expect     ResponseKind
	OnProgress ProgressFunc
	Header     http.Header
	Body       Payload
}

func (r *Request) Path() string               { return r.URLPath }
func (r *Request) Parameters() Param          { return r.Params }
func (r *Request) TransferMode() TransferMode { return r.Mode }
func (r *Request) ResponseKind() ResponseKind { return r.Expect }
func (r *Request) Progress() ProgressFunc     { return r.OnProgress }
func (r *Request) Headers() http.Header       { return r.Header }
func (r *Request) Payload() Payload           { return r.Body }

func (r *Request) Method() Method {
	if r.Verb == "" {
		return GET
	}
	return r.Verb
}

// PathJoin builds an endpoint path from a static prefix and identifiers. Each
// identifier is escaped so it always stays a single path segment.
//
//	PathJoin("/books", "a b") == "/books/a%20b"
func PathJoin(prefix string, ids ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(prefix, "/"))
	for _, id := range ids {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(id))
	}
	return b.String()
}
