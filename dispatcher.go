package smolnet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"time"

	"github.com/KarpelesLab/pjson"
	"github.com/KarpelesLab/typutil"
	"github.com/KarpelesLab/webutil"
)

// Dispatcher turns endpoints into requests against one environment and hands
// them to a Session. It keeps no state between calls and is safe for
// concurrent use.
type Dispatcher struct {
	env     Environment
	session Session
}

// NewDispatcher returns a dispatcher for env. A nil session means
// DefaultSession.
func NewDispatcher(env Environment, session Session) *Dispatcher {
	if session == nil {
		session = DefaultSession
	}
	return &Dispatcher{env: env, session: session}
}

func (d *Dispatcher) Environment() Environment {
	return d.env
}

// NewRequest builds the HTTP request for ep. The URL is the environment base
// URL followed by the endpoint path, and the environment headers are added
// after the endpoint's own headers.
func (d *Dispatcher) NewRequest(ctx context.Context, ep Endpoint) (*http.Request, error) {
	target := d.env.BaseURL() + ep.Path()
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid URL for %s: %w", ep.Path(), err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid URL for %s: %q is not absolute", ep.Path(), target)
	}

	method := ep.Method()
	r, err := http.NewRequestWithContext(ctx, string(method), u.String(), nil)
	if err != nil {
		return nil, err
	}

	params := compact(ep.Parameters())

	// add parameters (depending on method), uploads send the payload as body
	upload := ep.TransferMode() == Upload
	inQuery := upload
	switch method {
	case GET, DELETE:
		inQuery = true
	case PUT, POST, PATCH:
	default:
		return nil, fmt.Errorf("invalid request method %s", method)
	}

	if inQuery {
		if len(params) > 0 {
			q := r.URL.Query()
			for k, v := range params {
				s, err := queryValue(ctx, v)
				if err != nil {
					return nil, fmt.Errorf("failed to encode parameter %s: %w", k, err)
				}
				q.Set(k, s)
			}
			r.URL.RawQuery = q.Encode()
		}
	} else if params != nil {
		data, err := pjson.MarshalContext(ctx, params)
		if err != nil {
			return nil, err
		}
		r.Body = io.NopCloser(bytes.NewReader(data))
		r.ContentLength = int64(len(data))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
		r.Header.Set("Content-Type", "application/json")
	}

	if he, ok := ep.(HeaderEndpoint); ok {
		for k, v := range he.Headers() {
			r.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
	if upload {
		up, ok := ep.(UploadEndpoint)
		if !ok || up.Payload().IsZero() {
			return nil, ErrNoPayload
		}
		p := up.Payload()
		typ, err := p.ContentType()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload payload: %w", err)
		}
		// an explicit payload type wins over the endpoint headers, a detected one does not
		if typ != "" && (p.mimeType != "" || r.Header.Get("Content-Type") == "") {
			r.Header.Set("Content-Type", typ)
		}
	}
	if t := tokenFrom(ctx); t != nil {
		r.Header.Set("Authorization", t.authorization())
	}

	// environment headers come last, the body type is never theirs to change
	for k, v := range d.env.Headers() {
		if http.CanonicalHeaderKey(k) == "Content-Type" && (upload || r.Header.Get(k) != "") {
			continue
		}
		if !hasValue(r.Header, k, v) {
			r.Header.Add(k, v)
		}
	}

	return r, nil
}

// Dispatch runs ep and calls done exactly once with the outcome. Data and
// Upload endpoints have their body decoded into T, Download endpoints yield the
// path of the stored file.
//
// done is normally called from the session's goroutine. If the request cannot
// be built, done is called before Dispatch returns and no request is sent.
func Dispatch[T any](ctx context.Context, d *Dispatcher, ep Endpoint, done func(*Result[T])) Task {
	start := time.Now()
	mode := ep.TransferMode()

	finish := func(res *Result[T]) {
		observe(mode, start, res)
		if Debug {
			dur := time.Since(start)
			slog.DebugContext(ctx, fmt.Sprintf("[smolnet] %s %s => %s in %s", ep.Method(), ep.Path(), res.Kind, dur), "event", "smolnet:dispatch", "smolnet:method", ep.Method(), "smolnet:request", ep.Path(), "smolnet:mode", mode.String(), "smolnet:outcome", outcomeLabel(res), "smolnet:duration", dur)
		}
		done(res)
	}
	fail := func(err error) Task {
		finish(errorResult[T](newError(KindBadRequest, nil, err)))
		return noTask{}
	}

	req, err := d.NewRequest(ctx, ep)
	if err != nil {
		return fail(err)
	}

	switch mode {
	case Data:
		return d.session.DataTask(req, func(body []byte, meta *ResponseMeta, err error) {
			finish(decode[T](ctx, body, meta, err))
		})
	case Upload:
		// NewRequest made sure the payload is there
		up := ep.(UploadEndpoint)
		return d.session.UploadTask(req, up.Payload(), ep.Progress(), func(body []byte, meta *ResponseMeta, err error) {
			finish(decode[T](ctx, body, meta, err))
		})
	case Download:
		return d.session.DownloadTask(req, ep.Progress(), func(path string, meta *ResponseMeta, err error) {
			finish(stored[T](path, meta, err))
		})
	default:
		return fail(fmt.Errorf("invalid transfer mode %d", mode))
	}
}

// Do dispatches ep and waits for its outcome. If ctx ends first the transfer
// is cancelled.
func Do[T any](ctx context.Context, d *Dispatcher, ep Endpoint) *Result[T] {
	ch := make(chan *Result[T], 1)
	task := Dispatch(ctx, d, ep, func(res *Result[T]) {
		ch <- res
	})

	select {
	case res := <-ch:
		return res
	case <-ctx.Done():
		task.Cancel()
		return errorResult[T](newError(KindInvalidResponse, nil, ctx.Err()))
	}
}

// As dispatches ep and returns the decoded value.
func As[T any](ctx context.Context, d *Dispatcher, ep Endpoint) (T, *ResponseMeta, error) {
	res := Do[T](ctx, d, ep)
	return res.Value, res.Meta, res.Error()
}

// Apply dispatches ep and decodes the response into target.
func (d *Dispatcher) Apply(ctx context.Context, ep Endpoint, target any) (*ResponseMeta, error) {
	res := Do[Document](ctx, d, ep)
	if res.Err != nil {
		return res.Meta, res.Err
	}
	if err := res.Value.Apply(ctx, target); err != nil {
		e := newError(KindDecoding, res.Meta, err)
		e.Body = res.Value.Raw
		return res.Meta, e
	}
	return res.Meta, nil
}

// verify classifies a response by status code. It returns nil for a usable
// response.
func verify(meta *ResponseMeta, err error) *Error {
	if meta == nil {
		return newError(KindInvalidResponse, nil, err)
	}

	code := meta.StatusCode
	switch {
	case code >= 200 && code <= 299:
		if err != nil {
			// the body may be truncated
			return newError(KindUnknown, meta, err)
		}
		return nil
	case code >= 400 && code <= 499:
		return newError(KindBadRequest, meta, err)
	case code >= 500 && code <= 599:
		return newError(KindServerError, meta, err)
	}

	res := newError(KindUnknown, meta, err)
	if err == nil && code >= 300 && code <= 399 && meta.Header != nil {
		if loc, perr := url.Parse(meta.Header.Get("Location")); perr == nil && loc.String() != "" {
			res.e = webutil.RedirectErrorCode(loc, code)
		}
	}
	return res
}

func decode[T any](ctx context.Context, body []byte, meta *ResponseMeta, err error) *Result[T] {
	if e := verify(meta, err); e != nil {
		if meta != nil {
			e.Body = body
		}
		return errorResult[T](e)
	}
	if len(body) == 0 {
		return errorResult[T](newError(KindNoData, meta, nil))
	}

	var target T
	if err := pjson.UnmarshalContext(ctx, body, &target); err != nil {
		if Debug {
			slog.ErrorContext(ctx, fmt.Sprintf("failed to parse json: %s\n%s", err, body), "event", "smolnet:not_json")
		}
		e := newError(KindDecoding, meta, err)
		e.Body = body
		return errorResult[T](e)
	}
	return valueResult(target, meta)
}

func stored[T any](path string, meta *ResponseMeta, err error) *Result[T] {
	if e := verify(meta, err); e != nil {
		return errorResult[T](e)
	}
	if path == "" {
		return errorResult[T](newError(KindNoData, meta, nil))
	}
	return fileResult[T](path, meta)
}

// compact drops parameters without a value.
func compact(p Param) Param {
	if p == nil {
		return nil
	}
	res := make(Param, len(p))
	for k, v := range p {
		if isNil(v) {
			continue
		}
		res[k] = v
	}
	return res
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// queryValue encodes a parameter for the query string. Scalars are written as
// is, anything else as JSON.
func queryValue(ctx context.Context, v any) (string, error) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return typutil.As[string](rv.Interface())
	}
	data, err := pjson.MarshalContext(ctx, v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func hasValue(h http.Header, k, v string) bool {
	for _, cur := range h.Values(k) {
		if cur == v {
			return true
		}
	}
	return false
}
