package smolnet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

// DefaultSession is used by dispatchers created without a Session.
var DefaultSession = NewHTTPSession(HTTPClient)

// HTTPSession is a Session running requests with a *http.Client.
type HTTPSession struct {
	Client *http.Client
	// DownloadDir is where downloaded files are stored, os.TempDir() if empty.
	DownloadDir string

	running *inflight
}

// NewHTTPSession returns a session using client, or http.DefaultClient if nil.
func NewHTTPSession(client *http.Client) *HTTPSession {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSession{Client: client, running: newInflight()}
}

// Wait blocks until no task of this session is running.
func (s *HTTPSession) Wait() {
	s.running.wait(0)
}

// Running returns the number of tasks in flight.
func (s *HTTPSession) Running() int {
	return s.running.count()
}

type httpTask struct {
	cancel context.CancelFunc
}

func (t *httpTask) Cancel() {
	t.cancel()
}

func (s *HTTPSession) start(req *http.Request, run func(req *http.Request)) Task {
	ctx, cancel := context.WithCancel(req.Context())
	req = req.WithContext(ctx)

	s.running.add(1)
	go func() {
		defer s.running.done()
		defer cancel()
		run(req)
	}()
	return &httpTask{cancel: cancel}
}

func (s *HTTPSession) DataTask(req *http.Request, done DataHandler) Task {
	return s.start(req, func(req *http.Request) {
		done(s.exchange(req))
	})
}

func (s *HTTPSession) UploadTask(req *http.Request, payload Payload, progress ProgressFunc, done DataHandler) Task {
	return s.start(req, func(req *http.Request) {
		body, ln, mimeType, err := payload.Open()
		if err != nil {
			done(nil, nil, fmt.Errorf("failed to open upload payload: %w", err))
			return
		}
		defer body.Close()

		req.Body = io.NopCloser(newProgressReader(req.Context(), body, ln, progress))
		if ln >= 0 {
			req.ContentLength = ln
		} else {
			req.ContentLength = -1
		}
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", mimeType)
		}

		done(s.exchange(req))
	})
}

func (s *HTTPSession) DownloadTask(req *http.Request, progress ProgressFunc, done FileHandler) Task {
	return s.start(req, func(req *http.Request) {
		resp, err := s.do(req)
		if err != nil {
			done("", metaOf(resp), err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			// nothing worth keeping
			io.Copy(io.Discard, resp.Body)
			done("", metaOf(resp), nil)
			return
		}

		fn, err := s.store(req.Context(), resp, progress)
		done(fn, metaOf(resp), err)
	})
}

// exchange runs req and reads the whole response body.
func (s *HTTPSession) exchange(req *http.Request) ([]byte, *ResponseMeta, error) {
	resp, err := s.do(req)
	if err != nil {
		return nil, metaOf(resp), err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return body, metaOf(resp), fmt.Errorf("failed to read response body: %w", err)
	}
	return body, metaOf(resp), nil
}

// store writes the response body to a new file in the download directory.
func (s *HTTPSession) store(ctx context.Context, resp *http.Response, progress ProgressFunc) (string, error) {
	dir := s.DownloadDir
	if dir == "" {
		dir = os.TempDir()
	}
	fn := filepath.Join(dir, "smolnet-"+uuid.NewString()+".download")

	f, err := os.Create(fn)
	if err != nil {
		return "", fmt.Errorf("failed to create download file: %w", err)
	}

	_, err = io.Copy(f, newProgressReader(ctx, resp.Body, resp.ContentLength, progress))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(fn)
		return "", fmt.Errorf("failed to store download: %w", err)
	}
	return fn, nil
}

// do sends req and returns a response with its body inflated if the server
// compressed it. The response is returned along with an error if it was
// received but its body cannot be read.
func (s *HTTPSession) do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip")
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		if Debug {
			slog.ErrorContext(req.Context(), fmt.Sprintf("[smolnet] %s %s failed: %s", req.Method, req.URL, err), "event", "smolnet:transport_error")
		}
		return nil, err
	}

	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		switch {
		case err == io.EOF:
			resp.Body.Close()
			resp.Body = http.NoBody
		case err != nil:
			resp.Body.Close()
			resp.Body = http.NoBody
			return resp, fmt.Errorf("failed to inflate response: %w", err)
		default:
			resp.Body = &gzipBody{Reader: gz, orig: resp.Body}
		}
		resp.Header.Del("Content-Encoding")
		resp.Header.Del("Content-Length")
		resp.ContentLength = -1
		resp.Uncompressed = true
	}
	return resp, nil
}

type gzipBody struct {
	*gzip.Reader
	orig io.ReadCloser
}

func (g *gzipBody) Close() error {
	g.Reader.Close()
	return g.orig.Close()
}
