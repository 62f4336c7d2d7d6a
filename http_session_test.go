package smolnet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/KarpelesLab/pjson"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
)

func newTestDispatcher(t *testing.T, h http.HandlerFunc) (*Dispatcher, *HTTPSession) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	s := NewHTTPSession(srv.Client())
	s.DownloadDir = t.TempDir()
	return NewDispatcher(Env{URL: srv.URL, Header: map[string]string{"X-Env": "test"}}, s), s
}

func TestHTTPSessionData(t *testing.T) {
	d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/todos/1" || r.Header.Get("X-Env") != "test" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, todoJSON)
	})

	res := Do[todo](context.Background(), d, todoEndpoint())
	if res.Err != nil {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	want := todo{UserID: 1, ID: 1, Title: "x"}
	if diff := cmp.Diff(want, res.Value); diff != "" {
		t.Errorf("decoded todo mismatch (-want +got):\n%s", diff)
	}
	if ct := res.Meta.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("response Content-Type = %q", ct)
	}
}

func TestHTTPSessionGzip(t *testing.T) {
	d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			io.WriteString(w, `{"id":0}`)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		io.WriteString(gz, todoJSON)
		gz.Close()
	})

	res := Do[todo](context.Background(), d, todoEndpoint())
	if res.Err != nil {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if res.Value.ID != 1 {
		t.Errorf("Value = %+v, want gzip decoded todo", res.Value)
	}
	if ce := res.Meta.Header.Get("Content-Encoding"); ce != "" {
		t.Errorf("Content-Encoding = %q, want it removed after inflating", ce)
	}
}

func TestHTTPSessionStatus(t *testing.T) {
	d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		var code int
		fmt.Sscanf(r.URL.Path, "/status/%d", &code)
		w.WriteHeader(code)
		io.WriteString(w, todoJSON)
	})

	tests := []struct {
		code int
		err  error
	}{
		{403, ErrBadRequest},
		{404, ErrBadRequest},
		{500, ErrServerError},
		{502, ErrServerError},
	}
	for _, tt := range tests {
		res := Do[todo](context.Background(), d, &Request{URLPath: fmt.Sprintf("/status/%d", tt.code)})
		if !errors.Is(res.Error(), tt.err) {
			t.Errorf("status %d: err = %v, want %v", tt.code, res.Err, tt.err)
		}
		if res.Meta == nil || res.Meta.StatusCode != tt.code {
			t.Errorf("status %d: Meta = %+v", tt.code, res.Meta)
		}
	}

	res := Do[todo](context.Background(), d, &Request{URLPath: "/status/204"})
	if !errors.Is(res.Error(), ErrNoData) {
		t.Errorf("status 204: err = %v, want no data", res.Err)
	}
}

func TestHTTPSessionDownload(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789"), 1000)
	d, s := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/data.bin" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(content)))
		w.Write(content)
	})

	var last float64
	res := Do[struct{}](context.Background(), d, &Request{
		URLPath:    "/files/data.bin",
		Mode:       Download,
		Expect:     File,
		OnProgress: func(f float64) { last = f },
	})
	if res.Kind != ResultFile {
		t.Fatalf("Kind = %s, want file (err = %v)", res.Kind, res.Err)
	}
	defer os.Remove(res.Path)

	got, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("failed to read download: %s", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("downloaded %d bytes, want %d", len(got), len(content))
	}
	if last != 1 {
		t.Errorf("last progress = %v, want 1", last)
	}

	res = Do[struct{}](context.Background(), d, &Request{URLPath: "/files/missing", Mode: Download, Expect: File})
	if !errors.Is(res.Error(), ErrBadRequest) {
		t.Errorf("missing file: err = %v, want bad request", res.Err)
	}
	entries, _ := os.ReadDir(s.DownloadDir)
	if len(entries) != 1 {
		t.Errorf("download dir has %d entries, want only the successful download", len(entries))
	}
}

func TestHTTPSessionUpload(t *testing.T) {
	d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp, _ := pjson.Marshal(map[string]any{
			"name":   strings.TrimPrefix(r.URL.Path, "/files/"),
			"size":   len(body),
			"type":   r.Header.Get("Content-Type"),
			"length": r.ContentLength,
			"body":   string(body),
		})
		w.Write(resp)
	})

	type echo struct {
		Name   string `json:"name"`
		Size   int    `json:"size"`
		Type   string `json:"type"`
		Length int64  `json:"length"`
		Body   string `json:"body"`
	}

	var last float64
	res := Do[echo](context.Background(), d, &Request{
		URLPath:    "/files/notes.txt",
		Verb:       PUT,
		Mode:       Upload,
		Body:       BytesPayload([]byte("hello world, these are my notes"), ""),
		OnProgress: func(f float64) { last = f },
	})
	if res.Err != nil {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if res.Value.Name != "notes.txt" || res.Value.Body != "hello world, these are my notes" {
		t.Errorf("server got %+v", res.Value)
	}
	if res.Value.Length != int64(res.Value.Size) {
		t.Errorf("ContentLength = %d, body is %d bytes", res.Value.Length, res.Value.Size)
	}
	if !strings.HasPrefix(res.Value.Type, "text/plain") {
		t.Errorf("sniffed Content-Type = %q, want text/plain", res.Value.Type)
	}
	if last != 1 {
		t.Errorf("last progress = %v, want 1", last)
	}

	res = Do[echo](context.Background(), d, &Request{
		URLPath: "/files/raw",
		Verb:    PUT,
		Mode:    Upload,
		Body:    BytesPayload([]byte{1, 2, 3}, "application/x-custom"),
	})
	if res.Err != nil {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if res.Value.Type != "application/x-custom" {
		t.Errorf("Content-Type = %q, want application/x-custom", res.Value.Type)
	}
}

func TestHTTPSessionUploadEnvironmentContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		resp, _ := pjson.Marshal(r.Header.Values("Content-Type"))
		w.Write(resp)
	}))
	defer srv.Close()

	d := NewDispatcher(Env{URL: srv.URL, Header: Development.Header}, NewHTTPSession(srv.Client()))
	for _, tt := range []struct {
		payload Payload
		want    []string
	}{
		{BytesPayload(pngHead, ""), []string{"image/png"}},
		{BytesPayload(pngHead, "text/plain"), []string{"text/plain"}},
	} {
		got, _, err := As[[]string](context.Background(), d, &Request{URLPath: "/files/a.png", Verb: PUT, Mode: Upload, Body: tt.payload})
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Content-Type received by the server (-want +got):\n%s", diff)
		}
	}
}

func TestHTTPSessionCancel(t *testing.T) {
	started := make(chan struct{})
	d, s := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		io.WriteString(w, todoJSON)
	})

	op := NewOperation[todo](todoEndpoint())
	done := make(chan *Result[todo], 1)
	if err := op.Execute(context.Background(), d, func(res *Result[todo]) { done <- res }); err != nil {
		t.Fatalf("Execute failed: %s", err)
	}
	<-started
	op.Cancel()

	select {
	case res := <-done:
		if !errors.Is(res.Error(), context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", res.Err)
		}
		if res.Kind == ResultValue {
			t.Errorf("cancelled operation reported a value")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no completion after cancel")
	}

	s.Wait()
	if n := s.Running(); n != 0 {
		t.Errorf("Running() = %d after Wait, want 0", n)
	}
}

func TestHTTPSessionTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	d := NewDispatcher(Env{URL: base}, NewHTTPSession(nil))
	res := Do[todo](context.Background(), d, todoEndpoint())
	if !errors.Is(res.Error(), ErrInvalidResponse) {
		t.Errorf("err = %v, want invalid response", res.Err)
	}
	if res.Meta != nil {
		t.Errorf("Meta = %+v, want nil", res.Meta)
	}
}
