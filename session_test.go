package smolnet

import (
	"context"
	"io"
	"net/http"
	"sync"
)

// fakeSession answers every task with the same canned response.
type fakeSession struct {
	status int // 0 means no HTTP response
	header http.Header
	body   []byte
	path   string
	err    error

	// hold delays completion until release is closed or the task is cancelled
	hold    bool
	release chan struct{}
	// onCancel is what a cancelled held task does: "" completes with
	// context.Canceled, "silent" never completes, "ignore" completes normally
	onCancel string

	lk      sync.Mutex
	reqs    []*http.Request
	bodies  [][]byte
	uploads []Payload
}

func newFakeSession(status int, body string) *fakeSession {
	return &fakeSession{
		status:  status,
		header:  http.Header{},
		body:    []byte(body),
		release: make(chan struct{}),
	}
}

type fakeTask struct {
	once sync.Once
	ch   chan struct{}
}

func (t *fakeTask) Cancel() {
	t.once.Do(func() { close(t.ch) })
}

func (s *fakeSession) meta() *ResponseMeta {
	if s.status == 0 {
		return nil
	}
	return &ResponseMeta{StatusCode: s.status, Header: s.header}
}

func (s *fakeSession) start(req *http.Request, complete, cancelled func()) Task {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	s.lk.Lock()
	s.reqs = append(s.reqs, req)
	s.bodies = append(s.bodies, body)
	s.lk.Unlock()

	t := &fakeTask{ch: make(chan struct{})}
	go func() {
		if s.hold {
			select {
			case <-s.release:
			case <-t.ch:
				switch s.onCancel {
				case "silent":
					return
				case "ignore":
				default:
					cancelled()
					return
				}
			}
		}
		complete()
	}()
	return t
}

func (s *fakeSession) DataTask(req *http.Request, done DataHandler) Task {
	return s.start(req,
		func() { done(s.body, s.meta(), s.err) },
		func() { done(nil, nil, context.Canceled) })
}

func (s *fakeSession) DownloadTask(req *http.Request, progress ProgressFunc, done FileHandler) Task {
	return s.start(req,
		func() {
			if progress != nil {
				progress(1)
			}
			done(s.path, s.meta(), s.err)
		},
		func() { done("", nil, context.Canceled) })
}

func (s *fakeSession) UploadTask(req *http.Request, payload Payload, progress ProgressFunc, done DataHandler) Task {
	s.lk.Lock()
	s.uploads = append(s.uploads, payload)
	s.lk.Unlock()
	return s.start(req,
		func() { done(s.body, s.meta(), s.err) },
		func() { done(nil, nil, context.Canceled) })
}

func (s *fakeSession) requests() []*http.Request {
	s.lk.Lock()
	defer s.lk.Unlock()
	return append([]*http.Request(nil), s.reqs...)
}

func (s *fakeSession) requestBody(i int) []byte {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.bodies[i]
}
