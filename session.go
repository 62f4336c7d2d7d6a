package smolnet

import "net/http"

// DataHandler receives the outcome of a data or upload task. meta is nil when
// no HTTP response was received.
type DataHandler func(body []byte, meta *ResponseMeta, err error)

// FileHandler receives the outcome of a download task, with the path of the
// file the body was stored into.
type FileHandler func(path string, meta *ResponseMeta, err error)

// Task is a transfer in flight.
type Task interface {
	// Cancel aborts the transfer if it has not completed yet.
	Cancel()
}

// Session performs the network transfers requested by a Dispatcher. Each
// method starts the transfer and returns immediately. The handler is called
// once, from another goroutine.
type Session interface {
	DataTask(req *http.Request, done DataHandler) Task
	DownloadTask(req *http.Request, progress ProgressFunc, done FileHandler) Task
	UploadTask(req *http.Request, payload Payload, progress ProgressFunc, done DataHandler) Task
}

// noTask is returned when nothing was started.
type noTask struct{}

func (noTask) Cancel() {}
