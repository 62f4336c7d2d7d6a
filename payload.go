package smolnet

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNoPayload is returned when an upload is dispatched without data to send.
var ErrNoPayload = errors.New("upload endpoint has no payload")

// sniffLen is how much of a payload is read to detect its content type.
const sniffLen = 3072

// Payload is the source of an upload body.
type Payload struct {
	open     func() (io.ReadCloser, int64, error)
	// peek returns the first bytes of the payload without consuming it. It is
	// nil when the source cannot be read twice.
	peek     func() ([]byte, error)
	mimeType string
}

// BytesPayload uploads b. If mimeType is empty, it is detected from the data.
func BytesPayload(b []byte, mimeType string) Payload {
	return Payload{
		open: func() (io.ReadCloser, int64, error) {
			return io.NopCloser(bytes.NewReader(b)), int64(len(b)), nil
		},
		peek: func() ([]byte, error) {
			return b[:min(len(b), sniffLen)], nil
		},
		mimeType: mimeType,
	}
}

// FilePayload uploads the file at path. Its head is read when the request is
// built to detect the content type. The file is opened again for the upload and
// closed once it is sent.
func FilePayload(path string) Payload {
	return Payload{
		open: func() (io.ReadCloser, int64, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, 0, err
			}
			st, err := f.Stat()
			if err != nil {
				f.Close()
				return nil, 0, err
			}
			return f, st.Size(), nil
		},
		peek: func() ([]byte, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return readHead(f)
		},
	}
}

// ReaderPayload uploads from r. A negative size means unknown, in which case
// the length is found by seeking if r allows it.
func ReaderPayload(r io.Reader, size int64, mimeType string) Payload {
	return Payload{
		open: func() (io.ReadCloser, int64, error) {
			ln := size
			if ln < 0 {
				if s, ok := r.(io.Seeker); ok {
					end, err := s.Seek(0, io.SeekEnd)
					if err != nil {
						// seek failed, let's continue in the unknown
						ln = -1
					} else {
						ln = end
						s.Seek(0, io.SeekStart)
					}
				}
			}
			if rc, ok := r.(io.ReadCloser); ok {
				return rc, ln, nil
			}
			return io.NopCloser(r), ln, nil
		},
		peek:     seekPeek(r),
		mimeType: mimeType,
	}
}

// seekPeek reads the head of r and rewinds it, if r can seek.
func seekPeek(r io.Reader) func() ([]byte, error) {
	s, ok := r.(io.ReadSeeker)
	if !ok {
		return nil
	}
	return func() ([]byte, error) {
		pos, err := s.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		head, err := readHead(s)
		if _, serr := s.Seek(pos, io.SeekStart); err == nil {
			err = serr
		}
		return head, err
	}
}

func readHead(r io.Reader) ([]byte, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return head[:n], nil
}

// WithType returns a copy of p with an explicit content type.
func (p Payload) WithType(mimeType string) Payload {
	p.mimeType = mimeType
	return p
}

// IsZero reports whether p has no source.
func (p Payload) IsZero() bool {
	return p.open == nil
}

// ContentType checks that the payload can be read and returns its content
// type, detecting it from the first bytes if none was given. It returns an
// empty type when detection would consume the source, in which case Open
// detects it.
func (p Payload) ContentType() (string, error) {
	if p.open == nil {
		return "", ErrNoPayload
	}
	if p.peek == nil {
		return p.mimeType, nil
	}
	head, err := p.peek()
	if err != nil {
		return "", err
	}
	if p.mimeType != "" {
		return p.mimeType, nil
	}
	return mimetype.Detect(head).String(), nil
}

// Open returns the payload body, its length (-1 if unknown) and its content
// type.
func (p Payload) Open() (io.ReadCloser, int64, string, error) {
	if p.open == nil {
		return nil, 0, "", ErrNoPayload
	}
	rc, ln, err := p.open()
	if err != nil {
		return nil, 0, "", err
	}
	if p.mimeType != "" {
		return rc, ln, p.mimeType, nil
	}

	head, err := readHead(rc)
	if err != nil {
		rc.Close()
		return nil, 0, "", err
	}
	mimeType := mimetype.Detect(head).String()

	return &prefixedReader{Reader: io.MultiReader(bytes.NewReader(head), rc), c: rc}, ln, mimeType, nil
}

// prefixedReader puts back the bytes consumed while sniffing.
type prefixedReader struct {
	io.Reader
	c io.Closer
}

func (p *prefixedReader) Close() error {
	return p.c.Close()
}
