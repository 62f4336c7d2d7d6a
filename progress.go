package smolnet

import (
	"context"
	"io"
)

// progressReader wraps an io.Reader and reports the fraction of total read so
// far. Nothing is reported when total is unknown.
type progressReader struct {
	reader io.Reader
	ctx    context.Context
	total  int64
	read   int64
	fn     ProgressFunc
}

func newProgressReader(ctx context.Context, r io.Reader, total int64, fn ProgressFunc) io.Reader {
	if fn == nil || total <= 0 {
		return r
	}
	return &progressReader{reader: r, ctx: ctx, total: total, fn: fn}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	if err := pr.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.read += int64(n)
		f := float64(pr.read) / float64(pr.total)
		if f > 1 {
			f = 1
		}
		pr.fn(f)
	}
	return n, err
}
