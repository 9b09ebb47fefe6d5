package httpmsg

import (
	"errors"
	"io"
)

var errNegativePosition = errors.New("httpmsg: negative buffer position")

// buffer is an in-memory byte source that supports reading, writing and
// seeking at the same time. Writes overwrite from the cursor and extend the
// buffer when they pass its end.
type buffer struct {
	data []byte
	pos  int64
}

func newBuffer(b []byte) *buffer {
	return &buffer{data: b}
}

func (b *buffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *buffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

func (b *buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.pos + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.New("httpmsg: invalid whence")
	}
	if abs < 0 {
		return 0, errNegativePosition
	}
	b.pos = abs
	return abs, nil
}

// Size reports the total number of bytes held, independent of the cursor.
func (b *buffer) Size() int64 {
	return int64(len(b.data))
}

func (b *buffer) Close() error {
	b.data = nil
	b.pos = 0
	return nil
}
