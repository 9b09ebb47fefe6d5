package httpmsg

import (
	"errors"
	"io"
	"os"
)

// Stream wraps a byte source used as a message body.
//
// Capabilities are derived from the handle: an io.Reader is readable, an
// io.Writer is writable and an io.Seeker is seekable. After Close or Detach
// the stream is inert and every operation except Close, Detach, EOF, Size and
// String fails with ErrStreamDetached.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	handle any
	reader io.Reader
	writer io.Writer
	seeker io.Seeker

	uri  string
	size *int64
	pos  int64
	eof  bool
}

// StreamOption configures a Stream at construction.
type StreamOption func(*Stream)

// WithStreamURI records the location the handle was opened from.
// It is reported through Metadata under the "uri" key.
func WithStreamURI(uri string) StreamOption {
	return func(s *Stream) {
		s.uri = uri
	}
}

// WithStreamSize sets a known size for handles that cannot report one.
func WithStreamSize(size int64) StreamOption {
	return func(s *Stream) {
		if size >= 0 {
			s.size = &size
		}
	}
}

// NewStream wraps handle. A nil handle produces a detached stream.
func NewStream(handle any, opts ...StreamOption) *Stream {
	s := &Stream{handle: handle}
	if r, ok := handle.(io.Reader); ok {
		s.reader = r
	}
	if w, ok := handle.(io.Writer); ok {
		s.writer = w
	}
	if sk, ok := handle.(io.Seeker); ok {
		s.seeker = sk
	}
	if f, ok := handle.(*os.File); ok && s.uri == "" {
		s.uri = f.Name()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStreamFromString returns a readable, writable and seekable in-memory
// stream holding content, with the cursor at the start.
func NewStreamFromString(content string) *Stream {
	return NewStream(newBuffer([]byte(content)), WithStreamURI("memory"))
}

// NewStreamFromBytes is like NewStreamFromString. The slice is copied.
func NewStreamFromBytes(content []byte) *Stream {
	return NewStream(newBuffer(append([]byte(nil), content...)), WithStreamURI("memory"))
}

// NewEmptyStream returns an empty in-memory stream.
func NewEmptyStream() *Stream {
	return NewStreamFromString("")
}

func (s *Stream) detached() bool {
	return s.handle == nil
}

func (s *Stream) IsReadable() bool { return !s.detached() && s.reader != nil }
func (s *Stream) IsWritable() bool { return !s.detached() && s.writer != nil }
func (s *Stream) IsSeekable() bool { return !s.detached() && s.seeker != nil }

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if s.detached() {
		return 0, ErrStreamDetached
	}
	if s.reader == nil {
		return 0, ErrStreamNotReadable
	}
	n, err := s.reader.Read(p)
	s.pos += int64(n)
	if errors.Is(err, io.EOF) {
		s.eof = true
	}
	return n, err
}

// ReadN reads up to n bytes. Fewer bytes are returned only when the end of
// the source is reached, in which case EOF reports true afterwards.
func (s *Stream) ReadN(n int) ([]byte, error) {
	if s.detached() {
		return nil, ErrStreamDetached
	}
	if s.reader == nil {
		return nil, ErrStreamNotReadable
	}
	if n <= 0 {
		return []byte{}, nil
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(s, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		s.eof = true
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return buf[:read], nil
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	if s.detached() {
		return 0, ErrStreamDetached
	}
	if s.writer == nil {
		return 0, ErrStreamNotWritable
	}
	s.size = nil
	n, err := s.writer.Write(p)
	s.pos += int64(n)
	return n, err
}

// WriteString writes str to the stream.
func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Seek implements io.Seeker.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.detached() {
		return 0, ErrStreamDetached
	}
	if s.seeker == nil {
		return 0, ErrStreamNotSeekable
	}
	abs, err := s.seeker.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	s.pos = abs
	s.eof = false
	return abs, nil
}

// Rewind seeks to the start of the stream.
func (s *Stream) Rewind() error {
	_, err := s.Seek(0, io.SeekStart)
	return err
}

// Tell returns the cursor position.
func (s *Stream) Tell() (int64, error) {
	if s.detached() {
		return 0, ErrStreamDetached
	}
	if s.seeker != nil {
		return s.seeker.Seek(0, io.SeekCurrent)
	}
	return s.pos, nil
}

// EOF reports whether a read has reached the end of the source.
// A detached stream is always at EOF.
func (s *Stream) EOF() bool {
	return s.detached() || s.eof
}

// Contents returns the remaining bytes from the cursor to the end.
func (s *Stream) Contents() (string, error) {
	if s.detached() {
		return "", ErrStreamDetached
	}
	if s.reader == nil {
		return "", ErrStreamNotReadable
	}
	b, err := io.ReadAll(s)
	if err != nil {
		return "", err
	}
	s.eof = true
	return string(b), nil
}

// Size returns the total size in bytes when it can be determined.
func (s *Stream) Size() (int64, bool) {
	if s.detached() {
		return 0, false
	}
	if s.size != nil {
		return *s.size, true
	}

	var size int64
	switch h := s.handle.(type) {
	case interface{ Size() int64 }:
		size = h.Size()
	case interface{ Stat() (os.FileInfo, error) }:
		fi, err := h.Stat()
		if err != nil {
			return 0, false
		}
		size = fi.Size()
	default:
		return 0, false
	}
	s.size = &size
	return size, true
}

// Metadata describes the stream. Keys: readable, writable, seekable, eof,
// mode and uri.
func (s *Stream) Metadata() map[string]any {
	if s.detached() {
		return map[string]any{}
	}
	return map[string]any{
		"readable": s.IsReadable(),
		"writable": s.IsWritable(),
		"seekable": s.IsSeekable(),
		"eof":      s.eof,
		"mode":     s.mode(),
		"uri":      s.uri,
	}
}

// MetadataValue returns a single metadata entry.
func (s *Stream) MetadataValue(key string) (any, bool) {
	v, ok := s.Metadata()[key]
	return v, ok
}

func (s *Stream) mode() string {
	switch {
	case s.reader != nil && s.writer != nil:
		return "r+"
	case s.writer != nil:
		return "w"
	case s.reader != nil:
		return "r"
	default:
		return ""
	}
}

// Close closes the underlying handle when it is an io.Closer and detaches
// the stream. Closing twice is a no-op.
func (s *Stream) Close() error {
	if s.detached() {
		return nil
	}
	h := s.Detach()
	if c, ok := h.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Detach releases the underlying handle to the caller and leaves the stream
// permanently unusable. Returns nil when already detached.
func (s *Stream) Detach() any {
	h := s.handle
	s.handle = nil
	s.reader = nil
	s.writer = nil
	s.seeker = nil
	s.size = nil
	s.pos = 0
	s.eof = false
	return h
}

// String returns the full contents, rewinding first when the stream is
// seekable. Errors yield an empty string.
func (s *Stream) String() string {
	if !s.IsReadable() {
		return ""
	}
	if s.IsSeekable() {
		if err := s.Rewind(); err != nil {
			return ""
		}
	}
	str, err := s.Contents()
	if err != nil {
		return ""
	}
	return str
}
