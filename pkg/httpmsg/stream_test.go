package httpmsg_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
)

func TestStreamFromString(t *testing.T) {
	t.Parallel()

	t.Run("reads content in chunks", func(t *testing.T) {
		t.Parallel()

		s := httpmsg.NewStreamFromString("hello world")
		require.True(t, s.IsReadable())
		require.True(t, s.IsWritable())
		require.True(t, s.IsSeekable())

		chunk, err := s.ReadN(5)
		require.NoError(t, err)
		require.Equal(t, "hello", string(chunk))

		pos, err := s.Tell()
		require.NoError(t, err)
		require.Equal(t, int64(5), pos)
		require.False(t, s.EOF())

		rest, err := s.Contents()
		require.NoError(t, err)
		require.Equal(t, " world", rest)
		require.True(t, s.EOF())
	})

	t.Run("short read sets eof", func(t *testing.T) {
		t.Parallel()

		s := httpmsg.NewStreamFromString("abc")
		chunk, err := s.ReadN(10)
		require.NoError(t, err)
		require.Equal(t, "abc", string(chunk))
		require.True(t, s.EOF())
	})

	t.Run("seek resets eof", func(t *testing.T) {
		t.Parallel()

		s := httpmsg.NewStreamFromString("abc")
		_, err := s.Contents()
		require.NoError(t, err)
		require.True(t, s.EOF())

		_, err = s.Seek(1, io.SeekStart)
		require.NoError(t, err)
		require.False(t, s.EOF())

		rest, err := s.Contents()
		require.NoError(t, err)
		require.Equal(t, "bc", rest)
	})

	t.Run("write extends content and size", func(t *testing.T) {
		t.Parallel()

		s := httpmsg.NewEmptyStream()
		n, err := s.WriteString("payload")
		require.NoError(t, err)
		require.Equal(t, 7, n)

		size, ok := s.Size()
		require.True(t, ok)
		require.Equal(t, int64(7), size)
		require.Equal(t, "payload", s.String())
	})

	t.Run("write overwrites from cursor", func(t *testing.T) {
		t.Parallel()

		s := httpmsg.NewStreamFromString("abcdef")
		_, err := s.Seek(2, io.SeekStart)
		require.NoError(t, err)
		_, err = s.WriteString("XY")
		require.NoError(t, err)
		require.Equal(t, "abXYef", s.String())
	})

	t.Run("string rewinds", func(t *testing.T) {
		t.Parallel()

		s := httpmsg.NewStreamFromString("body")
		_, err := s.ReadN(2)
		require.NoError(t, err)
		require.Equal(t, "body", s.String())
	})

	t.Run("bytes constructor copies input", func(t *testing.T) {
		t.Parallel()

		raw := []byte("data")
		s := httpmsg.NewStreamFromBytes(raw)
		raw[0] = 'X'
		require.Equal(t, "data", s.String())
	})
}

func TestStreamCapabilities(t *testing.T) {
	t.Parallel()

	t.Run("read only source", func(t *testing.T) {
		t.Parallel()

		s := httpmsg.NewStream(io.NopCloser(strings.NewReader("x")))
		require.True(t, s.IsReadable())
		require.False(t, s.IsWritable())
		require.False(t, s.IsSeekable())

		_, err := s.Write([]byte("y"))
		require.ErrorIs(t, err, httpmsg.ErrStreamNotWritable)
		require.ErrorIs(t, err, httpmsg.ErrUnsupported)

		_, err = s.Seek(0, io.SeekStart)
		require.ErrorIs(t, err, httpmsg.ErrStreamNotSeekable)
		require.ErrorIs(t, err, httpmsg.ErrUnsupported)

		_, ok := s.Size()
		require.False(t, ok)
	})

	t.Run("tell tracks position without seeker", func(t *testing.T) {
		t.Parallel()

		s := httpmsg.NewStream(io.NopCloser(strings.NewReader("abcdef")))
		_, err := s.ReadN(4)
		require.NoError(t, err)

		pos, err := s.Tell()
		require.NoError(t, err)
		require.Equal(t, int64(4), pos)
	})

	t.Run("write only sink", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		s := httpmsg.NewStream(&sb)
		require.False(t, s.IsReadable())

		_, err := s.ReadN(1)
		require.ErrorIs(t, err, httpmsg.ErrStreamNotReadable)

		_, err = s.WriteString("ok")
		require.NoError(t, err)
		require.Equal(t, "ok", sb.String())
		require.Empty(t, s.String())
	})

	t.Run("size from reader", func(t *testing.T) {
		t.Parallel()

		s := httpmsg.NewStream(strings.NewReader("12345"))
		size, ok := s.Size()
		require.True(t, ok)
		require.Equal(t, int64(5), size)
	})

	t.Run("explicit size option", func(t *testing.T) {
		t.Parallel()

		s := httpmsg.NewStream(io.NopCloser(strings.NewReader("12")), httpmsg.WithStreamSize(2))
		size, ok := s.Size()
		require.True(t, ok)
		require.Equal(t, int64(2), size)
	})

	t.Run("metadata", func(t *testing.T) {
		t.Parallel()

		s := httpmsg.NewStream(strings.NewReader("x"), httpmsg.WithStreamURI("test://input"))
		meta := s.Metadata()
		require.Equal(t, true, meta["readable"])
		require.Equal(t, false, meta["writable"])
		require.Equal(t, true, meta["seekable"])
		require.Equal(t, "r", meta["mode"])

		uri, ok := s.MetadataValue("uri")
		require.True(t, ok)
		require.Equal(t, "test://input", uri)

		_, ok = s.MetadataValue("missing")
		require.False(t, ok)
	})
}

type closeTracker struct {
	*strings.Reader
	closed int
}

func (c *closeTracker) Close() error {
	c.closed++
	return nil
}

func TestStreamLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("detach releases handle", func(t *testing.T) {
		t.Parallel()

		handle := strings.NewReader("abc")
		s := httpmsg.NewStream(handle)

		require.Same(t, handle, s.Detach())
		require.Nil(t, s.Detach())
		require.True(t, s.EOF())
		require.False(t, s.IsReadable())
		require.Empty(t, s.Metadata())

		_, err := s.ReadN(1)
		require.ErrorIs(t, err, httpmsg.ErrStreamDetached)
		require.ErrorIs(t, err, httpmsg.ErrState)

		_, err = s.Write([]byte("x"))
		require.ErrorIs(t, err, httpmsg.ErrStreamDetached)

		_, err = s.Seek(0, io.SeekStart)
		require.ErrorIs(t, err, httpmsg.ErrStreamDetached)

		_, err = s.Tell()
		require.ErrorIs(t, err, httpmsg.ErrStreamDetached)

		_, err = s.Contents()
		require.ErrorIs(t, err, httpmsg.ErrStreamDetached)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		handle := &closeTracker{Reader: strings.NewReader("abc")}
		s := httpmsg.NewStream(handle)

		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
		require.Equal(t, 1, handle.closed)

		_, err := s.Contents()
		require.ErrorIs(t, err, httpmsg.ErrState)
		require.Empty(t, s.String())
	})
}
