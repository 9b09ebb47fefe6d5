package httpmsg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
)

func newResponse(t *testing.T) *httpmsg.Response {
	t.Helper()
	resp, err := httpmsg.NewResponse(200)
	require.NoError(t, err)
	return resp
}

func TestHeaders(t *testing.T) {
	t.Parallel()

	t.Run("with header then get returns exact values", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name  string
			value any
			want  []string
		}{
			{"Content-Type", "text/html", []string{"text/html"}},
			{"X-Multi", []string{"a", "b"}, []string{"a", "b"}},
			{"Content-Length", 42, []string{"42"}},
			{"X-Ratio", 0.5, []string{"0.5"}},
			{"X-Mixed", []any{"a", 1}, []string{"a", "1"}},
			{"x~odd'name!", "v", []string{"v"}},
		}
		for _, tc := range cases {
			resp, err := newResponse(t).WithHeader(tc.name, tc.value)
			require.NoError(t, err)
			require.Equal(t, tc.want, resp.Header(tc.name))
		}
	})

	t.Run("lookups ignore case", func(t *testing.T) {
		t.Parallel()

		resp, err := newResponse(t).WithHeader("X-Request-Id", "abc")
		require.NoError(t, err)

		for _, name := range []string{"X-Request-Id", "x-request-id", "X-REQUEST-ID", "x-ReQuEsT-iD"} {
			require.True(t, resp.HasHeader(name), name)
			require.Equal(t, []string{"abc"}, resp.Header(name))
		}
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()

		resp := newResponse(t)
		require.False(t, resp.HasHeader("X-None"))
		require.Equal(t, []string{}, resp.Header("X-None"))
		require.Empty(t, resp.HeaderLine("X-None"))
	})

	t.Run("preserves casing and insertion order", func(t *testing.T) {
		t.Parallel()

		resp, err := newResponse(t).WithHeader("B-Header", "1")
		require.NoError(t, err)
		resp, err = resp.WithHeader("a-header", "2")
		require.NoError(t, err)
		resp, err = resp.WithAddedHeader("B-HEADER", "3")
		require.NoError(t, err)

		var names []string
		for name := range resp.Headers() {
			names = append(names, name)
		}
		require.Equal(t, []string{"B-Header", "a-header"}, names)
		require.Equal(t, []string{"B-Header", "a-header"}, resp.HeaderNames())
		require.Equal(t, map[string][]string{
			"B-Header": {"1", "3"},
			"a-header": {"2"},
		}, resp.HeaderMap())
		require.Equal(t, "1, 3", resp.HeaderLine("b-header"))
	})

	t.Run("with header replaces any casing", func(t *testing.T) {
		t.Parallel()

		resp, err := newResponse(t).WithHeader("content-type", "text/plain")
		require.NoError(t, err)
		resp, err = resp.WithHeader("Content-Type", "text/html")
		require.NoError(t, err)

		require.Equal(t, map[string][]string{"Content-Type": {"text/html"}}, resp.HeaderMap())
	})

	t.Run("without header", func(t *testing.T) {
		t.Parallel()

		resp, err := newResponse(t).WithHeader("X-Gone", "1")
		require.NoError(t, err)
		stripped := resp.WithoutHeader("x-gone")

		require.False(t, stripped.HasHeader("X-Gone"))
		require.True(t, resp.HasHeader("X-Gone"))
		require.False(t, stripped.WithoutHeader("X-Absent").HasHeader("X-Absent"))
	})

	t.Run("invalid names", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"", "Bad Header", "Bad:Header", "Bad\nHeader", "(x)"} {
			_, err := newResponse(t).WithHeader(name, "v")
			require.ErrorIs(t, err, httpmsg.ErrInvalidHeaderName, name)
			require.ErrorIs(t, err, httpmsg.ErrValidation, name)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()

		for _, value := range []any{nil, true, struct{}{}, []string{}, []any{map[string]int{}}, "a\r\nInjected: 1"} {
			_, err := newResponse(t).WithAddedHeader("X-Bad", value)
			require.ErrorIs(t, err, httpmsg.ErrInvalidHeaderValue)
		}
	})

	t.Run("withers leave receiver unchanged", func(t *testing.T) {
		t.Parallel()

		orig, err := newResponse(t).WithHeader("X-Keep", "1")
		require.NoError(t, err)

		_, err = orig.WithHeader("X-Keep", "2")
		require.NoError(t, err)
		_, err = orig.WithAddedHeader("X-Keep", "3")
		require.NoError(t, err)
		_ = orig.WithoutHeader("X-Keep")
		_, err = orig.WithProtocolVersion("2")
		require.NoError(t, err)
		_ = orig.WithBody(httpmsg.NewStreamFromString("new"))

		require.Equal(t, []string{"1"}, orig.Header("X-Keep"))
		require.Equal(t, "1.1", orig.ProtocolVersion())
		require.Empty(t, orig.Body().String())
	})
}

func TestMessageBodyAndProtocol(t *testing.T) {
	t.Parallel()

	t.Run("body defaults to empty stream", func(t *testing.T) {
		t.Parallel()

		resp := newResponse(t)
		body := resp.Body()
		require.NotNil(t, body)
		require.Same(t, body, resp.Body())
		require.Empty(t, body.String())
	})

	t.Run("with body shares the stream", func(t *testing.T) {
		t.Parallel()

		s := httpmsg.NewStreamFromString("hi")
		resp := newResponse(t).WithBody(s)
		require.Same(t, s, resp.Body())
	})

	t.Run("protocol versions", func(t *testing.T) {
		t.Parallel()

		for _, v := range []string{"1.0", "1.1", "2", "2.0", "3"} {
			resp, err := newResponse(t).WithProtocolVersion(v)
			require.NoError(t, err)
			require.Equal(t, v, resp.ProtocolVersion())
		}

		_, err := newResponse(t).WithProtocolVersion("HTTP/1.1")
		require.ErrorIs(t, err, httpmsg.ErrInvalidProtocol)
	})
}
