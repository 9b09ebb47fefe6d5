package middlewares_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
)

func newRequest(t *testing.T, method, target string, headers ...[2]string) *httpmsg.ServerRequest {
	t.Helper()
	opts := make([]httpmsg.Option, 0, len(headers))
	for _, h := range headers {
		opts = append(opts, httpmsg.WithHeaderValue(h[0], h[1]))
	}
	req, err := httpmsg.NewServerRequest(method, target, opts...)
	require.NoError(t, err)
	return req
}

func okHandler(ctx context.Context, _ *httpmsg.ServerRequest) (*httpmsg.Response, error) {
	return httpmsg.NewResponse(http.StatusOK, httpmsg.WithBodyString("ok"))
}
