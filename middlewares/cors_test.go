package middlewares_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dfiliuk-tech/hw-2/middlewares"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	var reached bool
	tracking := func(ctx context.Context, req *httpmsg.ServerRequest) (*httpmsg.Response, error) {
		reached = true
		return okHandler(ctx, req)
	}

	t.Run("non-CORS request is untouched", func(t *testing.T) {
		t.Parallel()
		resp, err := middlewares.CORS()(okHandler)(context.Background(), newRequest(t, http.MethodGet, "/"))
		require.NoError(t, err)
		require.False(t, resp.HasHeader("Access-Control-Allow-Origin"))
		require.False(t, resp.HasHeader("Vary"))
	})

	t.Run("wildcard origin", func(t *testing.T) {
		t.Parallel()
		req := newRequest(t, http.MethodGet, "/", [2]string{"Origin", "https://a.example.com"})
		resp, err := middlewares.CORS()(okHandler)(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, "*", resp.HeaderLine("Access-Control-Allow-Origin"))
		require.Equal(t, "Origin", resp.HeaderLine("Vary"))
		require.Equal(t, http.StatusOK, resp.StatusCode())
	})

	t.Run("credentials echo the origin", func(t *testing.T) {
		t.Parallel()
		req := newRequest(t, http.MethodGet, "/", [2]string{"Origin", "https://a.example.com"})
		resp, err := middlewares.CORS(
			middlewares.WithAllowCredentials(),
			middlewares.WithExposeHeaders("X-Request-ID"),
		)(okHandler)(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, "https://a.example.com", resp.HeaderLine("Access-Control-Allow-Origin"))
		require.Equal(t, "true", resp.HeaderLine("Access-Control-Allow-Credentials"))
		require.Equal(t, "X-Request-ID", resp.HeaderLine("Access-Control-Expose-Headers"))
	})

	t.Run("disallowed origin gets no headers", func(t *testing.T) {
		t.Parallel()
		req := newRequest(t, http.MethodGet, "/", [2]string{"Origin", "https://evil.example"})
		resp, err := middlewares.CORS(middlewares.WithAllowOrigins("https://app.example.com"))(okHandler)(context.Background(), req)
		require.NoError(t, err)
		require.False(t, resp.HasHeader("Access-Control-Allow-Origin"))
	})

	t.Run("origin func overrides the list", func(t *testing.T) {
		t.Parallel()
		req := newRequest(t, http.MethodGet, "/", [2]string{"Origin", "https://tenant.example.com"})
		resp, err := middlewares.CORS(
			middlewares.WithAllowOrigins("https://app.example.com"),
			middlewares.WithAllowOriginFunc(func(origin string) bool {
				return strings.HasSuffix(origin, ".example.com")
			}),
		)(okHandler)(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, "https://tenant.example.com", resp.HeaderLine("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := newRequest(t, http.MethodOptions, "/api/status", [2]string{"Origin", "https://a.example.com"})
		resp, err := middlewares.CORS(
			middlewares.WithAllowMethods(http.MethodGet, http.MethodPost),
			middlewares.WithAllowHeaders("Content-Type"),
			middlewares.WithMaxAge(time.Hour),
		)(tracking)(context.Background(), req)
		require.NoError(t, err)
		require.False(t, reached)
		require.Equal(t, http.StatusNoContent, resp.StatusCode())
		require.Equal(t, "GET, POST", resp.HeaderLine("Access-Control-Allow-Methods"))
		require.Equal(t, "Content-Type", resp.HeaderLine("Access-Control-Allow-Headers"))
		require.Equal(t, "3600", resp.HeaderLine("Access-Control-Max-Age"))
		require.Equal(t, []string{"Origin", "Access-Control-Request-Method", "Access-Control-Request-Headers"}, resp.Header("Vary"))
	})
}
