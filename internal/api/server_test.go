package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/survey/backend/internal/config"
)

func testServerConfig(t *testing.T) config.ServerConfig {
	t.Helper()
	t.Setenv("ECS_CONTAINER_METADATA_URI", "")
	t.Setenv("AWS_EXECUTION_ENV", "")
	t.Setenv("SERVER_HOST", "")
	return config.ServerConfig{Host: "127.0.0.1", Port: 0, ReadTimeoutSeconds: 5, WriteTimeoutSeconds: 5}
}

func TestServer_ShutdownBeforeListenStopsServer(t *testing.T) {
	s := NewServer(testServerConfig(t), http.NotFoundHandler())

	require.NoError(t, s.Shutdown(context.Background()))
	assert.ErrorIs(t, s.ListenAndServe(), http.ErrServerClosed)
}

func TestServer_ShutdownWhileServing(t *testing.T) {
	s := NewServer(testServerConfig(t), http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:0", s.Addr())

	errc := make(chan error, 1)
	go func() { errc <- s.ListenAndServe() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after Shutdown")
	}
}
