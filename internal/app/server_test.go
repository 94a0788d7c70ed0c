//go:build !integration

package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/nosenfield/smart-scrip/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
}

func TestNewServer(t *testing.T) {
	tests := []struct {
		name             string
		cfg              config.ServerConfig
		wantWriteTimeout time.Duration
		wantShutdown     time.Duration
	}{
		{
			name:             "configured timeouts",
			cfg:              config.ServerConfig{Port: "8080", RequestTimeout: 60 * time.Second, ShutdownTimeout: 20 * time.Second},
			wantWriteTimeout: 65 * time.Second,
			wantShutdown:     20 * time.Second,
		},
		{
			name:             "default shutdown timeout",
			cfg:              config.ServerConfig{Port: "9090", RequestTimeout: 30 * time.Second},
			wantWriteTimeout: 35 * time.Second,
			wantShutdown:     10 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewServer(okHandler(), tt.cfg)

			assert.Equal(t, ":"+tt.cfg.Port, server.httpServer.Addr)
			assert.Equal(t, 15*time.Second, server.httpServer.ReadTimeout)
			assert.Equal(t, tt.wantWriteTimeout, server.httpServer.WriteTimeout)
			assert.Equal(t, 60*time.Second, server.httpServer.IdleTimeout)
			assert.Equal(t, tt.wantShutdown, server.shutdownTimeout)
		})
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(okHandler(), config.ServerConfig{RequestTimeout: time.Second, ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(ctx, ln)
	}()

	url := fmt.Sprintf("http://%s/", ln.Addr().String())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestServer_Run_ListenError(t *testing.T) {
	server := NewServer(okHandler(), config.ServerConfig{Port: "invalid-port"})

	err := server.Run(context.Background())
	assert.Error(t, err)
}
