package repository

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRemoteWriteClient(t *testing.T) {
	t.Run("requires a URL", func(t *testing.T) {
		_, err := NewRemoteWriteClient("", time.Second, nil)
		assert.Error(t, err)
	})

	t.Run("valid configuration", func(t *testing.T) {
		client, err := NewRemoteWriteClient("http://localhost:9090/api/v1/write", time.Second, nil)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestSendGauges(t *testing.T) {
	samples := []GaugeSample{
		{Name: "usagemon_usage_percent", Value: 42.5, Labels: map[string]string{"host": "test-host"}},
		{Name: "usagemon_tokens_used", Value: 4250, Labels: map[string]string{"host": "test-host"}},
	}

	t.Run("sends a snappy compressed protobuf request", func(t *testing.T) {
		var gotHeaders http.Header
		var gotBody []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeaders = r.Header.Clone()
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client, err := NewRemoteWriteClient(server.URL, 5*time.Second, nil)
		require.NoError(t, err)

		require.NoError(t, client.SendGauges(context.Background(), samples))

		assert.Equal(t, "application/x-protobuf", gotHeaders.Get("Content-Type"))
		assert.Equal(t, "snappy", gotHeaders.Get("Content-Encoding"))
		assert.Equal(t, "0.1.0", gotHeaders.Get("X-Prometheus-Remote-Write-Version"))

		decoded, err := snappy.Decode(nil, gotBody)
		require.NoError(t, err)
		assert.NotEmpty(t, decoded)
	})

	t.Run("adds basic auth when configured", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, err := NewRemoteWriteClient(server.URL, 5*time.Second, &AuthConfig{
			Username: "metrics",
			Password: "secret",
		})
		require.NoError(t, err)

		require.NoError(t, client.SendGauges(context.Background(), samples))
		assert.Contains(t, gotAuth, "Basic ")
	})

	t.Run("incomplete basic auth fails before sending", func(t *testing.T) {
		client, err := NewRemoteWriteClient("http://localhost:9090", time.Second, &AuthConfig{
			Username: "metrics",
		})
		require.NoError(t, err)

		err = client.SendGauges(context.Background(), samples)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "username and password")
	})

	t.Run("non-2xx response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "out of order sample", http.StatusBadRequest)
		}))
		defer server.Close()

		client, err := NewRemoteWriteClient(server.URL, 5*time.Second, nil)
		require.NoError(t, err)

		err = client.SendGauges(context.Background(), samples)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
	})

	t.Run("empty sample set is a no-op", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		client, err := NewRemoteWriteClient(server.URL, time.Second, nil)
		require.NoError(t, err)

		require.NoError(t, client.SendGauges(context.Background(), nil))
		assert.False(t, called)
	})
}
