package repository

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang/snappy"
)

// RemoteWriteClient sends metrics to a Prometheus Remote Write endpoint
type RemoteWriteClient struct {
	url        string
	client     *http.Client
	authConfig *AuthConfig
}

// AuthConfig holds authentication configuration (basic auth only)
type AuthConfig struct {
	Username string
	Password string
}

// GaugeSample is one gauge value with its labels. All samples of a push share
// one timestamp and travel in a single WriteRequest.
type GaugeSample struct {
	Name   string
	Value  float64
	Labels map[string]string
}

// NewRemoteWriteClient creates a new Remote Write client
func NewRemoteWriteClient(url string, timeout time.Duration, authConfig *AuthConfig) (*RemoteWriteClient, error) {
	if url == "" {
		return nil, fmt.Errorf("remote write URL is required")
	}

	return &RemoteWriteClient{
		url:        url,
		client:     &http.Client{Timeout: timeout},
		authConfig: authConfig,
	}, nil
}

// SendGauges pushes the samples in one write request. The call is single
// shot; retrying is the caller's decision.
func (c *RemoteWriteClient) SendGauges(ctx context.Context, samples []GaugeSample) error {
	if len(samples) == 0 {
		return nil
	}

	data, err := encodeWriteRequest(samples, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to encode write request: %w", err)
	}

	compressed := snappy.Encode(nil, data)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/x-protobuf")
	httpReq.Header.Set("Content-Encoding", "snappy")
	httpReq.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")

	if err := c.addAuthentication(httpReq); err != nil {
		return fmt.Errorf("failed to add authentication: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("remote write failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// addAuthentication adds authentication headers to the request
func (c *RemoteWriteClient) addAuthentication(req *http.Request) error {
	if c.authConfig == nil {
		return nil
	}

	if c.authConfig.Username == "" || c.authConfig.Password == "" {
		return fmt.Errorf("basic auth requires username and password")
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.authConfig.Username + ":" + c.authConfig.Password))
	req.Header.Set("Authorization", "Basic "+auth)

	return nil
}
