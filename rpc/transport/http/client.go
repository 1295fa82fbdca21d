package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/transport"
)

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

type httpClientTransport struct {
	serverURLs []string
	client     *http.Client
	counter    atomic.Uint32
	retryCount int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// Parse each server URL, a bare host:port gets the http scheme
	serverURLs := make([]string, len(config.Endpoints))
	for i, server := range config.Endpoints {
		if !strings.Contains(server, "://") {
			server = "http://" + server
		}
		parsedURL, err := url.Parse(server)
		if err != nil {
			return err
		}
		serverURLs[i] = strings.TrimSuffix(parsedURL.String(), "/")
	}

	t.client = &http.Client{
		Timeout: time.Duration(config.TimeoutSecond) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: max(config.ConnectionsPerEndpoint, 10),
			IdleConnTimeout:     90 * time.Second,
		},
	}
	t.serverURLs = serverURLs
	t.counter.Store(0)
	t.retryCount = max(config.RetryCount, 1)

	return nil
}

func (t *httpClientTransport) Send(hostID string, req []byte) (resp []byte, err error) {
	if t.client == nil {
		return nil, fmt.Errorf("http transport not initialized")
	}

	for i := 0; i < t.retryCount; i++ {
		// Select the next server via round-robin
		idx := t.counter.Add(1) % uint32(len(t.serverURLs))
		requestURL := t.serverURLs[idx] + "/" + url.PathEscape(hostID)

		resp, err = t.post(requestURL, req)
		if err == nil {
			return resp, nil
		}
		Logger.Debugf("Request attempt %d/%d to %s failed: %v", i+1, t.retryCount, requestURL, err)
	}
	return nil, err
}

func (t *httpClientTransport) Close() error {
	if t.client != nil {
		t.client.CloseIdleConnections()
	}

	t.client = nil
	t.serverURLs = nil

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// post sends one request, the body reader is created per attempt
func (t *httpClientTransport) post(requestURL string, req []byte) ([]byte, error) {
	httpResponse, err := t.client.Post(requestURL, "application/octet-stream", bytes.NewReader(req))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error: %s", httpResponse.Status)
	}

	return io.ReadAll(httpResponse.Body)
}
