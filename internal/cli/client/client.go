// Package client is the HTTP client for the weather API server.
package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/lvyanru/weather-apiserver/internal/cli/types"
)

// APIClient wraps a Hertz client for HTTP communication with the API server.
type APIClient struct {
	client *client.Client
	server string
}

// NewAPIClient creates a new API client.
func NewAPIClient(server string) (*APIClient, error) {
	normalizedServer, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	// The standard dialer is required for streaming reads; netpoll does not
	// support BodyStream well.
	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithResponseBodyStream(true),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client: c,
		server: normalizedServer,
	}, nil
}

func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// GetSession fetches one session resource.
func (c *APIClient) GetSession(ctx context.Context, sessionID string) (*types.SessionData, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(fmt.Sprintf("%s"+endpointSession, c.server, sessionID))

	if err := c.client.Do(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("session %s not found (it may have expired)", sessionID)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("failed to get session (HTTP %d)", resp.StatusCode())
	}

	var sessResp types.APIResponse[types.SessionData]
	if err := sonic.Unmarshal(resp.Body(), &sessResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &sessResp.Data, nil
}

// GetHistory fetches the message history of a session.
func (c *APIClient) GetHistory(ctx context.Context, sessionID string) (*types.HistoryData, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(fmt.Sprintf("%s"+endpointSessionHistory, c.server, sessionID))

	if err := c.client.Do(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("session %s not found (it may have expired)", sessionID)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("failed to get history (HTTP %d)", resp.StatusCode())
	}

	var histResp types.APIResponse[types.HistoryData]
	if err := sonic.Unmarshal(resp.Body(), &histResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &histResp.Data, nil
}

// DeleteSession deletes a session. Unknown ids are not an error on the
// server side either.
func (c *APIClient) DeleteSession(ctx context.Context, sessionID string) error {
	req := &protocol.Request{}
	req.SetMethod("DELETE")
	req.SetRequestURI(fmt.Sprintf("%s"+endpointSession, c.server, sessionID))

	resp := &protocol.Response{}
	if err := c.client.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode < 200 || statusCode >= 300 {
		return fmt.Errorf("delete failed with HTTP status: %d, body: %s", statusCode, string(resp.Body()))
	}
	return nil
}

// ChatStreaming sends one chat turn and returns the typed event stream.
func (c *APIClient) ChatStreaming(ctx context.Context, sessionID, userID, message string) (<-chan types.StreamEvent, <-chan error, error) {
	if strings.TrimSpace(message) == "" {
		return nil, nil, fmt.Errorf("chat message must not be empty")
	}

	reqBody := types.ChatRequest{
		Messages:  []types.ChatMessage{{Role: "user", Content: message}},
		Stream:    true,
		SessionID: sessionID,
		UserID:    userID,
	}
	bodyBytes, err := sonic.Marshal(reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpointChatCompletions)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set("Accept", "text/event-stream")
	req.SetBody(bodyBytes)

	if err := c.client.Do(ctx, req, resp); err != nil {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		statusCode := resp.StatusCode()
		body := resp.Body()
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, nil, fmt.Errorf("chat failed with HTTP status: %d, body: %s", statusCode, string(body))
	}

	eventCh := make(chan types.StreamEvent, 10)
	errCh := make(chan error, 1)

	go func() {
		defer func() {
			close(eventCh)
			close(errCh)
			protocol.ReleaseRequest(req)
			protocol.ReleaseResponse(resp)
		}()

		bodyStream := resp.BodyStream()
		if bodyStream == nil {
			errCh <- fmt.Errorf("body stream is nil")
			return
		}
		c.parseEventStream(bodyStream, eventCh, errCh)
	}()

	return eventCh, errCh, nil
}

// Heartbeat opens the server's liveness stream and returns the typed event
// channel. The server closes the stream after a fixed number of pings.
func (c *APIClient) Heartbeat(ctx context.Context) (<-chan types.StreamEvent, <-chan error, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(c.server + endpointHeartbeat)
	req.Header.Set("Accept", "text/event-stream")

	if err := c.client.Do(ctx, req, resp); err != nil {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		statusCode := resp.StatusCode()
		body := resp.Body()
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, nil, fmt.Errorf("heartbeat failed with HTTP status: %d, body: %s", statusCode, string(body))
	}

	eventCh := make(chan types.StreamEvent, 10)
	errCh := make(chan error, 1)

	go func() {
		defer func() {
			close(eventCh)
			close(errCh)
			protocol.ReleaseRequest(req)
			protocol.ReleaseResponse(resp)
		}()

		bodyStream := resp.BodyStream()
		if bodyStream == nil {
			errCh <- fmt.Errorf("body stream is nil")
			return
		}
		c.parseEventStream(bodyStream, eventCh, errCh)
	}()

	return eventCh, errCh, nil
}

// parseEventStream reads the SSE stream line by line. Event names are
// redundant with the "type" field in the JSON body, so only data lines are
// parsed.
func (c *APIClient) parseEventStream(reader io.Reader, eventCh chan<- types.StreamEvent, errCh chan<- error) {
	scanner := bufio.NewScanner(reader)

	const maxScanTokenSize = 1024 * 1024
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, ":") || strings.HasPrefix(line, "event:") || strings.HasPrefix(line, "id:") {
			continue
		}

		if strings.HasPrefix(line, "data:") {
			dataStr := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

			if dataStr == "[DONE]" {
				return
			}

			var ev types.StreamEvent
			if err := sonic.Unmarshal([]byte(dataStr), &ev); err != nil {
				errCh <- fmt.Errorf("failed to parse event: %w", err)
				return
			}

			select {
			case eventCh <- ev:
			case <-time.After(5 * time.Second):
				errCh <- fmt.Errorf("timeout sending event to channel")
				return
			}
		}
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		errCh <- fmt.Errorf("scanner error: %w", err)
	}
}
