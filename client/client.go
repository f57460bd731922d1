// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

// Package client provides the HTTP client for the DuoScience task API.
//
// Every task follows the same two-step flow: a POST to the task endpoint
// is acknowledged with 202 Accepted and a task id, and the task's events
// are then streamed over SSE until a terminal status arrives. The client
// hides the two steps behind channel-returning methods, one per endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	duoscience "github.com/duoscience/duoscience-go"
)

const defaultUserAgent = "duoscience-go/client " + duoscience.Version

// Client defines the interface for DuoScience API clients.
type Client interface {
	// Chat starts a chat task and returns a channel of its events.
	Chat(ctx context.Context, params *duoscience.TaskParams, opts ...RequestOption) (<-chan *duoscience.Event, error)

	// Research starts a deep-research task and returns a channel of its events.
	Research(ctx context.Context, params *duoscience.TaskParams, opts ...RequestOption) (<-chan *duoscience.Event, error)

	// Hypotheses starts a hypothesis-generation task and returns a channel of its events.
	Hypotheses(ctx context.Context, params *duoscience.TaskParams, opts ...RequestOption) (<-chan *duoscience.Event, error)

	// StartTask performs only the POST step and returns the acknowledgement.
	StartTask(ctx context.Context, endpoint string, params *duoscience.TaskParams, opts ...RequestOption) (*duoscience.TaskAck, error)

	// StreamTask attaches to the event stream of an already started task.
	StreamTask(ctx context.Context, taskID string, opts ...RequestOption) (<-chan *duoscience.Event, error)

	// Close closes the client and releases any resources.
	Close() error
}

// HTTPClient implements the Client interface using HTTP requests.
type HTTPClient struct {
	httpClient   *http.Client
	streamClient *http.Client
	baseURL      string
	options      Options
	logger       *slog.Logger
	startInvoker Invoker
	streamInvoke Invoker
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTP client for the API at baseURL. An empty
// baseURL falls back to [duoscience.DefaultBaseURL].
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	options := applyOptions(opts...)

	if baseURL == "" {
		baseURL = duoscience.DefaultBaseURL
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.Timeout}
	}

	// The event stream outlives any request timeout, so it gets a clone
	// of the client without one.
	streamClient := &http.Client{
		Transport:     httpClient.Transport,
		CheckRedirect: httpClient.CheckRedirect,
		Jar:           httpClient.Jar,
	}

	c := &HTTPClient{
		httpClient:   httpClient,
		streamClient: streamClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		options:      options,
		logger:       logger,
	}

	base := append([]Interceptor{}, options.Interceptors...)
	if len(options.Headers) > 0 {
		headers := make(map[string]string, len(options.Headers))
		for key := range options.Headers {
			headers[key] = options.Headers.Get(key)
		}
		base = append(base, HeaderInterceptor(headers))
	}
	base = append(base,
		AuthInterceptor(options.Credentials),
		UserAgentInterceptor(options.UserAgent),
		LoggingInterceptor(logger),
	)

	// Retries cover the POST step only. Replaying an event stream would
	// deliver duplicate events, so attaching again is left to the caller.
	startChain := append(append([]Interceptor{}, base...), RetryInterceptor(options.RetryConfig))
	c.startInvoker = chainInterceptors(startChain, func(ctx context.Context, req *http.Request) (*http.Response, error) {
		return c.httpClient.Do(req)
	})
	c.streamInvoke = chainInterceptors(base, func(ctx context.Context, req *http.Request) (*http.Response, error) {
		return c.streamClient.Do(req)
	})

	return c
}

// Chat starts a chat task and returns a channel of its events.
func (c *HTTPClient) Chat(ctx context.Context, params *duoscience.TaskParams, opts ...RequestOption) (<-chan *duoscience.Event, error) {
	return c.runTask(ctx, duoscience.EndpointChat, params, opts...)
}

// Research starts a deep-research task and returns a channel of its events.
func (c *HTTPClient) Research(ctx context.Context, params *duoscience.TaskParams, opts ...RequestOption) (<-chan *duoscience.Event, error) {
	return c.runTask(ctx, duoscience.EndpointResearch, params, opts...)
}

// Hypotheses starts a hypothesis-generation task and returns a channel of its events.
func (c *HTTPClient) Hypotheses(ctx context.Context, params *duoscience.TaskParams, opts ...RequestOption) (<-chan *duoscience.Event, error) {
	return c.runTask(ctx, duoscience.EndpointHypotheses, params, opts...)
}

// runTask performs the two-step flow for a task endpoint.
func (c *HTTPClient) runTask(ctx context.Context, endpoint string, params *duoscience.TaskParams, opts ...RequestOption) (<-chan *duoscience.Event, error) {
	ack, err := c.StartTask(ctx, endpoint, params, opts...)
	if err != nil {
		return nil, err
	}
	return c.StreamTask(ctx, ack.TaskID, opts...)
}

// StartTask sends the POST that initiates a task and returns the
// acknowledgement carrying the task id.
func (c *HTTPClient) StartTask(ctx context.Context, endpoint string, params *duoscience.TaskParams, opts ...RequestOption) (*duoscience.TaskAck, error) {
	if params == nil {
		return nil, NewValidationError("params cannot be nil", nil)
	}
	if err := params.Validate(); err != nil {
		return nil, NewValidationError("invalid task params", err)
	}

	prepared := *params
	prepared.Files = c.prepareFiles(ctx, params.Files)

	payload, err := json.Marshal(&prepared)
	if err != nil {
		return nil, NewJSONError("failed to marshal task params", err)
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, NewConfigurationError("failed to create request", err)
	}

	requestConfig := applyRequestOptions(opts...)
	for key, value := range requestConfig.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.InfoContext(ctx, "initiating task", slog.String("url", url))

	resp, err := c.startInvoker(ctx, req)
	if err != nil {
		return nil, NewNetworkError("failed to start task", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, NewHTTPError(resp.StatusCode,
			fmt.Sprintf("failed to start task: %s", strings.TrimSpace(string(body))), nil)
	}

	var ack duoscience.TaskAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, NewJSONError("failed to unmarshal task acknowledgement", err)
	}
	if err := ack.Validate(); err != nil {
		return nil, NewProtocolError("invalid task acknowledgement", err)
	}

	c.logger.InfoContext(ctx, "task started", slog.String("task_id", ack.TaskID))
	return &ack, nil
}

// StreamTask opens the SSE stream for taskID and returns a channel of its
// events. The channel is closed after the first terminal event, when the
// context is canceled, or when the connection is lost; a lost connection
// is surfaced as a final synthetic error event.
func (c *HTTPClient) StreamTask(ctx context.Context, taskID string, opts ...RequestOption) (<-chan *duoscience.Event, error) {
	if taskID == "" {
		return nil, NewValidationError("task ID cannot be empty", nil)
	}

	url := c.baseURL + duoscience.StreamPathPrefix + taskID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewConfigurationError("failed to create request", err)
	}

	requestConfig := applyRequestOptions(opts...)
	for key, value := range requestConfig.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	c.logger.InfoContext(ctx, "connecting to event stream", slog.String("url", url))

	resp, err := c.streamInvoke(ctx, req)
	if err != nil {
		return nil, NewNetworkError("failed to connect to event stream", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, NewHTTPError(resp.StatusCode, "event stream request failed", nil)
	}

	ch := make(chan *duoscience.Event, 10)

	go func() {
		defer close(ch)

		conn := NewStreamConn(resp.Body)
		defer conn.Close()

		for {
			event, err := conn.ReadEvent(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// A clean EOF is the server ending the stream; only an
				// abnormal failure becomes a synthetic error event.
				if errors.Is(err, io.EOF) {
					return
				}
				c.logger.ErrorContext(ctx, "event stream lost",
					slog.String("task_id", taskID), slog.Any("error", err))
				select {
				case ch <- duoscience.ErrorEvent("streaming error: the connection was lost: %v", err):
				case <-ctx.Done():
				}
				return
			}

			select {
			case ch <- event:
			case <-ctx.Done():
				return
			}

			if event.Terminal() {
				c.logger.InfoContext(ctx, "task finished",
					slog.String("task_id", taskID), slog.String("status", string(event.Status)))
				return
			}
		}
	}()

	return ch, nil
}

// Close closes the client and releases any resources.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	c.streamClient.CloseIdleConnections()
	return nil
}
