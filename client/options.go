// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/duoscience/duoscience-go/auth"
)

// Options represents the configuration options for the DuoScience client.
type Options struct {
	// HTTPClient is the HTTP client to use for requests.
	// If nil, a client with the default timeout is used for the POST step
	// and a timeout-free clone of it for the event stream.
	HTTPClient *http.Client

	// Headers are additional HTTP headers to include in every request.
	Headers http.Header

	// Timeout is the timeout for the task-start POST request. It does not
	// apply to the event stream, which runs until a terminal event or
	// context cancellation.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	UserAgent string

	// Logger receives client logs. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Credentials supplies the Authorization header. If nil, requests are
	// sent unauthenticated.
	Credentials *auth.Credentials

	// RetryConfig configures the retry behavior for the task-start POST.
	RetryConfig RetryConfig

	// Interceptors are applied to every request, outermost first.
	Interceptors []Interceptor

	// Compression configures automatic image attachment compression.
	Compression CompressionConfig
}

// RetryConfig configures retry behavior for failed task-start requests.
// The event stream itself is never retried transparently; callers resume
// with StreamTask.
type RetryConfig struct {
	// MaxRetries is the maximum number of retries for a request.
	// If zero, no retries will be attempted.
	MaxRetries int

	// RetryDelay is the base delay between retries. The actual delay is
	// calculated using exponential backoff.
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay between retries.
	MaxRetryDelay time.Duration

	// Multiplier is the backoff multiplier applied per attempt.
	Multiplier float64
}

// CompressionConfig configures automatic compression of image attachments
// before they are base64-encoded, to keep request bodies under the
// server's payload limit.
type CompressionConfig struct {
	// Disabled turns automatic image compression off.
	Disabled bool

	// MaxDim is the maximum width/height after resizing.
	MaxDim int

	// Quality is the JPEG quality (1-95).
	Quality int

	// ConvertToJPEG re-encodes other image formats as JPEG.
	ConvertToJPEG bool
}

// DefaultOptions returns the default client options.
func DefaultOptions() Options {
	return Options{
		Timeout:   30 * time.Second,
		UserAgent: defaultUserAgent,
		RetryConfig: RetryConfig{
			MaxRetries:    3,
			RetryDelay:    100 * time.Millisecond,
			MaxRetryDelay: 10 * time.Second,
			Multiplier:    2.0,
		},
		Compression: CompressionConfig{
			MaxDim:        1280,
			Quality:       80,
			ConvertToJPEG: true,
		},
	}
}

// Option is a function that configures a Client.
type Option func(*Options)

// WithHTTPClient sets the HTTP client to use for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// WithTimeout sets the timeout for the task-start POST request.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithHeaders sets additional HTTP headers to include in requests.
func WithHeaders(headers http.Header) Option {
	return func(o *Options) {
		o.Headers = headers
	}
}

// WithUserAgent sets the User-Agent header value.
func WithUserAgent(userAgent string) Option {
	return func(o *Options) {
		o.UserAgent = userAgent
	}
}

// WithLogger sets the [*slog.Logger] for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithCredentials sets the credentials supplying the Authorization header.
func WithCredentials(credentials *auth.Credentials) Option {
	return func(o *Options) {
		o.Credentials = credentials
	}
}

// WithAPIKey is a shortcut for API-key credentials.
func WithAPIKey(apiKey string) Option {
	return WithCredentials(auth.NewAPIKeyCredentials(apiKey))
}

// WithBearerToken is a shortcut for bearer-token credentials.
func WithBearerToken(token string) Option {
	return WithCredentials(auth.NewBearerCredentials(token, nil))
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(config RetryConfig) Option {
	return func(o *Options) {
		o.RetryConfig = config
	}
}

// WithMaxRetries sets the maximum number of retries for a request.
func WithMaxRetries(maxRetries int) Option {
	return func(o *Options) {
		o.RetryConfig.MaxRetries = maxRetries
	}
}

// WithInterceptors appends interceptors to the client's chain.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(o *Options) {
		o.Interceptors = append(o.Interceptors, interceptors...)
	}
}

// WithImageCompression sets the image compression parameters.
func WithImageCompression(config CompressionConfig) Option {
	return func(o *Options) {
		o.Compression = config
	}
}

// WithoutImageCompression disables automatic image compression.
func WithoutImageCompression() Option {
	return func(o *Options) {
		o.Compression.Disabled = true
	}
}

func applyOptions(opts ...Option) Options {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// RequestOption configures a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers map[string]string
}

// WithRequestHeader adds a header to a single request.
func WithRequestHeader(key, value string) RequestOption {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

func applyRequestOptions(opts ...RequestOption) requestConfig {
	var config requestConfig
	for _, opt := range opts {
		opt(&config)
	}
	return config
}
