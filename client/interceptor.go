// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/duoscience/duoscience-go/auth"
)

// Interceptor defines a middleware function that can intercept and modify
// requests and responses.
type Interceptor func(ctx context.Context, req *http.Request, invoker Invoker) (*http.Response, error)

// Invoker represents the next handler in the interceptor chain.
type Invoker func(ctx context.Context, req *http.Request) (*http.Response, error)

// chainInterceptors chains multiple interceptors together.
func chainInterceptors(interceptors []Interceptor, invoker Invoker) Invoker {
	if len(interceptors) == 0 {
		return invoker
	}

	// Build the chain from right to left
	for i := len(interceptors) - 1; i >= 0; i-- {
		interceptor := interceptors[i]
		next := invoker
		invoker = func(ctx context.Context, req *http.Request) (*http.Response, error) {
			return interceptor(ctx, req, next)
		}
	}

	return invoker
}

// LoggingInterceptor logs requests and responses.
func LoggingInterceptor(logger *slog.Logger) Interceptor {
	return func(ctx context.Context, req *http.Request, invoker Invoker) (*http.Response, error) {
		logger.DebugContext(ctx, "request", slog.String("method", req.Method), slog.String("url", req.URL.String()))

		resp, err := invoker(ctx, req)
		if err != nil {
			logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
			return resp, err
		}

		logger.DebugContext(ctx, "response", slog.Int("status", resp.StatusCode))
		return resp, nil
	}
}

// RetryInterceptor retries requests based on the retry configuration.
// Only status codes in shouldRetry trigger a retry; the request body must
// be replayable (GetBody set), which is the case for the client's own
// requests.
func RetryInterceptor(config RetryConfig) Interceptor {
	return func(ctx context.Context, req *http.Request, invoker Invoker) (*http.Response, error) {
		var lastErr error
		var resp *http.Response

		for attempt := 0; attempt <= config.MaxRetries; attempt++ {
			if attempt > 0 {
				if req.GetBody != nil {
					body, err := req.GetBody()
					if err != nil {
						return nil, err
					}
					req.Body = body
				}

				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(calculateDelay(config, attempt-1)):
				}
			}

			resp, lastErr = invoker(ctx, req)
			if lastErr != nil {
				continue
			}
			if !shouldRetry(resp.StatusCode) {
				return resp, nil
			}
			if attempt < config.MaxRetries && resp.Body != nil {
				resp.Body.Close()
			}
		}

		return resp, lastErr
	}
}

// AuthInterceptor sets the Authorization header from credentials.
func AuthInterceptor(credentials *auth.Credentials) Interceptor {
	return func(ctx context.Context, req *http.Request, invoker Invoker) (*http.Response, error) {
		if credentials != nil && credentials.Type != auth.CredentialTypeNone {
			header, err := credentials.ToAuthHeader()
			if err != nil {
				return nil, NewConfigurationError("invalid credentials", err)
			}
			req.Header.Set("Authorization", header)
		}
		return invoker(ctx, req)
	}
}

// UserAgentInterceptor adds a User-Agent header to requests.
func UserAgentInterceptor(userAgent string) Interceptor {
	return func(ctx context.Context, req *http.Request, invoker Invoker) (*http.Response, error) {
		req.Header.Set("User-Agent", userAgent)
		return invoker(ctx, req)
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) Interceptor {
	return func(ctx context.Context, req *http.Request, invoker Invoker) (*http.Response, error) {
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		return invoker(ctx, req)
	}
}

// shouldRetry determines if a response should be retried based on status code.
func shouldRetry(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusRequestTimeout || statusCode == http.StatusTooManyRequests
}

// calculateDelay calculates the delay for the next retry attempt.
func calculateDelay(config RetryConfig, attempt int) time.Duration {
	multiplier := config.Multiplier
	if multiplier < 1 {
		multiplier = 2.0
	}
	return min(time.Duration(float64(config.RetryDelay)*math.Pow(multiplier, float64(attempt))), config.MaxRetryDelay)
}
