// Copyright 2025 The DuoScience Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth provides client-side credential handling for the DuoScience API.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwt"
)

// CredentialType represents the type of credentials.
type CredentialType string

// Credential types.
const (
	CredentialTypeNone   CredentialType = "none"
	CredentialTypeAPIKey CredentialType = "api_key"
	CredentialTypeBearer CredentialType = "bearer"
	CredentialTypeJWT    CredentialType = "jwt"
)

// Credentials represents authentication credentials for API requests.
type Credentials struct {
	Type        CredentialType `json:"type"`
	AccessToken string         `json:"access_token,omitempty"`
	APIKey      string         `json:"api_key,omitempty"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
}

// NewAPIKeyCredentials creates API key credentials.
func NewAPIKeyCredentials(apiKey string) *Credentials {
	return &Credentials{
		Type:   CredentialTypeAPIKey,
		APIKey: apiKey,
	}
}

// NewBearerCredentials creates bearer token credentials.
func NewBearerCredentials(accessToken string, expiresAt *time.Time) *Credentials {
	return &Credentials{
		Type:        CredentialTypeBearer,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}
}

// ParseJWTCredentials builds credentials from a JWT token string, reading
// the expiration time out of the token. The signature is not verified;
// verification is the server's job, the client only needs the expiry to
// know when to stop sending the token.
func ParseJWTCredentials(tokenString string) (*Credentials, error) {
	token, err := jwt.Parse([]byte(tokenString), jwt.WithValidate(false), jwt.WithVerify(false))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT token: %w", err)
	}

	var expiresAt *time.Time
	if exp, ok := token.Expiration(); ok && !exp.IsZero() {
		expiresAt = &exp
	}

	return &Credentials{
		Type:        CredentialTypeJWT,
		AccessToken: tokenString,
		ExpiresAt:   expiresAt,
	}, nil
}

// IsExpired checks if the credentials are expired.
func (c *Credentials) IsExpired() bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*c.ExpiresAt)
}

// IsValid checks if the credentials are usable.
func (c *Credentials) IsValid() bool {
	if c.Type == CredentialTypeNone {
		return true
	}
	if c.IsExpired() {
		return false
	}

	switch c.Type {
	case CredentialTypeAPIKey:
		return c.APIKey != ""
	case CredentialTypeBearer, CredentialTypeJWT:
		return c.AccessToken != ""
	default:
		return false
	}
}

// ToAuthHeader converts credentials to an Authorization header value.
func (c *Credentials) ToAuthHeader() (string, error) {
	if !c.IsValid() {
		return "", fmt.Errorf("credentials are not valid")
	}

	switch c.Type {
	case CredentialTypeAPIKey:
		return "Bearer " + c.APIKey, nil
	case CredentialTypeBearer, CredentialTypeJWT:
		return "Bearer " + c.AccessToken, nil
	default:
		return "", fmt.Errorf("unsupported credential type for auth header: %s", c.Type)
	}
}

// CredentialService defines the interface for managing credentials, keyed
// by context id (a user or chat identifier).
type CredentialService interface {
	// GetCredentials retrieves credentials for a given context.
	GetCredentials(ctx context.Context, contextID string) (*Credentials, error)

	// StoreCredentials stores credentials for a given context.
	StoreCredentials(ctx context.Context, contextID string, credentials *Credentials) error

	// DeleteCredentials deletes credentials for a given context.
	DeleteCredentials(ctx context.Context, contextID string) error
}

// InMemoryCredentialService is a CredentialService backed by a map. It is
// safe for concurrent use.
type InMemoryCredentialService struct {
	mu          sync.RWMutex
	credentials map[string]*Credentials
}

var _ CredentialService = (*InMemoryCredentialService)(nil)

// NewInMemoryCredentialService creates a new in-memory credential service.
func NewInMemoryCredentialService() *InMemoryCredentialService {
	return &InMemoryCredentialService{
		credentials: make(map[string]*Credentials),
	}
}

// GetCredentials retrieves credentials for a given context.
func (s *InMemoryCredentialService) GetCredentials(ctx context.Context, contextID string) (*Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credentials, ok := s.credentials[contextID]
	if !ok {
		return nil, fmt.Errorf("no credentials for context %q", contextID)
	}
	return credentials, nil
}

// StoreCredentials stores credentials for a given context.
func (s *InMemoryCredentialService) StoreCredentials(ctx context.Context, contextID string, credentials *Credentials) error {
	if credentials == nil {
		return fmt.Errorf("credentials cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[contextID] = credentials
	return nil
}

// DeleteCredentials deletes credentials for a given context.
func (s *InMemoryCredentialService) DeleteCredentials(ctx context.Context, contextID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.credentials, contextID)
	return nil
}
