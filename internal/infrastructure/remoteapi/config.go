// Package remoteapi implements the remote inventory-service client over its
// authenticated JSON REST API.
package remoteapi

import (
	"errors"
	"strings"
)

// Config holds configuration for the remote inventory service API
type Config struct {
	// BaseURL is the API root, e.g. "https://cloudapi.example.com"
	BaseURL string
	// APIKey is the bearer token issued for the company account
	APIKey string
	// CompanyID scopes every request to one company
	CompanyID string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Errors for remote API configuration
var (
	ErrConfigMissingBaseURL   = errors.New("remoteapi: base URL is required")
	ErrConfigMissingAPIKey    = errors.New("remoteapi: API key is required")
	ErrConfigMissingCompanyID = errors.New("remoteapi: company ID is required")
)

// NewConfig creates a remote API configuration with defaults
func NewConfig(baseURL, apiKey, companyID string) *Config {
	return &Config{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		CompanyID:      companyID,
		TimeoutSeconds: 30,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.CompanyID == "" {
		return ErrConfigMissingCompanyID
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}
