package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ResponseProvider maps a user question to advisory text.
type ResponseProvider interface {
	Generate(ctx context.Context, question string) (string, error)
}

// CredentialStore is the persisted API key. Load returns "" when nothing has
// been saved yet.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, value string) error
}

// ErrMissingCredential means a remote provider was asked to generate before
// any API key was saved. No request is attempted.
var ErrMissingCredential = errors.New("gemini api key is not configured")

// UpstreamError covers every failure of the remote endpoint: transport,
// non-success status, or a response without the expected text.
type UpstreamError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := "gemini request failed"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s with status %d", msg, e.StatusCode)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

const (
	ProviderLocal     = "local"
	ProviderGemini    = "gemini"
	ProviderGeminiSDK = "gemini-sdk"
)

// ProviderOptions selects and configures a ResponseProvider.
type ProviderOptions struct {
	Kind        string
	Credentials CredentialStore
	Endpoint    string
	Model       string
	LocalDelay  time.Duration
	HTTPClient  *http.Client
}

// NewProvider builds the strategy named by opts.Kind.
func NewProvider(opts ProviderOptions) (ResponseProvider, error) {
	switch opts.Kind {
	case "", ProviderLocal:
		return NewLocalAdvisor(opts.LocalDelay), nil
	case ProviderGemini:
		if opts.Credentials == nil {
			return nil, fmt.Errorf("provider %q needs a credential store", opts.Kind)
		}
		return NewGeminiProvider(opts.Endpoint, opts.Credentials, opts.HTTPClient), nil
	case ProviderGeminiSDK:
		if opts.Credentials == nil {
			return nil, fmt.Errorf("provider %q needs a credential store", opts.Kind)
		}
		return NewGeminiSDKProvider(opts.Model, opts.Credentials), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Kind)
	}
}
