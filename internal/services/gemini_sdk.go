package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"fi-advisor-backend/internal/models"
)

// GeminiSDKProvider is the GeminiProvider contract on top of the official
// client library. A client is built per call because the key may be replaced
// between calls.
type GeminiSDKProvider struct {
	model       string
	credentials CredentialStore
	profile     models.FinancialProfile
	opts        []option.ClientOption
}

func NewGeminiSDKProvider(model string, credentials CredentialStore, opts ...option.ClientOption) *GeminiSDKProvider {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiSDKProvider{
		model:       model,
		credentials: credentials,
		profile:     DefaultProfile(),
		opts:        opts,
	}
}

func (p *GeminiSDKProvider) Generate(ctx context.Context, question string) (string, error) {
	apiKey, err := p.credentials.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("loading api key: %w", err)
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", ErrMissingCredential
	}

	opts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, p.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", &UpstreamError{Reason: "failed to create Gemini client", Err: err}
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)
	model.SetTemperature(geminiTemperature)
	model.SetTopK(geminiTopK)
	model.SetTopP(geminiTopP)
	model.SetMaxOutputTokens(geminiMaxOutputTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(BuildAdvisorPrompt(p.profile, question)))
	if err != nil {
		upstream := &UpstreamError{Err: err}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			upstream.StatusCode = apiErr.Code
			upstream.Reason = apiErr.Message
			upstream.Err = nil
		}
		return "", upstream
	}

	text, ok := firstSDKText(resp)
	if !ok {
		return "", &UpstreamError{Reason: "response contained no text"}
	}
	return text, nil
}

func firstSDKText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", false
	}
	t, ok := cand.Content.Parts[0].(genai.Text)
	if !ok || strings.TrimSpace(string(t)) == "" {
		return "", false
	}
	return string(t), true
}
