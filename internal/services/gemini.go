package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"fi-advisor-backend/internal/models"
)

// Sampling parameters sent with every generation request.
const (
	geminiTemperature     = 0.7
	geminiTopK            = 40
	geminiTopP            = 0.95
	geminiMaxOutputTokens = 1024
)

// GeminiProvider calls the generateContent REST endpoint directly. The API key
// is read from the credential store on every call and sent as the "key"
// query parameter. One request per call: no retries, no streaming.
type GeminiProvider struct {
	endpoint    string
	credentials CredentialStore
	client      *http.Client
	profile     models.FinancialProfile
}

func NewGeminiProvider(endpoint string, credentials CredentialStore, client *http.Client) *GeminiProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &GeminiProvider{
		endpoint:    endpoint,
		credentials: credentials,
		client:      client,
		profile:     DefaultProfile(),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// Pointers let extraction tell "absent" from "empty".
type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type geminiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *GeminiProvider) Generate(ctx context.Context, question string) (string, error) {
	apiKey, err := p.credentials.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("loading api key: %w", err)
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", ErrMissingCredential
	}

	reqURL, err := url.Parse(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid gemini endpoint: %w", err)
	}
	q := reqURL.Query()
	q.Set("key", apiKey)
	reqURL.RawQuery = q.Encode()

	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: BuildAdvisorPrompt(p.profile, question)}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     geminiTemperature,
			TopK:            geminiTopK,
			TopP:            geminiTopP,
			MaxOutputTokens: geminiMaxOutputTokens,
		},
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		// url.Error includes the request URL, which carries the key.
		return "", &UpstreamError{Reason: "request failed", Err: redactKey(err, apiKey)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		reason := readErrorReason(resp.Body)
		log.Warn().Int("status", resp.StatusCode).Str("reason", reason).Msg("gemini returned error status")
		return "", &UpstreamError{StatusCode: resp.StatusCode, Reason: reason}
	}

	var genResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Reason: "undecodable response", Err: err}
	}

	text, ok := genResp.firstText()
	if !ok {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Reason: "response contained no text"}
	}
	return text, nil
}

// firstText returns the first candidate's first part, if present and non-blank.
func (r geminiResponse) firstText() (string, bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	content := r.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0].Text == nil {
		return "", false
	}
	text := *content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

func readErrorReason(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var parsed geminiErrorBody
	if json.Unmarshal(data, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(data))
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redactKey(err error, apiKey string) error {
	msg := err.Error()
	if !strings.Contains(msg, apiKey) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(msg, apiKey, "REDACTED"), err: err}
}
