package models

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type CredentialRequest struct {
	APIKey string `json:"api_key"`
}

type CredentialStatus struct {
	Configured bool `json:"configured"`
}
