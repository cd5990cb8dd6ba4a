package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"licence-plate-checker/internal/config"
)

// ValidatePath is the validator endpoint, relative to the base URL.
const ValidatePath = "/licence-plate/validate"

var ErrNotConfigured = errors.New("validator base URL is not configured")

// ValidationRequest is the body sent to the validator.
type ValidationRequest struct {
	LicencePlate string `json:"licencePlate"`
}

// ApiResponse is the validator reply. Success is a pointer so that a body
// without the flag can be told apart from success=false.
type ApiResponse struct {
	Success *bool   `json:"success"`
	Result  *string `json:"result,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// TransportError is returned when no structured ApiResponse was obtained.
// Message carries the "error" field of the body if the body had one.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("validator returned status %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("validator returned status %d", e.StatusCode)
	case e.Err != nil:
		return e.Err.Error()
	}
	return "validator transport error"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type ValidatorClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewValidatorClient(cfg *config.Config) *ValidatorClient {
	return &ValidatorClient{
		baseURL: strings.TrimRight(cfg.Validator.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Validator.Timeout,
		},
	}
}

// NewValidatorClientWithHTTP is used when the caller owns the http.Client.
func NewValidatorClientWithHTTP(baseURL string, httpClient *http.Client) *ValidatorClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ValidatorClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Validate posts the canonical plate to the validator. A non-nil response
// always has Success set; every other failure is a *TransportError.
// There are no retries.
func (c *ValidatorClient) Validate(ctx context.Context, plate string) (*ApiResponse, error) {
	if c.baseURL == "" {
		return nil, &TransportError{Err: ErrNotConfigured}
	}

	u, err := url.Parse(c.baseURL + ValidatePath)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("invalid validator URL: %w", err)}
	}

	payload, err := json.Marshal(ValidationRequest{LicencePlate: plate})
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Message:    nestedError(body),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var response ApiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if response.Success == nil {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Message:    response.Error,
			Err:        errors.New("response has no success flag"),
		}
	}

	return &response, nil
}

// nestedError pulls the "error" string out of a failure body, if any.
func nestedError(body []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return ""
	}
	var msg string
	if err := json.Unmarshal(payload.Error, &msg); err != nil {
		return ""
	}
	return msg
}
