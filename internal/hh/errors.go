package hh

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Sentinel errors mapped from hh.ru negotiation failures.
var (
	// ErrLimitExceeded reports that the daily negotiation quota is spent.
	ErrLimitExceeded = errors.New("negotiation limit exceeded")
	// ErrTestRequired reports that the vacancy demands an employer test
	// before an application can be created.
	ErrTestRequired = errors.New("employer test required")
)

// ExternalApplyError reports a vacancy that only accepts applications on an
// external site. URL is the application form the 303 response pointed at.
type ExternalApplyError struct {
	URL string
}

func (e *ExternalApplyError) Error() string {
	return fmt.Sprintf("external apply required on %s", e.URL)
}

// APIError is a non-2xx hh.ru response that did not map to a sentinel.
type APIError struct {
	StatusCode  int
	Description string
	Body        string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("hh api returned %d: %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("hh api returned %d: %s", e.StatusCode, e.Body)
}

type apiErrorBody struct {
	Description string `json:"description"`
	Errors      []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"errors"`
}

// decodeError turns a failed response into the closest typed error.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	text := strings.TrimSpace(string(body))

	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, item := range parsed.Errors {
			switch item.Value {
			case "limit_exceeded":
				return fmt.Errorf("hh api returned %d: %w", resp.StatusCode, ErrLimitExceeded)
			case "test_required":
				return fmt.Errorf("hh api returned %d: %w", resp.StatusCode, ErrTestRequired)
			}
		}
		if parsed.Description != "" {
			return &APIError{StatusCode: resp.StatusCode, Description: parsed.Description, Body: text}
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Body: text}
}
