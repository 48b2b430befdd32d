package hh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hhapply/internal/config"
)

// Client provides access to the hh.ru API.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates an hh.ru client.
func New(baseURL, token, userAgent string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("hh base url required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("hh token required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	// Negotiation results arrive as redirect statuses with a Location
	// header. Following them would lose both.
	if client.httpClient.CheckRedirect == nil {
		copied := *client.httpClient
		copied.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		client.httpClient = &copied
	}
	return client, nil
}

// FromConfig builds a client from the [hh] configuration section.
func FromConfig(cfg *config.Config) (*Client, error) {
	return New(
		cfg.HH.BaseURL,
		cfg.HH.Token,
		cfg.HH.UserAgent,
		WithTimeout(time.Duration(cfg.HH.RequestTimeout)*time.Second),
	)
}

// SimilarVacancies fetches one page of vacancies similar to the resume.
func (c *Client) SimilarVacancies(ctx context.Context, resumeID string, params url.Values) (*VacancyPage, error) {
	resumeID = strings.TrimSpace(resumeID)
	if resumeID == "" {
		return nil, errors.New("resume id required")
	}
	var page VacancyPage
	if err := c.get(ctx, "/resumes/"+resumeID+"/similar_vacancies", params, &page); err != nil {
		return nil, fmt.Errorf("fetch similar vacancies: %w", err)
	}
	return &page, nil
}

// SearchVacancies fetches one page of the /vacancies search.
func (c *Client) SearchVacancies(ctx context.Context, params url.Values) (*VacancyPage, error) {
	var page VacancyPage
	if err := c.get(ctx, "/vacancies", params, &page); err != nil {
		return nil, fmt.Errorf("search vacancies: %w", err)
	}
	return &page, nil
}

// Apply creates a negotiation for the vacancy and returns its URL from the
// Location header. Failures map to ErrLimitExceeded, ErrTestRequired,
// *ExternalApplyError, or *APIError.
func (c *Client) Apply(ctx context.Context, request ApplyRequest) (string, error) {
	if strings.TrimSpace(request.VacancyID) == "" {
		return "", errors.New("vacancy id required")
	}
	if strings.TrimSpace(request.ResumeID) == "" {
		return "", errors.New("resume id required")
	}
	form := url.Values{}
	form.Set("vacancy_id", request.VacancyID)
	form.Set("resume_id", request.ResumeID)
	form.Set("message", request.Message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/negotiations", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build apply request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", fmt.Errorf("execute apply request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		return resp.Header.Get("Location"), nil
	case http.StatusSeeOther:
		return "", &ExternalApplyError{URL: resp.Header.Get("Location")}
	default:
		return "", decodeError(resp)
	}
}

// Negotiations fetches one page of the applicant's negotiations, newest
// first.
func (c *Client) Negotiations(ctx context.Context, page int) (*NegotiationPage, error) {
	params := url.Values{}
	params.Set("order_by", "created_at")
	params.Set("order", "desc")
	params.Set("page", fmt.Sprintf("%d", page))

	var result NegotiationPage
	if err := c.get(ctx, "/negotiations", params, &result); err != nil {
		return nil, fmt.Errorf("fetch negotiations page %d: %w", page, err)
	}
	return &result, nil
}

// Negotiation fetches a single negotiation by id.
func (c *Client) Negotiation(ctx context.Context, id string) (*Negotiation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("negotiation id required")
	}
	var result Negotiation
	if err := c.get(ctx, "/negotiations/"+id, nil, &result); err != nil {
		return nil, fmt.Errorf("fetch negotiation %s: %w", id, err)
	}
	return &result, nil
}

// DeleteNegotiation withdraws an active negotiation. hh.ru answers 204 on
// success.
func (c *Client) DeleteNegotiation(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("negotiation id required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/negotiations/active/"+id, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete negotiation %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete negotiation %s: %w", id, decodeError(resp))
	}
	return nil
}

// NegotiationMessages fetches every message in a negotiation, oldest first.
func (c *Client) NegotiationMessages(ctx context.Context, id string) ([]Message, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("negotiation id required")
	}
	var page messagePage
	if err := c.get(ctx, "/negotiations/"+id+"/messages", nil, &page); err != nil {
		return nil, fmt.Errorf("fetch negotiation %s messages: %w", id, err)
	}
	return page.Items, nil
}

// Me returns the authenticated applicant. Used as a credential check.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/me", nil, &user); err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	return &user, nil
}

// NegotiationIDFromURL extracts the negotiation id from a stored negotiation
// URL. Both absolute Location headers and relative "/negotiations/{id}"
// references resolve.
func NegotiationIDFromURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("negotiation url is empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse negotiation url %q: %w", raw, err)
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i := len(segments) - 1; i > 0; i-- {
		if segments[i-1] == "negotiations" || segments[i-1] == "active" {
			if segments[i] != "" {
				return segments[i], nil
			}
		}
	}
	return "", fmt.Errorf("no negotiation id in %q", raw)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("HH-User-Agent", c.userAgent)
	}
}
