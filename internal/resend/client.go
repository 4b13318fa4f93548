// Package resend is a minimal client for the Resend transactional email
// API. It issues exactly one POST per send, with no retry or queueing;
// failed sends are surfaced to the caller as-is.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.resend.com"

// Client is an HTTP client for the Resend API. The API key is fixed at
// construction time; the client is stateless across calls.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Resend client using the production endpoint.
func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL)
}

// NewClientWithBaseURL creates a Resend client against a custom endpoint.
// Used by tests and by the base_url config override.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendEmailParams holds the outbound message. From, To, Subject, and HTML
// are required; everything else is optional and omitted from the wire
// payload when empty.
type SendEmailParams struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	Text        string
	CC          []string
	BCC         []string
	ReplyTo     []string
	Attachments []Attachment
}

// SendEmailResponse is the success payload returned by Resend.
type SendEmailResponse struct {
	ID string `json:"id"`
}

// sendEmailRequest is the wire format of POST /emails. Optional fields
// carry omitempty so that absent values are left out of the JSON object
// entirely rather than sent as null or empty arrays.
type sendEmailRequest struct {
	From        string              `json:"from"`
	To          []string            `json:"to"`
	Subject     string              `json:"subject"`
	HTML        string              `json:"html"`
	Text        string              `json:"text,omitempty"`
	CC          []string            `json:"cc,omitempty"`
	BCC         []string            `json:"bcc,omitempty"`
	ReplyTo     []string            `json:"reply_to,omitempty"`
	Attachments []attachmentPayload `json:"attachments,omitempty"`
}

type attachmentPayload struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
}

// errorResponse is the error payload Resend returns on non-2xx statuses.
type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Name       string `json:"name"`
}

// SendEmail issues a single send request. On success it returns the
// provider's message ID verbatim. Non-2xx responses become *APIError when
// the body carries a parseable Resend error, *HTTPError otherwise.
func (c *Client) SendEmail(ctx context.Context, params SendEmailParams) (*SendEmailResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	payload := sendEmailRequest{
		From:    params.From,
		To:      params.To,
		Subject: params.Subject,
		HTML:    params.HTML,
		Text:    params.Text,
		CC:      emptyToNil(params.CC),
		BCC:     emptyToNil(params.BCC),
		ReplyTo: emptyToNil(params.ReplyTo),
	}
	for _, att := range params.Attachments {
		payload.Attachments = append(payload.Attachments, attachmentPayload{
			Filename:    att.Filename,
			Content:     att.Content,
			ContentType: att.ContentType,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling send request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		var result SendEmailResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return &result, nil
	}

	var apiErr errorResponse
	if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    apiErr.Message,
		}
	}

	return nil, &HTTPError{StatusCode: resp.StatusCode}
}

// emptyToNil normalizes an empty slice to nil so omitempty drops the
// field from the payload.
func emptyToNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
