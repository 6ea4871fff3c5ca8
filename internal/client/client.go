// Package client is the consuming side of the replacement workflow: it
// submits transitions, re-fetches the authoritative aggregate after every
// mutation, and derives per-role action sets from the result. It never
// mutates order state locally; the server is the single source of truth.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"replacement-request-service/internal/dto"
	"replacement-request-service/internal/model"
)

const defaultTimeout = 10 * time.Second

// Client is a thin wrapper over the order service's REST interface.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// TransitionInput is one requested status change as entered in the edit
// form. Courier and tracking id ride along with the status.
type TransitionInput struct {
	Status     model.ReplacementStatus
	Note       string
	Courier    string
	TrackingID string
}

// RequestError is a failure reported by the server. Message is the
// server-provided text, shown to the acting user verbatim.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "request failed"
}

// FetchOrder retrieves the full order aggregate.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*model.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/orders/%s", c.baseURL, orderID), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: decodeError(resp)}
	}

	var order model.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

// SubmitTransition posts one status change. On success nothing is mutated
// locally; the caller is expected to reload the aggregate. Failures are not
// retried.
func (c *Client) SubmitTransition(ctx context.Context, orderID string, in TransitionInput) error {
	body, err := json.Marshal(dto.TransitionRequest{
		Status:     string(in.Status),
		Note:       in.Note,
		Courier:    in.Courier,
		TrackingID: in.TrackingID,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/orders/%s/replacement/transition", c.baseURL, orderID),
		bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit transition: %w", err)
	}
	defer resp.Body.Close()

	var result dto.TransitionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// An undecodable body still tells us the request did not succeed.
		return &RequestError{StatusCode: resp.StatusCode}
	}
	if !result.Success {
		return &RequestError{StatusCode: resp.StatusCode, Message: result.Message}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func decodeError(resp *http.Response) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
