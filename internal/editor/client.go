package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/bidboard/bidboard-backend/pkg/errors"
	"github.com/bidboard/bidboard-backend/pkg/types"
)

const (
	defaultClientTimeout       = 15 * time.Second
	errorBodyReadLimit   int64 = 4096
)

// Client is the HTTP implementation of BidAPI against the bid API's
// versioned routes.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ClientOption configures optional client behavior.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a BidAPI client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base url is required")
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultClientTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

var _ BidAPI = (*Client)(nil)

// GetBid fetches the authoritative bid snapshot with nested doors and
// line items.
func (c *Client) GetBid(ctx context.Context, bidID uuid.UUID) (*Bid, error) {
	var bid Bid
	path := fmt.Sprintf("/api/v1/bids/%s", bidID)
	if err := c.do(ctx, http.MethodGet, path, nil, &bid); err != nil {
		return nil, err
	}
	return &bid, nil
}

// CreateDoor adds a door to the bid, optionally seeded.
func (c *Client) CreateDoor(ctx context.Context, bidID uuid.UUID, seed *DoorSeed) (*Door, error) {
	var door Door
	path := fmt.Sprintf("/api/v1/bids/%s/doors", bidID)
	if err := c.do(ctx, http.MethodPost, path, seed, &door); err != nil {
		return nil, err
	}
	return &door, nil
}

// DuplicateDoor fans the source door out to the target numbers.
func (c *Client) DuplicateDoor(ctx context.Context, doorID uuid.UUID, targetNumbers []int) (*DuplicateResult, error) {
	body := struct {
		TargetNumbers []int `json:"target_numbers"`
	}{TargetNumbers: targetNumbers}

	var result DuplicateResult
	path := fmt.Sprintf("/api/v1/doors/%s/duplicate", doorID)
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteDoor removes a door and, by cascade, its line items.
func (c *Client) DeleteDoor(ctx context.Context, doorID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/doors/%s", doorID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CreateLineItem appends a row to the door.
func (c *Client) CreateLineItem(ctx context.Context, doorID uuid.UUID, fields Fields) (*LineItem, error) {
	var item LineItem
	path := fmt.Sprintf("/api/v1/doors/%s/line-items", doorID)
	if err := c.do(ctx, http.MethodPost, path, fields, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateLineItem overwrites a row's tracked fields.
func (c *Client) UpdateLineItem(ctx context.Context, doorID, itemID uuid.UUID, fields Fields) (*LineItem, error) {
	var item LineItem
	path := fmt.Sprintf("/api/v1/doors/%s/line-items/%s", doorID, itemID)
	if err := c.do(ctx, http.MethodPut, path, fields, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteLineItem removes one row.
func (c *Client) DeleteLineItem(ctx context.Context, doorID, itemID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/doors/%s/line-items/%s", doorID, itemID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// SaveChanges issues the explicit bulk save.
func (c *Client) SaveChanges(ctx context.Context, bidID uuid.UUID, req SaveChangesRequest) error {
	path := fmt.Sprintf("/api/v1/bids/%s/save-changes", bidID)
	return c.do(ctx, http.MethodPut, path, req, nil)
}

// AutoSave issues the best-effort background save.
func (c *Client) AutoSave(ctx context.Context, bidID uuid.UUID, req AutoSaveRequest) error {
	path := fmt.Sprintf("/api/v1/bids/%s/auto-save", bidID)
	return c.do(ctx, http.MethodPut, path, req, nil)
}

// do executes one request and decodes the success envelope into out.
// API error envelopes map back onto coded errors so callers can branch
// on not-found versus validation versus transport.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		return pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
	}

	code := pkgerrors.CodeDependency
	switch resp.StatusCode {
	case http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case http.StatusBadRequest:
		code = pkgerrors.CodeValidation
	case http.StatusConflict:
		code = pkgerrors.CodeConflict
	}
	return pkgerrors.New(code, fmt.Sprintf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
}
