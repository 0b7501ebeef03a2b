// Package telegram is a minimal Bot API client: long polling in, rendered
// messages out. It is presentation glue around the control-plane machine and
// holds no authorization logic of its own.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const apiBaseURL = "https://api.telegram.org"

// Client представляет HTTP клиент Bot API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Bot API client for the given bot token
func NewClient(token string) *Client {
	return &Client{
		baseURL: fmt.Sprintf("%s/bot%s", apiBaseURL, token),
		httpClient: &http.Client{
			// Долгий таймаут из-за long polling в getUpdates
			Timeout: 60 * time.Second,
		},
	}
}

// apiResponse является общим конвертом ответа Bot API
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// User represents a Telegram user or bot
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Chat represents a chat
type Chat struct {
	ID int64 `json:"id"`
}

// Message represents an incoming or sent message
type Message struct {
	MessageID int     `json:"message_id"`
	Text      *string `json:"text,omitempty"`
	Chat      Chat    `json:"chat"`
	From      *User   `json:"from,omitempty"`
}

// CallbackQuery represents a button press
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data"`
}

// InlineQuery represents an inline search query
type InlineQuery struct {
	ID       string `json:"id"`
	From     User   `json:"from"`
	Query    string `json:"query"`
	ChatType string `json:"chat_type"`
}

// Update represents one inbound event
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
	InlineQuery   *InlineQuery   `json:"inline_query,omitempty"`
}

// GetMe returns the bot's own account
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, "getMe", nil, &user); err != nil {
		return nil, fmt.Errorf("getMe failed: %w", err)
	}
	return &user, nil
}

// GetUpdates long-polls for inbound events
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	payload := map[string]any{
		"offset":  offset,
		"timeout": int(timeout.Seconds()),
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, fmt.Errorf("getUpdates failed: %w", err)
	}
	return updates, nil
}

// call выполняет запрос к Bot API
func (c *Client) call(ctx context.Context, method string, payload, result any) error {
	url := c.baseURL + "/" + method

	var bodyReader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !envelope.OK {
		return fmt.Errorf("telegram api error: %s", envelope.Description)
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal result: %w", err)
		}
	}

	return nil
}
