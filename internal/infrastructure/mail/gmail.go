package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"OpinionDigest/internal/domain"
	"OpinionDigest/internal/ports"
)

const (
	defaultAPIBase    = "https://gmail.googleapis.com/gmail/v1"
	defaultMaxResults = 10
)

// Client talks to the Gmail REST API through an OAuth2-authenticated
// HTTP client.
type Client struct {
	http       *http.Client
	apiBase    string
	maxResults int
	logger     *slog.Logger
}

var _ ports.MailSource = (*Client)(nil)

// NewClient wraps an authenticated HTTP client.
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:       httpClient,
		apiBase:    defaultAPIBase,
		maxResults: defaultMaxResults,
		logger:     logger,
	}
}

type messageRef struct {
	ID string `json:"id"`
}

type listResponse struct {
	Messages []messageRef `json:"messages"`
}

type messageResponse struct {
	ID           string          `json:"id"`
	InternalDate string          `json:"internalDate"`
	Payload      *messagePayload `json:"payload"`
}

// Search returns full messages from sender on the given calendar date.
// The after: bound is inclusive and before: exclusive, so the window is
// [day, day+1).
func (c *Client) Search(ctx context.Context, sender string, day time.Time) ([]domain.NotificationMessage, error) {
	query := fmt.Sprintf("from:%s after:%s before:%s",
		sender,
		day.Format("2006/01/02"),
		day.AddDate(0, 0, 1).Format("2006/01/02"))

	c.logger.Info("searching mailbox", "query", query)

	listURL := fmt.Sprintf("%s/users/me/messages?q=%s&maxResults=%d",
		c.apiBase, url.QueryEscape(query), c.maxResults)

	var list listResponse
	if err := c.get(ctx, listURL, &list); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	if len(list.Messages) == 0 {
		c.logger.Info("no messages found", "sender", sender, "day", day.Format("2006-01-02"))
		return nil, nil
	}

	messages := make([]domain.NotificationMessage, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msgURL := fmt.Sprintf("%s/users/me/messages/%s?format=full", c.apiBase, ref.ID)

		var msg messageResponse
		if err := c.get(ctx, msgURL, &msg); err != nil {
			return nil, fmt.Errorf("fetch message %s: %w", ref.ID, err)
		}

		messages = append(messages, domain.NotificationMessage{
			ID:       msg.ID,
			Sender:   msg.Payload.header("From"),
			Subject:  msg.Payload.header("Subject"),
			Received: parseInternalDate(msg.InternalDate),
			Body:     extractBody(msg.Payload),
		})
	}

	c.logger.Info("fetched messages", "sender", sender, "count", len(messages))
	return messages, nil
}

// send posts a raw RFC 2822 message through the API.
func (c *Client) send(ctx context.Context, rawMessage []byte) error {
	body, err := json.Marshal(map[string]string{
		"raw": base64.RawURLEncoding.EncodeToString(rawMessage),
	})
	if err != nil {
		return fmt.Errorf("marshal send payload: %w", err)
	}

	sendURL := c.apiBase + "/users/me/messages/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendURL, strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("gmail send error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	return nil
}

func (c *Client) get(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("gmail error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func parseInternalDate(millis string) time.Time {
	n, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(n).UTC()
}
