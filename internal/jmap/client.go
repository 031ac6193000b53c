package jmap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"maskctl/internal/config"
	"maskctl/internal/services"
)

const maxErrorBody = 512

// HTTPDoer describes the HTTP client used to reach the JMAP server.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one JMAP server with a bearer token.
type Client struct {
	sessionURL string
	token      string
	http       HTTPDoer

	mu      sync.Mutex
	session *SessionResource
}

// NewClient constructs a client. A nil doer uses http.DefaultClient.
func NewClient(sessionURL, token string, doer HTTPDoer) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{
		sessionURL: strings.TrimSpace(sessionURL),
		token:      strings.TrimSpace(token),
		http:       doer,
	}
}

// NewFromConfig builds a client from the [fastmail] section.
func NewFromConfig(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.Fastmail.RequestTimeout) * time.Second
	return NewClient(cfg.Fastmail.SessionURL, cfg.Fastmail.APIToken, &http.Client{Timeout: timeout})
}

// Session fetches the session resource on first use and caches it.
func (c *Client) Session(ctx context.Context) (*SessionResource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sessionURL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteCall, "jmap", "session", "build request", err)
	}
	var session SessionResource
	if err := c.do(req, &session); err != nil {
		return nil, services.Wrap(services.ErrRemoteCall, "jmap", "session", "fetch session", err)
	}
	if strings.TrimSpace(session.APIURL) == "" {
		return nil, services.Wrap(services.ErrRemoteCall, "jmap", "session", "session has no apiUrl", nil)
	}
	c.session = &session
	return c.session, nil
}

// PrimaryAccount returns the primary account id for capability.
func (c *Client) PrimaryAccount(ctx context.Context, capability string) (string, error) {
	session, err := c.Session(ctx)
	if err != nil {
		return "", err
	}
	id := session.PrimaryAccounts[capability]
	if id == "" {
		return "", services.Wrap(services.ErrRemoteCall, "jmap", "session",
			fmt.Sprintf("no primary account for %s; check the token has masked email scope", capability), nil)
	}
	return id, nil
}

// Call posts request to the session's apiUrl.
func (c *Client) Call(ctx context.Context, request Request) (*Response, error) {
	session, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(request)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteCall, "jmap", "call", "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, session.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteCall, "jmap", "call", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var response Response
	if err := c.do(req, &response); err != nil {
		return nil, services.Wrap(services.ErrRemoteCall, "jmap", "call", methodNames(request), err)
	}
	return &response, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if msg := strings.TrimSpace(string(snippet)); msg != "" {
			return fmt.Errorf("http %d: %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func methodNames(request Request) string {
	names := make([]string, 0, len(request.MethodCalls))
	for _, inv := range request.MethodCalls {
		names = append(names, inv.Name)
	}
	return strings.Join(names, ",")
}
