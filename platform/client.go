package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Expected, non-fatal reconciliation outcomes. The caller reports them but
// never treats them as a reason to roll anything back.
var (
	ErrMissingPermission = errors.New("bot is missing the required permission")
	ErrRoleHierarchy     = errors.New("role is above the bot in the role hierarchy")
	ErrUnknownMember     = errors.New("member not found in guild")
)

// Platform error codes returned in the response body.
const (
	codeMissingAccess      = 50001
	codeMissingPermissions = 50013
	codeUnknownMember      = 10007
)

// Client talks to the chat platform's REST API. It implements the role
// reconciler and nickname synchronizer boundaries of the rating engine.
type Client struct {
	baseURL    string
	botToken   string
	httpClient *http.Client
}

func NewClient(baseURL, botToken string) *Client {
	return &Client{
		baseURL:  baseURL,
		botToken: botToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GrantRole adds a role to a guild member. Granting an already-held role is a
// no-op on the platform side, which keeps plan execution idempotent.
func (c *Client) GrantRole(ctx context.Context, guildID, userID, roleID int64) error {
	url := fmt.Sprintf("%s/guilds/%d/members/%d/roles/%d", c.baseURL, guildID, userID, roleID)
	return c.do(ctx, http.MethodPut, url, nil)
}

// RevokeRole removes a role from a guild member. Revoking a role the member
// does not hold is likewise a no-op.
func (c *Client) RevokeRole(ctx context.Context, guildID, userID, roleID int64) error {
	url := fmt.Sprintf("%s/guilds/%d/members/%d/roles/%d", c.baseURL, guildID, userID, roleID)
	return c.do(ctx, http.MethodDelete, url, nil)
}

// SetNickname updates a guild member's nickname.
func (c *Client) SetNickname(ctx context.Context, guildID, userID int64, name string) error {
	url := fmt.Sprintf("%s/guilds/%d/members/%d", c.baseURL, guildID, userID)
	body, err := json.Marshal(map[string]string{"nick": name})
	if err != nil {
		return fmt.Errorf("failed to marshal nickname payload: %w", err)
	}
	return c.do(ctx, http.MethodPatch, url, body)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return c.mapError(resp)
}

func (c *Client) mapError(resp *http.Response) error {
	var apiErr struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	// Тело может быть не-JSON (например, от прокси); тогда остаёмся со
	// статусом.
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)

	switch apiErr.Code {
	case codeMissingPermissions:
		return ErrMissingPermission
	case codeMissingAccess:
		return ErrRoleHierarchy
	case codeUnknownMember:
		return ErrUnknownMember
	}
	if resp.StatusCode == http.StatusForbidden {
		return ErrMissingPermission
	}
	if apiErr.Message != "" {
		return fmt.Errorf("platform API error: %s (status %d)", apiErr.Message, resp.StatusCode)
	}
	return fmt.Errorf("platform API error: status %d", resp.StatusCode)
}
