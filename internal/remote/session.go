package remote

import (
	"context"
	"encoding/json"
	"fmt"
)

// Login exchanges phone and password for a session and starts using its
// access token.
func (c *Client) Login(ctx context.Context, phone, password string) (*Session, error) {
	body, err := json.Marshal(map[string]any{
		"user": map[string]string{"phone": phone, "password": password},
	})
	if err != nil {
		return nil, fmt.Errorf("login: encode request: %w", err)
	}
	var resp struct {
		Data Session `json:"data"`
	}
	if err := c.post(ctx, "login", "/v1/session", body, false, &resp); err != nil {
		return nil, err
	}
	if resp.Data.AccessToken == "" {
		return nil, &Error{Op: "login", Messages: []string{"no access token in response"}}
	}
	c.SetToken(resp.Data.AccessToken)
	return &resp.Data, nil
}

// OrganizationName looks up the display name of the organization served at
// the client's base URL. The route is public.
func (c *Client) OrganizationName(ctx context.Context) (*OrganizationInfo, error) {
	var resp struct {
		Data OrganizationInfo `json:"data"`
	}
	if err := c.post(ctx, "organizationName", "/v1/session/name", []byte("{}"), false, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
