// Package remote implements identity.Service against the hosted
// authentication service's admin HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"teamwerk.io/internal/identity"
)

const defaultTimeout = 10 * time.Second

// Client talks to the authentication service with a service-role key.
type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

var _ identity.Service = (*Client)(nil)

// New constructs a Client. baseURL is the admin API root, serviceKey the
// privileged service-role credential.
func New(baseURL, serviceKey string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("identity service base URL is required")
	}
	if strings.TrimSpace(serviceKey) == "" {
		return nil, errors.New("identity service key is required")
	}
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: defaultTimeout},
	}, nil
}

type accountPayload struct {
	Email        string            `json:"email"`
	Password     string            `json:"password,omitempty"`
	EmailConfirm bool              `json:"email_confirm"`
	Metadata     map[string]string `json:"user_metadata,omitempty"`
}

type accountResponse struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	EmailConfirm bool              `json:"email_confirmed"`
	Metadata     map[string]string `json:"user_metadata,omitempty"`
}

// Invite creates an unconfirmed account carrying tenant metadata and lets
// the authentication service send the invitation email.
func (c *Client) Invite(ctx context.Context, p identity.InviteParams) (identity.Account, error) {
	body := accountPayload{
		Email: p.Email,
		Metadata: map[string]string{
			identity.MetaTenantID: p.TenantID,
			"full_name":           p.FullName,
			"role":                p.Role,
		},
	}
	var resp accountResponse
	if err := c.do(ctx, http.MethodPost, "/admin/users/invite", body, &resp); err != nil {
		return identity.Account{}, err
	}
	return fromResponse(resp), nil
}

// CreateAccount creates a pre-confirmed account; no invitation email is sent.
func (c *Client) CreateAccount(ctx context.Context, p identity.CreateParams) (identity.Account, error) {
	meta := map[string]string{
		identity.MetaTenantID: p.TenantID,
		"full_name":           p.FullName,
		"role":                p.Role,
	}
	if p.TestUser {
		meta[identity.MetaTestUser] = "true"
	}
	body := accountPayload{
		Email:        p.Email,
		Password:     p.Password,
		EmailConfirm: true,
		Metadata:     meta,
	}
	var resp accountResponse
	if err := c.do(ctx, http.MethodPost, "/admin/users", body, &resp); err != nil {
		return identity.Account{}, err
	}
	return fromResponse(resp), nil
}

// Delete removes an account. Used only as a compensating action.
func (c *Client) Delete(ctx context.Context, accountID string) error {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return fmt.Errorf("%w: account id is required", identity.ErrUpstream)
	}
	return c.do(ctx, http.MethodDelete, "/admin/users/"+accountID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", identity.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", identity.ErrUpstream, err)
		}
		return nil
	case resp.StatusCode == http.StatusConflict ||
		resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", identity.ErrConflict, readMessage(resp.Body))
	case resp.StatusCode == http.StatusNotFound:
		return identity.ErrNotFound
	default:
		return fmt.Errorf("%w: status %d: %s", identity.ErrUpstream, resp.StatusCode, readMessage(resp.Body))
	}
}

func readMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(data))
}

func fromResponse(r accountResponse) identity.Account {
	return identity.Account{
		ID:        r.ID,
		Email:     r.Email,
		Confirmed: r.EmailConfirm,
		Metadata:  r.Metadata,
	}
}
