// Package dashboard implements the users-table editing surface: it loads the
// directory and the current principal, renders rows, and issues field patches
// for admins.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/staffdesk/staff-console/internal/domain"
)

var (
	// ErrUnauthenticated means no valid session exists. Callers must treat
	// it as "no principal", not as a fatal error.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrDirectoryUnavailable means the listing could not be fetched.
	ErrDirectoryUnavailable = errors.New("directory unavailable")
	// ErrUpdateFailed means a field patch was not applied.
	ErrUpdateFailed = errors.New("update failed")
)

// Field names a user-editable column of the table. Pending state is keyed by
// (user id, field), so edits to different pairs stay independent.
type Field string

const (
	FieldRole       Field = "role"
	FieldDepartment Field = "department"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

func (c *Client) CurrentUser(ctx context.Context) (*domain.Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnauthenticated, resp.StatusCode)
	}

	principal := &domain.Principal{}
	if err := json.NewDecoder(resp.Body).Decode(principal); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	return principal, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrDirectoryUnavailable, resp.StatusCode)
	}

	var users []domain.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	return users, nil
}

// UpdateUserField patches a single field of a single user. Only the named
// field travels in the body; everything else stays untouched server-side.
func (c *Client) UpdateUserField(ctx context.Context, userID int64, field Field, value string) error {
	body, err := json.Marshal(map[string]string{string(field): value})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/users/%d", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUpdateFailed, resp.StatusCode)
	}

	return nil
}
