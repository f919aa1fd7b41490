package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hausasoft/elearn-notify/pkg/event"
)

// platformDirectory resolves recipient lists from the platform's internal
// directory API. The API is trusted and unauthenticated inside the network
// perimeter; both endpoints return a JSON array of users.
type platformDirectory struct {
	baseURL string
	client  *http.Client
}

func newPlatformDirectory(baseURL string) *platformDirectory {
	return &platformDirectory{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *platformDirectory) Admins(ctx context.Context) ([]event.User, error) {
	return d.fetch(ctx, d.baseURL+"/internal/admins")
}

func (d *platformDirectory) EnrolledStudents(ctx context.Context, courseID string) ([]event.User, error) {
	return d.fetch(ctx, d.baseURL+"/internal/courses/"+url.PathEscape(courseID)+"/students")
}

func (d *platformDirectory) fetch(ctx context.Context, endpoint string) ([]event.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directory request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory returned status %d for %s", resp.StatusCode, endpoint)
	}

	var users []event.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode directory response: %w", err)
	}
	return users, nil
}

// emptyDirectory is used when no directory API is configured. Admin and
// enrollment fan-out compose to zero messages; direct-recipient events are
// unaffected.
type emptyDirectory struct{}

func (emptyDirectory) Admins(context.Context) ([]event.User, error) {
	return nil, nil
}

func (emptyDirectory) EnrolledStudents(context.Context, string) ([]event.User, error) {
	return nil, nil
}
