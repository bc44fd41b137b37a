package autosave

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

var (
	// ErrServerUnavailable indicates the autosave server is unreachable.
	ErrServerUnavailable = errors.New("autosave server unavailable")

	// ErrStaleVersion indicates the server already holds a newer snapshot.
	ErrStaleVersion = errors.New("stale page version")

	// ErrNoSavedState indicates the server has nothing stored for the page.
	ErrNoSavedState = errors.New("no saved state")
)

// Client posts page-state snapshots to the autosave server.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for the server at endpoint, e.g.
// "http://localhost:8788".
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

type saveRequest struct {
	PageID  string          `json:"pageId"`
	State   json.RawMessage `json:"state"`
	Version int64           `json:"version"`
}

type saveResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Errors map[string]string `json:"errors"`
}

type stateResponse struct {
	PageID  string          `json:"pageId"`
	State   json.RawMessage `json:"state"`
	Version int64           `json:"version"`
}

type projectStateResponse struct {
	PageStates []stateResponse `json:"pageStates"`
}

// PageState is one page's saved snapshot as returned by the server.
type PageState struct {
	PageID  string
	State   []byte
	Version int64
}

// Save sends one snapshot. Version conflicts surface as ErrStaleVersion so
// the caller can drop the superseded request instead of retrying it.
func (c *Client) Save(ctx context.Context, projectID, pageID string, state []byte, version int64) error {
	body, err := json.Marshal(saveRequest{PageID: pageID, State: state, Version: version})
	if err != nil {
		return fmt.Errorf("marshaling save request: %w", err)
	}

	url := fmt.Sprintf("%s/api/projects/%s/pages/%s/state", c.endpoint, projectID, pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out saveResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fmt.Errorf("decoding save response: %w", err)
		}
		if !out.Success {
			return errors.New("save not acknowledged")
		}
		return nil
	case http.StatusConflict:
		return fmt.Errorf("page %s at version %d: %w", pageID, version, ErrStaleVersion)
	default:
		var out errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.Errors["general"] != "" {
			return fmt.Errorf("save rejected: %s", out.Errors["general"])
		}
		return fmt.Errorf("save rejected: HTTP %d", resp.StatusCode)
	}
}

// Load fetches one page's saved snapshot. A page the server has never seen
// surfaces as ErrNoSavedState.
func (c *Client) Load(ctx context.Context, projectID, pageID string) (*PageState, error) {
	url := fmt.Sprintf("%s/api/projects/%s/pages/%s/state", c.endpoint, projectID, pageID)
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out stateResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decoding page state: %w", err)
		}
		return &PageState{PageID: out.PageID, State: out.State, Version: out.Version}, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("page %s: %w", pageID, ErrNoSavedState)
	default:
		return nil, fmt.Errorf("load rejected: HTTP %d", resp.StatusCode)
	}
}

// LoadProject fetches every saved page state of a project. A project the
// server has never seen yields an empty slice.
func (c *Client) LoadProject(ctx context.Context, projectID string) ([]PageState, error) {
	url := fmt.Sprintf("%s/api/projects/%s/state", c.endpoint, projectID)
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load rejected: HTTP %d", resp.StatusCode)
	}
	var out projectStateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding project state: %w", err)
	}
	states := make([]PageState, 0, len(out.PageStates))
	for _, ps := range out.PageStates {
		states = append(states, PageState{PageID: ps.PageID, State: ps.State, Version: ps.Version})
	}
	return states, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating load request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	return resp, nil
}
