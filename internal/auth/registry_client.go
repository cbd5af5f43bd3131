// Package auth admits or rejects requests based on their project id,
// caching registry answers in a process-local map and in Redis.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
)

// RegistryClient fetches project records from the external registry.
type RegistryClient interface {
	FetchProject(ctx context.Context, projectID string) (*entities.ProjectData, error)
}

// HTTPRegistryClient talks to the registry's REST API with a bearer token.
type HTTPRegistryClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPRegistryClient builds the client.
func NewHTTPRegistryClient(baseURL, token string, timeout time.Duration) *HTTPRegistryClient {
	return &HTTPRegistryClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchProject returns the project record, ErrProjectNotFound /
// ErrInvalidInput for definitive registry rejections, or
// ErrRegistryUnavailable for transport-level failures (which must not be
// cached).
func (c *HTTPRegistryClient) FetchProject(ctx context.Context, projectID string) (*entities.ProjectData, error) {
	url := fmt.Sprintf("%s/internal/project/%s", c.baseURL, projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domainerrors.ErrRegistryUnavailable, err)
		}
		var data entities.ProjectData
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("%w: bad registry payload: %v", domainerrors.ErrRegistryUnavailable, err)
		}
		return &data, nil
	case http.StatusNotFound:
		return nil, domainerrors.ErrProjectNotFound
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return nil, domainerrors.ErrInvalidInput
	default:
		return nil, fmt.Errorf("%w: registry status %d", domainerrors.ErrRegistryUnavailable, resp.StatusCode)
	}
}
