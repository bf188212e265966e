package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ResourceClient queries the resource directory service. The reservation
// core only needs to know whether a resource exists and is active; resource
// lifecycle is owned elsewhere.
type ResourceClient struct {
	httpClient *HttpClient
}

func NewResourceClient(baseURL string) *ResourceClient {
	return &ResourceClient{
		httpClient: NewHttpClient(baseURL),
	}
}

type resourceResponse struct {
	Data struct {
		ID       string `json:"id"`
		IsActive bool   `json:"is_active"`
	} `json:"data"`
}

// ExistsAndActive returns true only for a resource the directory knows and
// reports as active. A 404 is a definitive "no"; other failures are errors.
func (c *ResourceClient) ExistsAndActive(ctx context.Context, resourceID string) (bool, error) {
	path := "/api/v1/resources/id/" + url.PathEscape(resourceID)

	resp, err := c.httpClient.GETWithContext(ctx, path)
	if err != nil {
		return false, fmt.Errorf("resource directory request failed: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var body resourceResponse
		if err := resp.DecodeJSON(&body); err != nil {
			return false, fmt.Errorf("failed to decode resource response: %w", err)
		}
		return body.Data.IsActive, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("resource directory returned status %d", resp.StatusCode)
	}
}
