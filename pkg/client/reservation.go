package client

import (
	"fmt"
	"net/url"
)

// ReservationClient is the caller-side wrapper for the reservation service
// API, used by integration tests and sibling services.
type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(baseURL string) *ReservationClient {
	return &ReservationClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *ReservationClient) RequestBooking(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations", body)
}

func (c *ReservationClient) Confirm(id, actorID string) (*Response, error) {
	path := "/api/v1/reservations/id/" + url.PathEscape(id) + "/confirm"
	return c.httpClient.POSTWithHeaders(path, struct{}{}, map[string]string{"X-Actor-ID": actorID})
}

func (c *ReservationClient) Cancel(id, actorID string) (*Response, error) {
	path := "/api/v1/reservations/id/" + url.PathEscape(id) + "/cancel"
	return c.httpClient.POSTWithHeaders(path, struct{}{}, map[string]string{"X-Actor-ID": actorID})
}

func (c *ReservationClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/id/" + url.PathEscape(id))
}

func (c *ReservationClient) ListForOwner(ownerID string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("owner_id", ownerID)
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GET("/api/v1/reservations?" + q.Encode())
}

func (c *ReservationClient) ListForResource(resourceID, from, to string) (*Response, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	path := "/api/v1/reservations/resource/" + url.PathEscape(resourceID)
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	return c.httpClient.GET(path)
}

func (c *ReservationClient) Availability(resourceID, date string) (*Response, error) {
	q := url.Values{}
	q.Set("date", date)
	return c.httpClient.GET("/api/v1/resources/" + url.PathEscape(resourceID) + "/availability?" + q.Encode())
}
