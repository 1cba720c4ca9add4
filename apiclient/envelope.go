package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

// Envelope is the backend's standard response wrapper
type Envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page is a paginated list response
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// GetData performs a GET and returns the envelope's data
func GetData[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	return doData[T](ctx, c, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// GetPage performs a GET of a paginated collection
func GetPage[T any](ctx context.Context, c *Client, path string, query url.Values) (Page[T], error) {
	var page Page[T]
	resp, err := c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return page, err
	}
	err = resp.Decode(&page)
	return page, err
}

func PostData[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return doData[T](ctx, c, &Request{Method: http.MethodPost, Path: path, Body: body})
}

func PutData[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return doData[T](ctx, c, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE and ignores the response body
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
	return err
}

func doData[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	var env Envelope[T]
	resp, err := c.Do(ctx, req)
	if err != nil {
		return env.Data, err
	}
	if len(resp.Body) == 0 {
		return env.Data, nil
	}
	err = resp.Decode(&env)
	return env.Data, err
}
