package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items      []T
	Page       int
	TotalPages int
}

// HasMore reports whether a later page exists.
func (p Page[T]) HasMore() bool {
	return p.Page < p.TotalPages
}

type pagination struct {
	CurrentPage flexInt `json:"currentPage"`
	TotalPages  flexInt `json:"totalPages"`
}

type envelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination *pagination     `json:"pagination"`
}

// decodePage accepts a bare array or {data, pagination}. Anything else,
// including undecodable elements, is an empty first page.
func decodePage[W any, T any](body []byte, convert func(W) T) Page[T] {
	empty := Page[T]{Page: 1, TotalPages: 1}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return empty
	}

	raw := trimmed
	page := empty
	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return empty
		}
		raw = bytes.TrimSpace(env.Data)
		if env.Pagination != nil {
			if env.Pagination.CurrentPage > 0 {
				page.Page = int(env.Pagination.CurrentPage)
			}
			if env.Pagination.TotalPages > 0 {
				page.TotalPages = int(env.Pagination.TotalPages)
			}
		}
	}
	if len(raw) == 0 || raw[0] != '[' {
		return empty
	}

	var wire []W
	if err := json.Unmarshal(raw, &wire); err != nil {
		return empty
	}
	page.Items = make([]T, 0, len(wire))
	for _, w := range wire {
		page.Items = append(page.Items, convert(w))
	}
	return page
}

func decodeOne[W any, T any](method, path string, body []byte, convert func(W) T) (T, error) {
	var zero T
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return zero, &Error{Kind: KindNotFound, Method: method, Path: path, Status: http.StatusOK, Message: "empty response"}
	}
	// Some endpoints wrap single entities in {data: {...}}.
	if trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err == nil {
			if d := bytes.TrimSpace(env.Data); len(d) > 0 && d[0] == '{' {
				trimmed = d
			}
		}
	}
	var wire W
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return zero, &Error{Kind: KindDecode, Method: method, Path: path, Err: fmt.Errorf("%s: %w", path, err)}
	}
	return convert(wire), nil
}

func getPage[W any, T any](ctx context.Context, c *Client, path string, query url.Values, convert func(W) T) (Page[T], error) {
	body, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return Page[T]{}, err
	}
	return decodePage(body, convert), nil
}

func getOne[W any, T any](ctx context.Context, c *Client, path string, convert func(W) T) (T, error) {
	body, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path})
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeOne(http.MethodGet, path, body, convert)
}

// send issues a write and discards the response body.
func send(ctx context.Context, c *Client, req Request) error {
	_, err := c.Do(ctx, req)
	return err
}
