// Package client implements store.Store against a remote expense API, so the
// chat REPL can run on another machine than the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"spendsense/internal/core"
	"spendsense/internal/store"
)

const requestTimeout = 10 * time.Second

type Remote struct {
	baseURL string
	http    *http.Client
}

var _ store.Store = (*Remote)(nil)

func New(baseURL string) *Remote {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Remote{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type expensePayload struct {
	ID       int64   `json:"id,omitempty"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Note     string  `json:"note"`
}

type apiResponse struct {
	Success bool             `json:"success"`
	Error   string           `json:"error"`
	Data    []expensePayload `json:"data"`
	ID      int64            `json:"id"`
	Updated *int64           `json:"updated"`
	Deleted *int64           `json:"deleted"`
}

func (c *Remote) List(ctx context.Context) ([]core.Expense, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/expenses", nil)
	if err != nil {
		return nil, err
	}

	out := make([]core.Expense, 0, len(resp.Data))
	for _, p := range resp.Data {
		e, err := fromPayload(p)
		if err != nil {
			return nil, &store.TransportError{Op: "list", Err: err}
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *Remote) Create(ctx context.Context, e core.Expense) (int64, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/expenses", toPayload(e))
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Remote) Update(ctx context.Context, id int64, e core.Expense) (int64, error) {
	resp, err := c.do(ctx, http.MethodPut, "/api/expenses?id="+strconv.FormatInt(id, 10), toPayload(e))
	if err != nil {
		return 0, err
	}
	if resp.Updated == nil {
		return 0, &store.TransportError{Op: "update", Err: fmt.Errorf("response missing updated count")}
	}
	return *resp.Updated, nil
}

func (c *Remote) Delete(ctx context.Context, id int64) (int64, error) {
	resp, err := c.do(ctx, http.MethodDelete, "/api/expenses?id="+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return 0, err
	}
	if resp.Deleted == nil {
		return 0, &store.TransportError{Op: "delete", Err: fmt.Errorf("response missing deleted count")}
	}
	return *resp.Deleted, nil
}

// do issues one request and maps the response status onto the store error
// types.
func (c *Remote) do(ctx context.Context, method, path string, body any) (*apiResponse, error) {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, &store.TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &store.TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, &store.TransportError{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	var resp apiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, &store.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	switch {
	case httpResp.StatusCode == http.StatusNotFound:
		return nil, &store.NotFoundError{ID: idFromPath(path)}
	case httpResp.StatusCode == http.StatusUnprocessableEntity:
		return nil, &store.ValidationError{Field: "payload", Reason: resp.Error}
	case httpResp.StatusCode >= 400:
		return nil, &store.TransportError{Op: op, Err: fmt.Errorf("status %d: %s", httpResp.StatusCode, resp.Error)}
	}
	return &resp, nil
}

func idFromPath(path string) int64 {
	for i := 0; i < len(path); i++ {
		if path[i] == '=' {
			id, _ := strconv.ParseInt(path[i+1:], 10, 64)
			return id
		}
	}
	return 0
}

func toPayload(e core.Expense) expensePayload {
	return expensePayload{
		Amount:   e.Amount.Decimal(),
		Category: string(e.Category),
		Date:     e.Date.String(),
		Note:     e.Note,
	}
}

func fromPayload(p expensePayload) (core.Expense, error) {
	cat, err := core.ParseCategory(p.Category)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ID:       p.ID,
		Amount:   core.Money{Cents: core.CentsFromDecimal(p.Amount)},
		Category: cat,
		Date:     date,
		Note:     p.Note,
	}, nil
}
