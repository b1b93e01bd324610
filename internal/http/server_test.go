package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spendsense/internal/memory"
	"spendsense/internal/session"
)

var testNow = time.Date(2024, time.March, 9, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	sess := session.New(memory.New(), nil)
	if err := sess.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	s := newServer(":0", sess, func() time.Time { return testNow })
	ts := httptest.NewServer(s.Server.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = s.Shutdown(context.Background())
	})
	return s, ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestExpenseCRUD(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/expenses", map[string]any{
		"amount":   199,
		"category": "food",
		"note":     "pizza",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	if body["success"] != true || body["id"] != float64(1) {
		t.Fatalf("create body = %v", body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/expenses", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	items := body["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("list returned %d items, want 1", len(items))
	}
	item := items[0].(map[string]any)
	if item["amount"] != float64(199) || item["category"] != "Food" || item["date"] != "2024-03-09" || item["note"] != "pizza" {
		t.Errorf("item = %v", item)
	}

	resp, body = doJSON(t, http.MethodPut, ts.URL+"/api/expenses?id=1", map[string]any{
		"amount":   250,
		"category": "transport",
		"date":     "2024-03-08",
	})
	if resp.StatusCode != http.StatusOK || body["updated"] != float64(1) {
		t.Fatalf("update status = %d, body = %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodDelete, ts.URL+"/api/expenses?id=1", nil)
	if resp.StatusCode != http.StatusOK || body["deleted"] != float64(1) {
		t.Fatalf("delete status = %d, body = %v", resp.StatusCode, body)
	}

	// Deleting an absent id succeeds with a zero count.
	resp, body = doJSON(t, http.MethodDelete, ts.URL+"/api/expenses?id=1", nil)
	if resp.StatusCode != http.StatusOK || body["deleted"] != float64(0) {
		t.Fatalf("repeat delete status = %d, body = %v", resp.StatusCode, body)
	}
}

func TestUpdateMissingExpense(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := doJSON(t, http.MethodPut, ts.URL+"/api/expenses?id=42", map[string]any{
		"amount":   10,
		"category": "food",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["success"] != false {
		t.Errorf("body = %v", body)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	_, ts := newTestServer(t)
	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"zero amount", map[string]any{"amount": 0, "category": "food"}},
		{"negative amount", map[string]any{"amount": -5, "category": "food"}},
		{"unknown category", map[string]any{"amount": 10, "category": "groceries"}},
		{"bad date", map[string]any{"amount": 10, "category": "food", "date": "yesterday"}},
		{"missing amount", map[string]any{"category": "food"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/expenses", tt.payload)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", resp.StatusCode)
			}
			if body["success"] != false || body["error"] == "" {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestInvalidID(t *testing.T) {
	_, ts := newTestServer(t)
	for _, url := range []string{"/api/expenses", "/api/expenses?id=abc", "/api/expenses?id=-1"} {
		resp, _ := doJSON(t, http.MethodDelete, ts.URL+url, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", url, resp.StatusCode)
		}
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/api/expenses", map[string]any{"amount": 199, "category": "food"})
	doJSON(t, http.MethodPost, ts.URL+"/api/expenses", map[string]any{"amount": 80, "category": "transport", "date": "2024-03-01"})

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d", resp.StatusCode)
	}
	stats := body["data"].(map[string]any)
	if stats["sum_month"] != float64(279) {
		t.Errorf("sum_month = %v, want 279", stats["sum_month"])
	}
	if stats["sum_today"] != float64(199) {
		t.Errorf("sum_today = %v, want 199", stats["sum_today"])
	}
	if stats["max_single"] != float64(199) {
		t.Errorf("max_single = %v, want 199", stats["max_single"])
	}
}

func TestStatsCacheInvalidatedByMutation(t *testing.T) {
	_, ts := newTestServer(t)

	_, body := doJSON(t, http.MethodGet, ts.URL+"/api/stats", nil)
	if got := body["data"].(map[string]any)["sum_today"]; got != float64(0) {
		t.Fatalf("initial sum_today = %v", got)
	}

	doJSON(t, http.MethodPost, ts.URL+"/api/expenses", map[string]any{"amount": 50, "category": "health"})

	_, body = doJSON(t, http.MethodGet, ts.URL+"/api/stats", nil)
	if got := body["data"].(map[string]any)["sum_today"]; got != float64(50) {
		t.Errorf("sum_today after create = %v, want 50", got)
	}
}

func TestChatEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/chat", map[string]any{"message": "add 120 food pizza"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat status = %d", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	if data["intent"] != "add_expense" {
		t.Errorf("intent = %v", data["intent"])
	}
	if data["reply"] != "Added ₹120 in Food — pizza." {
		t.Errorf("reply = %v", data["reply"])
	}

	_, body = doJSON(t, http.MethodGet, ts.URL+"/api/expenses", nil)
	if items := body["data"].([]any); len(items) != 1 {
		t.Errorf("expense count after chat add = %d, want 1", len(items))
	}

	_, body = doJSON(t, http.MethodPost, ts.URL+"/api/chat", map[string]any{"message": "what is up"})
	data = body["data"].(map[string]any)
	if data["intent"] != "unrecognized" {
		t.Errorf("intent = %v", data["intent"])
	}
}

func TestSeedDemo(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/demo", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("demo status = %d", resp.StatusCode)
	}
	if got := body["data"].(map[string]any)["seeded"]; got != float64(4) {
		t.Errorf("seeded = %v, want 4", got)
	}

	_, body = doJSON(t, http.MethodGet, ts.URL+"/api/expenses", nil)
	if items := body["data"].([]any); len(items) != 4 {
		t.Errorf("expense count after seed = %d, want 4", len(items))
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, ts := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d", path, resp.StatusCode)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/stats", map[string]any{})
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != "GET" {
		t.Errorf("Allow = %q", allow)
	}
}

func TestSecurityHeaders(t *testing.T) {
	_, ts := newTestServer(t)
	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/expenses", nil)
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
