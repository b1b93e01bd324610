package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"spendsense/internal/chatbot"
	"spendsense/internal/core"
)

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	case http.MethodPut:
		s.updateExpense(w, r)
	case http.MethodDelete:
		s.deleteExpense(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Refresh(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Cache refresh failed", "error", err)
		writeStoreError(w, err)
		return
	}
	writeData(w, toDTOs(s.session.Snapshot()))
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	e, errMsg := s.parseExpensePayload(r)
	if errMsg != "" {
		writeError(w, http.StatusUnprocessableEntity, errMsg)
		return
	}

	id, err := s.session.Add(r.Context(), e)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense create failed", "error", err, "category", e.Category, "amount_cents", e.Amount.Cents)
		writeStoreError(w, err)
		return
	}
	s.statsCache.Purge()
	writeCreated(w, id)
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	e, errMsg := s.parseExpensePayload(r)
	if errMsg != "" {
		writeError(w, http.StatusUnprocessableEntity, errMsg)
		return
	}

	n, err := s.session.Update(r.Context(), id, e)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense update failed", "error", err, "id", id)
		writeStoreError(w, err)
		return
	}
	s.statsCache.Purge()
	writeUpdated(w, int(n))
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	n, err := s.session.Delete(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense delete failed", "error", err, "id", id)
		writeStoreError(w, err)
		return
	}
	s.statsCache.Purge()
	writeDeleted(w, int(n))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Stats are a pure function of the cache and the current day, so the
	// day is the cache key.
	now := s.now()
	key := core.Today(now).String()
	if st, ok := s.statsCache.Get(key); ok {
		writeData(w, statsToDTO(st))
		return
	}
	st := s.session.Stats(now)
	s.statsCache.Set(key, st)
	writeData(w, statsToDTO(st))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.interpreter.Interpret(r.Context(), req.Message)
	if err != nil {
		// Command failures come back as the bot's reply, not as an HTTP
		// error: the chat stays usable and the message says what broke.
		slog.ErrorContext(r.Context(), "Chat command failed", "error", err, "intent", res.Intent)
		res.Reply = "Something went wrong: " + err.Error()
	}
	switch res.Intent {
	case chatbot.IntentAddExpense, chatbot.IntentClearAll:
		s.statsCache.Purge()
	}

	writeData(w, map[string]any{
		"intent": string(res.Intent),
		"reply":  res.Reply,
		"lines":  res.Lines(),
	})
}

func (s *Server) handleSeedDemo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	n, err := s.session.SeedDemo(r.Context(), s.now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Demo seed failed", "error", err)
		writeStoreError(w, err)
		return
	}
	s.statsCache.Purge()
	writeData(w, map[string]int{"seeded": n})
}

// parseExpensePayload decodes the JSON expense body. A non-empty second
// return is the validation message for a 422.
func (s *Server) parseExpensePayload(r *http.Request) (core.Expense, string) {
	var payload struct {
		Amount   json.Number `json:"amount"`
		Category string      `json:"category"`
		Date     string      `json:"date"`
		Note     string      `json:"note"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return core.Expense{}, "invalid request body"
	}

	cents, err := core.ParseAmountToCents(payload.Amount.String())
	if err != nil {
		return core.Expense{}, "amount must be a positive number"
	}
	cat, err := core.ParseCategory(payload.Category)
	if err != nil {
		return core.Expense{}, "unknown category " + strconv.Quote(payload.Category)
	}

	date := core.Today(s.now())
	if v := strings.TrimSpace(payload.Date); v != "" {
		date, err = core.ParseDate(v)
		if err != nil {
			return core.Expense{}, "date must be YYYY-MM-DD"
		}
	}

	return core.Expense{
		Amount:   core.Money{Cents: cents},
		Category: cat,
		Date:     date,
		Note:     sanitizeInput(payload.Note),
	}, ""
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline, and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
