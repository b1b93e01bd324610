package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"spendsense/internal/core"
	"spendsense/internal/store"
)

// Every API response is a JSON envelope with a success flag. Mutations carry
// their outcome at the top level (id, updated, deleted) rather than nested
// under data.
type envelope struct {
	Success bool  `json:"success"`
	Data    any   `json:"data,omitempty"`
	ID      int64 `json:"id,omitempty"`
	Updated *int  `json:"updated,omitempty"`
	Deleted *int  `json:"deleted,omitempty"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeCreated(w http.ResponseWriter, id int64) {
	writeJSON(w, http.StatusCreated, envelope{Success: true, ID: id})
}

func writeUpdated(w http.ResponseWriter, n int) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Updated: &n})
}

func writeDeleted(w http.ResponseWriter, n int) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Deleted: &n})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Success: false, Error: msg})
}

// writeStoreError maps store error types onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusUnprocessableEntity, verr.Error())
		return
	}
	var nferr *store.NotFoundError
	if errors.As(err, &nferr) {
		writeError(w, http.StatusNotFound, nferr.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// expenseDTO is the wire form of an expense: amount in whole currency units,
// date as YYYY-MM-DD.
type expenseDTO struct {
	ID       int64   `json:"id"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Note     string  `json:"note"`
}

func toDTO(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:       e.ID,
		Amount:   e.Amount.Decimal(),
		Category: string(e.Category),
		Date:     e.Date.String(),
		Note:     e.Note,
	}
}

func toDTOs(expenses []core.Expense) []expenseDTO {
	out := make([]expenseDTO, len(expenses))
	for i, e := range expenses {
		out[i] = toDTO(e)
	}
	return out
}

type statsDTO struct {
	SumMonth   float64            `json:"sum_month"`
	SumToday   float64            `json:"sum_today"`
	MaxSingle  float64            `json:"max_single"`
	ByCategory map[string]float64 `json:"by_category"`
}

func statsToDTO(st core.Stats) statsDTO {
	byCat := make(map[string]float64, len(st.ByCategory))
	for cat, amount := range st.ByCategory {
		byCat[string(cat)] = amount.Decimal()
	}
	return statsDTO{
		SumMonth:   st.SumMonth.Decimal(),
		SumToday:   st.SumToday.Decimal(),
		MaxSingle:  st.MaxSingle.Decimal(),
		ByCategory: byCat,
	}
}
