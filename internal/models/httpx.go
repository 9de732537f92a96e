package models

import (
	"encoding/json"
	"net/http"
)

// ErrorBody — единый конверт ошибки: {ok:false, error:"..."}.
// Строка error — из курируемого набора, внутренние детали остаются в логах.
type ErrorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Extra any    `json:"extra,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code string) {
	WriteJSON(w, status, ErrorBody{OK: false, Error: code})
}

func WriteErrorExtra(w http.ResponseWriter, status int, code string, extra any) {
	WriteJSON(w, status, ErrorBody{OK: false, Error: code, Extra: extra})
}
