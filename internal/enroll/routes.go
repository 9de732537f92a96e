package enroll

import (
	"net/http"

	"github.com/gorilla/mux"
)

func RegisterRoutes(r *mux.Router, h *Handler, auth mux.MiddlewareFunc) {
	// 1) create — только для владельца с валидным токеном
	authd := r.PathPrefix("/enroll").Subrouter()
	authd.Use(auth)
	authd.HandleFunc("/create", h.Create).Methods(http.MethodPost)

	// 2) claim — открыт, кодом владеет само устройство
	open := r.PathPrefix("/enroll").Subrouter()
	open.HandleFunc("/claim", h.Claim).Methods(http.MethodPost)
}
