package enroll

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"latch/internal/identity"
	"latch/internal/logs"
	"latch/internal/middleware"
	"latch/internal/models"
)

// Бюджет на поход в store; таймаут claim — неизвестный исход, не успех.
const storeTimeout = 10 * time.Second

type Handler struct {
	svc       *Service
	publicURL string
}

func NewHandler(svc *Service, publicURL string) *Handler {
	return &Handler{svc: svc, publicURL: strings.TrimRight(publicURL, "/")}
}

type createResponse struct {
	OK        bool      `json:"ok"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	EnrollURL string    `json:"enroll_url"`
}

// POST /enroll/create (только с аутентификацией)
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner := identity.FromContext(r.Context())
	if owner == nil {
		models.WriteError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	res, err := h.svc.CreateEnrollment(ctx, owner)
	if err != nil {
		logs.Req(middleware.GetRequestID(r)).Errorf("enroll create for %s: %v", owner.ID, err)
		models.WriteError(w, http.StatusInternalServerError, "enrollment_unavailable")
		return
	}
	models.WriteJSON(w, http.StatusOK, createResponse{
		OK:        true,
		Code:      res.Code,
		ExpiresAt: res.ExpiresAt,
		EnrollURL: h.enrollURL(r, res.Code),
	})
}

type claimRequest struct {
	Code       string `json:"code"`
	DeviceName string `json:"device_name"`
	Platform   string `json:"platform"`
}

type claimResponse struct {
	OK       bool   `json:"ok"`
	DeviceID string `json:"device_id"`
	OwnerID  string `json:"owner_id"`
}

// POST /enroll/claim (без аутентификации — код и есть credential)
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "bad_request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	res, err := h.svc.ClaimEnrollment(ctx, req.Code, req.DeviceName, req.Platform)
	if err != nil {
		h.writeClaimError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, claimResponse{OK: true, DeviceID: res.DeviceID, OwnerID: res.OwnerID})
}

// Точный вариант отказа остаётся в логе; клиенту — схлопнутая категория.
func (h *Handler) writeClaimError(w http.ResponseWriter, r *http.Request, err error) {
	l := logs.Req(middleware.GetRequestID(r))
	switch {
	case errors.Is(err, ErrEmptyCode):
		models.WriteError(w, http.StatusBadRequest, "empty_code")
	case errors.Is(err, ErrCodeNotFound), errors.Is(err, ErrAlreadyClaimed), errors.Is(err, ErrCodeExpired):
		l.Infof("enroll claim rejected: %v", err)
		models.WriteError(w, http.StatusBadRequest, "invalid_or_expired_code")
	case errors.Is(err, ErrTransient):
		l.Warnf("enroll claim transient failure: %v", err)
		models.WriteError(w, http.StatusServiceUnavailable, "temporarily_unavailable")
	default:
		l.Errorf("enroll claim: %v", err)
		models.WriteError(w, http.StatusInternalServerError, "internal_error")
	}
}

func (h *Handler) enrollURL(r *http.Request, code string) string {
	base := h.publicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/enroll?code=" + url.QueryEscape(code)
}
