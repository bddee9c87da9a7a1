package handler

import (
	"errors"
	"net/http"

	"github.com/vdappdev2/vtimestamp/internal/rpc"
	"github.com/vdappdev2/vtimestamp/internal/service"
	"github.com/vdappdev2/vtimestamp/internal/signing"
)

// AuthHandler handles HTTP requests for wallet login.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleLogin handles POST /api/v1/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.CreateChallenge(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, signing.ErrNotConfigured):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse("service not configured"))
		case errors.Is(err, rpc.ErrUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse("chain unavailable"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleStatus handles GET /api/v1/auth/status?challengeId= requests.
func (h *AuthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Status(r.URL.Query().Get("challengeId"))
	if err != nil {
		if errors.Is(err, service.ErrChallengeIDRequired) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleCallback handles POST and GET /api/v1/auth/callback requests from wallets.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	raw, query, err := callbackPayload(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	if err := h.service.HandleCallback(r.Context(), raw, query); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResponse):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, rpc.ErrUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse("chain unavailable"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
