package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vdappdev2/vtimestamp/internal/model"
	"github.com/vdappdev2/vtimestamp/internal/rpc"
	"github.com/vdappdev2/vtimestamp/internal/service"
	"github.com/vdappdev2/vtimestamp/internal/signing"
)

// TimestampHandler handles HTTP requests for creating and reading
// timestamp proofs.
type TimestampHandler struct {
	service *service.TimestampService
}

// NewTimestampHandler creates a new TimestampHandler.
func NewTimestampHandler(svc *service.TimestampService) *TimestampHandler {
	return &TimestampHandler{service: svc}
}

func isCreateValidationError(err error) bool {
	return errors.Is(err, service.ErrIdentityRequired) ||
		errors.Is(err, service.ErrInvalidHash) ||
		errors.Is(err, service.ErrTitleRequired) ||
		errors.Is(err, service.ErrInvalidFilesize)
}

// HandleCreate handles POST /api/v1/timestamp/create requests.
func (h *TimestampHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.CreateTimestampRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		switch {
		case isCreateValidationError(err):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrIdentityNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
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

// HandleStatus handles GET /api/v1/timestamp/status?requestId= requests.
func (h *TimestampHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Status(r.URL.Query().Get("requestId"))
	if err != nil {
		if errors.Is(err, service.ErrRequestIDRequired) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleCallback handles POST and GET /api/v1/timestamp/callback requests from wallets.
func (h *TimestampHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	raw, query, err := callbackPayload(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	if err := h.service.HandleCallback(r.Context(), raw, query); err != nil {
		if errors.Is(err, service.ErrInvalidResponse) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleCheck handles GET /api/v1/timestamp/check?identity=&sha256= requests.
func (h *TimestampHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	resp, err := h.service.Check(r.Context(), query.Get("identity"), query.Get("sha256"))
	if err != nil {
		h.writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleList handles GET /api/v1/timestamps?identity= requests.
func (h *TimestampHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.List(r.Context(), r.URL.Query().Get("identity"))
	if err != nil {
		h.writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleVerify handles GET /api/v1/verify?identity=&sha256= requests. Public,
// no authentication.
func (h *TimestampHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	resp, err := h.service.Verify(r.Context(), query.Get("identity"), query.Get("sha256"))
	if err != nil {
		h.writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *TimestampHandler) writeReadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrIdentityRequired), errors.Is(err, service.ErrInvalidHash):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, rpc.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("chain unavailable"))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}
