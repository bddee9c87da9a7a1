package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vdappdev2/vtimestamp/internal/model"
	"github.com/vdappdev2/vtimestamp/internal/service"
)

const maxUploadBytes = 50 << 20 // 50MB

// HashHandler handles HTTP requests for server-side content hashing.
type HashHandler struct {
	service *service.HashService
}

// NewHashHandler creates a new HashHandler.
func NewHashHandler(svc *service.HashService) *HashHandler {
	return &HashHandler{service: svc}
}

// HandleHash handles POST /api/v1/hash requests. A multipart upload hashes
// the file field; a JSON body hashes its text field.
func (h *HashHandler) HandleHash(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse("missing file field"))
			return
		}
		defer file.Close()

		resp, err := h.service.HashFile(file, header.Size)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	var req model.HashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	resp, err := h.service.HashText(req.Text)
	if err != nil {
		if errors.Is(err, service.ErrContentRequired) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
