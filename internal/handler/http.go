package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// callbackPayload extracts the wallet's response envelope from a callback
// request: the data query parameter on GET, the raw body on POST.
func callbackPayload(w http.ResponseWriter, r *http.Request) (string, url.Values, error) {
	query := r.URL.Query()

	if data := query.Get("data"); data != "" {
		return data, query, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", query, err
	}
	return strings.TrimSpace(string(body)), query, nil
}
