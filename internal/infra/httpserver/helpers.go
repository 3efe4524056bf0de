package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

func ReplyWithError(w http.ResponseWriter, statusCode int, errMsg string, details ...string) {
	errResponse := &ErrorResponse{
		Message: errMsg,
		Details: details,
	}
	ReplyJSONResponse(w, statusCode, errResponse)
}

func ReplyJSONResponse(w http.ResponseWriter, statusCode int, output any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(output)
}

func DecodeJSONBody(r *http.Request, placeholder any) error {
	reqBody, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading request body: %w", err)
	}

	if err := json.Unmarshal(reqBody, placeholder); err != nil {
		return fmt.Errorf("unmarshaling json: %w", err)
	}

	return nil
}

func GetQueryParam(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// GetHeaderOrQueryParam prefers the header and falls back to the query
// parameter, so websocket clients that cannot set headers still work.
func GetHeaderOrQueryParam(r *http.Request, header, query string) string {
	if value := strings.TrimSpace(r.Header.Get(header)); value != "" {
		return value
	}
	return GetQueryParam(r, query)
}
