// Package httputil writes the JSON envelope shared by every endpoint of the local API.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/log"
)

type Response struct {
	Status string     `json:"status"`
	Data   any        `json:"data,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Response{Status: "ok", Data: data})
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	write(w, status, Response{Status: "error", Error: &ErrorBody{Code: code, Message: message}})
}

// WriteFailure maps err to a status by its kind. Untyped errors are reported as resolve failures.
func WriteFailure(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)

	message := err.Error()
	var typed *apperr.Error
	if errors.As(err, &typed) && typed.Message != "" {
		message = typed.Message
	}
	WriteError(w, Status(kind), kind.String(), message)
}

// Status is the HTTP status reported for a failure kind.
func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func write(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("httputil: encoding response")
	}
}
