package common

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/logging"
	"github.com/DelphiTri/website/internal/models/dtos"
)

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	writeJSON(w, code, response)
}

// RespondRedirect answers a completed mutation with 303 See Other. The
// Location header and the body both carry the follow-up view.
func RespondRedirect(w http.ResponseWriter, initTime time.Time, message string, data dtos.RedirectData) {
	w.Header().Set("Location", data.Redirect)
	RespondSuccess(w, initTime, message, data, http.StatusSeeOther)
}

// RespondError sends a standardized JSON error response.
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	msg := message
	if msg == "" && err != nil {
		msg = err.Error()
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      msg,
		ResponseTime: GetResponseTime(initTime),
	}

	writeJSON(w, code, response)
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body dtos.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err)
	}
}
