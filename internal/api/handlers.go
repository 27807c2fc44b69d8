package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/DelphiTri/website/internal/auth"
	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/logging"
	"github.com/DelphiTri/website/internal/services"
)

type Handlers struct {
	deps     *Dependencies
	validate *validator.Validate
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps:     deps,
		validate: validator.New(),
	}
}

var errBadRequestBody = errors.New("failed to decode request")

// decode reads a JSON body into dst and runs its validate tags
func (h *Handlers) decode(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		return errBadRequestBody
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("field %s failed %s validation", strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return err
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// respondLedgerError maps a ledger error kind to its HTTP status. Storage
// and integrity failures never leak their cause to the client.
func respondLedgerError(w http.ResponseWriter, r *http.Request, start time.Time, err error) {
	status := http.StatusInternalServerError
	switch services.KindOf(err) {
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict:
		status = http.StatusConflict
	case services.KindValidationMissing:
		status = http.StatusBadRequest
	}

	message := "Internal server error"
	var le *services.LedgerError
	if errors.As(err, &le) {
		message = le.Message
	}

	if status == http.StatusInternalServerError {
		logging.Error("Admin request failed",
			"request_id", auth.GetRequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	common.RespondError(w, start, err, message, status)
}

func respondBadRequest(w http.ResponseWriter, start time.Time, err error) {
	common.RespondError(w, start, err, "", http.StatusBadRequest)
}

func userEditPath(userID int64) string {
	return fmt.Sprintf("/admin/user/%d/edit", userID)
}
