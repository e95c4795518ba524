package handler

import (
	"errors"
	"net/http"
	"strconv"

	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/internal/workflow"
	"clinic-scheduling/pkg/response"

	"github.com/gorilla/mux"
)

// writeError maps a use case error kind to its HTTP status. fallback is the
// message for storage and unclassified failures.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidArgument):
		response.BadRequest(w, workflow.Message(err))
	case errors.Is(err, usecase.ErrNotFound):
		response.NotFound(w, workflow.Message(err))
	case errors.Is(err, usecase.ErrInvalidState), errors.Is(err, usecase.ErrConflict):
		response.Conflict(w, workflow.Message(err))
	case errors.Is(err, usecase.ErrUnauthorized), errors.Is(err, workflow.ErrNotAuthenticated):
		response.Unauthorized(w, workflow.Message(err))
	default:
		response.InternalServerError(w, fallback)
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
