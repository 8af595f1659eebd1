package functions

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/validation"
)

// errBadRequest marks malformed query parameters or bodies
var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `"failed to encode response"`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// writeActionError maps an action failure to its status and body.
// Unknown actions and bad input get {"error": ...}; upstream failures get the
// message as a bare JSON string.
func writeActionError(w http.ResponseWriter, err error) (result string) {
	var verr *validation.Error
	switch {
	case errors.Is(err, domain.ErrInvalidAction):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid action"})
		return "invalid"
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error()})
		return "invalid"
	case errors.Is(err, errBadRequest), errors.Is(err, domain.ErrInvalidMediaType), errors.Is(err, domain.ErrInvalidAvatar):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return "invalid"
	case errors.Is(err, errUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
		return "unauthorized"
	case errors.Is(err, errForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
		return "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, err.Error())
		return "error"
	default:
		writeJSON(w, http.StatusInternalServerError, err.Error())
		return "error"
	}
}
