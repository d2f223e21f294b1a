package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ivanpetrenko/authgate/internal/common"
)

type fieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error  string         `json:"error"`
	Fields []fieldProblem `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the service error taxonomy onto HTTP statuses. Expired
// folds into 401 together with Unauthorized so the response does not leak
// which check failed.
func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}

	var v *common.ValidationError
	if errors.As(err, &v) {
		for _, f := range v.Fields {
			resp.Fields = append(resp.Fields, fieldProblem{Field: f.Field, Message: f.Message})
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrorConflict):
		status = http.StatusConflict
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrorExpired),
		errors.Is(err, common.ErrUnknownAuthScheme):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		// do not echo storage details to the client
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}
