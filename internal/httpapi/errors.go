package httpapi

import (
	"errors"
	"net/http"

	"github.com/roach88/sieve/internal/apply"
	"github.com/roach88/sieve/internal/grammar"
	"github.com/roach88/sieve/internal/querysql"
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// fail maps err to a status and writes the error envelope.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, param, message := classify(err)
	if status >= http.StatusInternalServerError {
		s.l.Error().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("query failed")
		message = "internal error"
	}
	writeError(w, status, code, param, message)
}

func classify(err error) (status int, code, param, message string) {
	var ce *grammar.CompileError
	switch {
	case errors.As(err, &ce):
		return http.StatusBadRequest, string(ce.Code), ce.Param, ce.Message
	case errors.Is(err, querysql.ErrUnknownResource):
		return http.StatusNotFound, "UNKNOWN_RESOURCE", "", err.Error()
	case errors.Is(err, apply.ErrInvalidPath),
		errors.Is(err, querysql.ErrUnknownRelation),
		errors.Is(err, querysql.ErrInvalidColumn),
		errors.Is(err, querysql.ErrInvalidOperator),
		errors.Is(err, querysql.ErrPlaceholderCount),
		errors.Is(err, querysql.ErrMisplacedClause):
		return http.StatusBadRequest, "INVALID_QUERY", "", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL", "", err.Error()
	}
}

func writeError(w http.ResponseWriter, status int, code, param, message string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Param: param, Message: message}})
}
