package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/logger"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeErrorResponse traduz erro de usecase/domínio em status HTTP.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		switch de.Code {
		case usecase.CodeLeadNotFound:
			status = http.StatusNotFound
		case usecase.CodeStatusNotFound:
			status = http.StatusUnprocessableEntity
		case usecase.CodeNoStatuses:
			status = http.StatusConflict
		}
		writeJSON(w, status, ErrorResponse{Error: de.Code, Message: de.Message, Fields: de.Fields})
		return
	}

	switch {
	case errors.Is(err, entity.ErrLeadNotFound):
		writeError(w, http.StatusNotFound, usecase.CodeLeadNotFound, err.Error())
		return
	case errors.Is(err, entity.ErrStatusNotFound):
		writeError(w, http.StatusUnprocessableEntity, usecase.CodeStatusNotFound, err.Error())
		return
	}

	logger.FromContext(r.Context()).Error("erro interno", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "erro interno, tente novamente")
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// requestUser identifica quem fez a ação. Sem auth, vem do header.
func requestUser(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User"))
}
