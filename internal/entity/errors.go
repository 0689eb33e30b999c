package entity

import "errors"

var (
	ErrLeadNotFound   = errors.New("lead não encontrado")
	ErrStatusNotFound = errors.New("etapa não encontrada")
	ErrNoStatuses     = errors.New("nenhuma etapa cadastrada")
	ErrNameRequired   = errors.New("name is required")
)
