package usecase

import (
	"context"
	"fmt"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

// StatusRegistry é a visão somente-leitura das etapas do funil.
// Criar/editar etapas é coisa da tela de configurações.
type StatusRegistry struct {
	Source StatusSource
}

func NewStatusRegistry(source StatusSource) *StatusRegistry {
	return &StatusRegistry{Source: source}
}

// List devolve as etapas em ordem crescente de Order (empates pela ordem de chegada).
func (r *StatusRegistry) List(ctx context.Context) ([]entity.Status, error) {
	statuses, err := r.Source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar etapas: %w", err)
	}
	return entity.SortStatuses(statuses), nil
}

// Default é a etapa de menor Order.
func (r *StatusRegistry) Default(ctx context.Context) (entity.Status, error) {
	statuses, err := r.List(ctx)
	if err != nil {
		return entity.Status{}, err
	}
	if len(statuses) == 0 {
		return entity.Status{}, entity.ErrNoStatuses
	}
	return statuses[0], nil
}

func (r *StatusRegistry) Find(ctx context.Context, id string) (entity.Status, error) {
	statuses, err := r.List(ctx)
	if err != nil {
		return entity.Status{}, err
	}
	if s, ok := entity.FindStatus(statuses, id); ok {
		return s, nil
	}
	return entity.Status{}, entity.ErrStatusNotFound
}

// Resolve devolve a etapa pelo id; id vazio ou inexistente cai na Default.
func (r *StatusRegistry) Resolve(ctx context.Context, id string) (entity.Status, error) {
	statuses, err := r.List(ctx)
	if err != nil {
		return entity.Status{}, err
	}
	if len(statuses) == 0 {
		return entity.Status{}, entity.ErrNoStatuses
	}
	if id != "" {
		if s, ok := entity.FindStatus(statuses, id); ok {
			return s, nil
		}
	}
	return statuses[0], nil
}
