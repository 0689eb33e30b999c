package entity

import (
	"context"
	"sort"
)

// Status é uma etapa do funil (Novo, Contatado, Proposta...).
type Status struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

// UnknownStatus é o placeholder usado quando não existe nenhuma etapa cadastrada.
var UnknownStatus = Status{
	ID:    "",
	Name:  "Desconhecido",
	Color: "gray",
	Order: 0,
}

type StatusRepositoryInterface interface {
	List(ctx context.Context) ([]Status, error)
}

// SortStatuses ordena por Order preservando a ordem de chegada nos empates.
func SortStatuses(statuses []Status) []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// FindStatus busca uma etapa pelo id.
func FindStatus(statuses []Status, id string) (Status, bool) {
	for _, s := range statuses {
		if s.ID == id {
			return s, true
		}
	}
	return Status{}, false
}
