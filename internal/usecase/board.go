package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

// LeadFilter é aplicado antes do agrupamento: lead filtrado some da coluna.
type LeadFilter struct {
	Query string
	From  time.Time // zero = sem limite
	To    time.Time // zero = sem limite, inclusivo
}

// ParseLeadFilter monta o filtro a partir de texto. Datas aceitam YYYY-MM-DD
// ou RFC3339; "to" só com data vai até o fim do dia.
func ParseLeadFilter(query, from, to string) (LeadFilter, error) {
	f := LeadFilter{Query: strings.TrimSpace(query)}

	var err error
	if from != "" {
		if f.From, _, err = parseDate(from); err != nil {
			return f, fmt.Errorf("from inválido: %q", from)
		}
	}
	if to != "" {
		var dateOnly bool
		if f.To, dateOnly, err = parseDate(to); err != nil {
			return f, fmt.Errorf("to inválido: %q", to)
		}
		if dateOnly {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, errors.New("to anterior a from")
	}
	return f, nil
}

func parseDate(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	return t, false, err
}

func (f LeadFilter) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" && f.From.IsZero() && f.To.IsZero()
}

func (f LeadFilter) Match(l entity.Lead) bool {
	if !f.From.IsZero() && l.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && l.CreatedAt.After(f.To) {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(l.Name), q) ||
		strings.Contains(strings.ToLower(l.Email), q) ||
		strings.Contains(strings.ToLower(l.Phone), q) {
		return true
	}

	// "11 9999" tem que achar "(11) 99999-0000"
	qDigits := nonDigits.ReplaceAllString(q, "")
	if qDigits != "" && strings.Contains(nonDigits.ReplaceAllString(l.Phone, ""), qDigits) {
		return true
	}
	return false
}

func FilterLeads(leads []entity.Lead, f LeadFilter) []entity.Lead {
	if f.IsZero() {
		out := make([]entity.Lead, len(leads))
		copy(out, leads)
		return out
	}
	out := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

// GroupBoard monta uma coluna por etapa, na ordem das etapas, inclusive as vazias.
// Dentro da coluna: atualizado mais recentemente primeiro, depois criado mais
// recentemente, depois ordem de chegada.
func GroupBoard(leads []entity.EnrichedLead, statuses []entity.Status) entity.Board {
	ordered := entity.SortStatuses(statuses)

	columns := make([]entity.Column, 0, len(ordered)+1)
	index := make(map[string]int, len(ordered))
	for _, s := range ordered {
		if _, dup := index[s.ID]; dup {
			continue
		}
		index[s.ID] = len(columns)
		columns = append(columns, entity.Column{Status: s, Leads: []entity.EnrichedLead{}})
	}

	var orphans []entity.EnrichedLead
	for _, l := range leads {
		i, ok := index[l.Status.ID]
		if !ok {
			orphans = append(orphans, l)
			continue
		}
		columns[i].Leads = append(columns[i].Leads, l)
	}

	// só acontece sem etapas cadastradas; nenhum lead pode sumir do board
	if len(orphans) > 0 {
		columns = append(columns, entity.Column{Status: entity.UnknownStatus, Leads: orphans})
	}

	for i := range columns {
		sortColumn(columns[i].Leads)
	}

	return entity.Board{Columns: columns}
}

func sortColumn(leads []entity.EnrichedLead) {
	sort.SliceStable(leads, func(i, j int) bool {
		a, b := leads[i], leads[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// BuildBoard = filtro -> enriquecimento -> agrupamento.
func BuildBoard(leads []entity.Lead, statuses []entity.Status, f LeadFilter) entity.Board {
	return GroupBoard(EnrichLeads(FilterLeads(leads, f), statuses), statuses)
}
