package usecase

import "github.com/xavierca1/ligue-imoveis/internal/entity"

// EnrichLeads junta cada lead com a etapa completa. Função pura.
//
// status_id que não bate com nenhuma etapa cai na primeira etapa por Order,
// com StatusResolved=false pra quem quiser sinalizar. Sem etapas, todos
// recebem entity.UnknownStatus.
func EnrichLeads(leads []entity.Lead, statuses []entity.Status) []entity.EnrichedLead {
	out := make([]entity.EnrichedLead, 0, len(leads))
	if len(leads) == 0 {
		return out
	}

	ordered := entity.SortStatuses(statuses)
	byID := make(map[string]entity.Status, len(ordered))
	for _, s := range ordered {
		if _, dup := byID[s.ID]; !dup {
			byID[s.ID] = s
		}
	}

	fallback := entity.UnknownStatus
	if len(ordered) > 0 {
		fallback = ordered[0]
	}

	for _, l := range leads {
		s, ok := byID[l.StatusID]
		if !ok {
			s = fallback
		}
		out = append(out, entity.EnrichedLead{Lead: l, Status: s, StatusResolved: ok})
	}

	return out
}

// CountUnresolved conta leads que caíram no fallback de etapa.
func CountUnresolved(leads []entity.EnrichedLead) int {
	n := 0
	for _, l := range leads {
		if !l.StatusResolved {
			n++
		}
	}
	return n
}
