package entity

// Column é uma coluna do Kanban: a etapa e os leads dela, já ordenados.
type Column struct {
	Status Status         `json:"status"`
	Leads  []EnrichedLead `json:"leads"`
}

type Board struct {
	Columns []Column `json:"columns"`
}

// Buckets devolve status id -> ids dos leads, na ordem das colunas.
func (b Board) Buckets() map[string][]string {
	out := make(map[string][]string, len(b.Columns))
	for _, c := range b.Columns {
		ids := make([]string, 0, len(c.Leads))
		for _, l := range c.Leads {
			ids = append(ids, l.ID)
		}
		out[c.Status.ID] = ids
	}
	return out
}

// ColumnOf devolve o status id da coluna onde o lead está, ou false.
func (b Board) ColumnOf(leadID string) (string, bool) {
	for _, c := range b.Columns {
		for _, l := range c.Leads {
			if l.ID == leadID {
				return c.Status.ID, true
			}
		}
	}
	return "", false
}

func (b Board) Total() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Leads)
	}
	return n
}
