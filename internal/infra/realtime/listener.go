// Package realtime escuta o canal lead_changes do Postgres (LISTEN/NOTIFY)
// e entrega cada mudança como entity.LeadChange.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

const Channel = "lead_changes"

// LeadFinder completa o lead quando o payload do NOTIFY vem enxuto.
type LeadFinder interface {
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
}

type Listener struct {
	DSN          string
	Leads        LeadFinder // opcional
	OnReconnect  func()     // o que se perdeu durante a queda só volta num refresh
	Log          *zap.Logger
	PingInterval time.Duration
}

func NewListener(dsn string, leads LeadFinder, log *zap.Logger) *Listener {
	return &Listener{
		DSN:          dsn,
		Leads:        leads,
		Log:          log,
		PingInterval: 90 * time.Second,
	}
}

// Run bloqueia até o ctx acabar.
func (l *Listener) Run(ctx context.Context, handle func(entity.LeadChange)) error {
	listener := pq.NewListener(l.DSN, time.Second, time.Minute, l.logEvent)
	defer listener.Close()

	if err := listener.Listen(Channel); err != nil {
		return fmt.Errorf("erro ao escutar %s: %w", Channel, err)
	}
	l.Log.Info("escutando mudanças de leads", zap.String("channel", Channel))

	ping := time.NewTicker(l.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Log.Info("listener realtime encerrado")
			return nil

		case n := <-listener.Notify:
			// nil = conexão refeita
			if n == nil {
				if l.OnReconnect != nil {
					l.OnReconnect()
				}
				continue
			}
			change, err := DecodeChange([]byte(n.Extra))
			if err != nil {
				l.Log.Warn("payload de mudança inválido", zap.Error(err))
				continue
			}
			handle(l.complete(ctx, change))

		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					l.Log.Warn("ping do listener falhou", zap.Error(err))
				}
			}()
		}
	}
}

// complete busca o lead inteiro (com message) em INSERT/UPDATE.
func (l *Listener) complete(ctx context.Context, change entity.LeadChange) entity.LeadChange {
	if change.Op == entity.ChangeDelete {
		return change
	}
	if l.Leads == nil {
		change.Partial = true
		return change
	}
	lead, err := l.Leads.FindByID(ctx, change.Lead.ID)
	switch {
	case err == nil:
		change.Lead = *lead
	case errors.Is(err, entity.ErrLeadNotFound):
		// apagado logo depois; o DELETE vem na sequência
		change.Partial = true
	default:
		l.Log.Debug("não deu pra completar o lead, segue com o payload", zap.Error(err))
		change.Partial = true
	}
	return change
}

func (l *Listener) logEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		l.Log.Debug("listener conectado")
	case pq.ListenerEventDisconnected:
		l.Log.Warn("listener desconectado", zap.Error(err))
	case pq.ListenerEventReconnected:
		l.Log.Info("listener reconectado")
	case pq.ListenerEventConnectionAttemptFailed:
		l.Log.Warn("falha ao reconectar listener", zap.Error(err))
	}
}

// DecodeChange lê o JSON montado pelo trigger notify_lead_change.
func DecodeChange(payload []byte) (entity.LeadChange, error) {
	var change entity.LeadChange
	if err := json.Unmarshal(payload, &change); err != nil {
		return entity.LeadChange{}, err
	}

	switch change.Op {
	case entity.ChangeInsert, entity.ChangeUpdate, entity.ChangeDelete:
	default:
		return entity.LeadChange{}, fmt.Errorf("operação desconhecida: %q", change.Op)
	}
	if change.Lead.ID == "" {
		return entity.LeadChange{}, errors.New("mudança sem id de lead")
	}
	return change, nil
}
