package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/integration/kommo"
	"github.com/xavierca1/ligue-imoveis/internal/infra/mail"
	"github.com/xavierca1/ligue-imoveis/internal/infra/metrics"
)

// CRMClient é o contrato da integração com o CRM externo (Kommo).
type CRMClient interface {
	CreateLead(ctx context.Context, input kommo.CreateLeadInput) (int, error)
	AddNote(ctx context.Context, crmLeadID int, text string) error
}

type LeadLinker interface {
	Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error)
}

type LeadAlerter interface {
	SendNewLeadAlert(alert mail.NewLeadAlert) error
}

type Worker struct {
	Channel *amqp.Channel
	CRM     CRMClient
	Leads   LeadLinker
	Alerter LeadAlerter
	Log     *zap.Logger

	Timeout time.Duration
}

func NewWorker(ch *amqp.Channel, crm CRMClient, leads LeadLinker, alerter LeadAlerter, log *zap.Logger) *Worker {
	return &Worker{
		Channel: ch,
		CRM:     crm,
		Leads:   leads,
		Alerter: alerter,
		Log:     log,
		Timeout: 30 * time.Second,
	}
}

// Start consome a fila até o ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Log.Info("worker aguardando na fila", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal de consumo fechado")
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event LeadEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		// Mensagem podre: rejeita sem requeue pra não travar a fila
		w.Log.Error("evento inválido", zap.Error(err))
		d.Nack(false, false)
		return
	}

	msgCtx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	if err := w.processMessage(msgCtx, event); err != nil {
		w.Log.Error("falha ao processar evento",
			zap.String("type", event.Type),
			zap.String("lead_id", event.LeadID),
			zap.Error(err),
		)
		d.Nack(false, false)
		return
	}

	d.Ack(false)
}

func (w *Worker) processMessage(ctx context.Context, event LeadEvent) error {
	log := w.Log.With(zap.String("type", event.Type), zap.String("lead_id", event.LeadID))

	switch event.Type {
	case EventLeadCreated:
		return w.syncNewLead(ctx, event, log)

	case EventStatusChange:
		if event.CRMID == 0 {
			log.Debug("lead ainda não espelhado no CRM, ignorando mudança de etapa")
			return nil
		}
		note := fmt.Sprintf("Etapa alterada: %s → %s", event.FromStatusName, event.StatusName)
		if err := w.CRM.AddNote(ctx, event.CRMID, note); err != nil {
			metrics.RecordIntegrationError("kommo")
			return fmt.Errorf("kommo: %w", err)
		}
		return nil

	case EventLeadDeleted:
		if event.CRMID == 0 {
			return nil
		}
		if err := w.CRM.AddNote(ctx, event.CRMID, "Lead removido do painel do site"); err != nil {
			metrics.RecordIntegrationError("kommo")
			return fmt.Errorf("kommo: %w", err)
		}
		return nil

	default:
		// ACK pra tirar da fila, não sabemos tratar
		log.Warn("tipo de evento sem handler")
		return nil
	}
}

func (w *Worker) syncNewLead(ctx context.Context, event LeadEvent, log *zap.Logger) error {
	if w.Alerter != nil {
		alert := mail.NewLeadAlert{
			Name:       event.Name,
			Email:      event.Email,
			Phone:      event.Phone,
			Message:    event.Message,
			StatusName: event.StatusName,
		}
		if err := w.Alerter.SendNewLeadAlert(alert); err != nil {
			// email é best-effort; não derruba o sync do CRM
			metrics.RecordIntegrationError("smtp")
			log.Warn("falha ao enviar alerta de novo lead", zap.Error(err))
		}
	}

	if event.CRMID != 0 {
		return nil
	}

	crmID, err := w.CRM.CreateLead(ctx, kommo.CreateLeadInput{
		Name:    event.Name,
		Phone:   event.Phone,
		Email:   event.Email,
		Message: event.Message,
	})
	if err != nil {
		metrics.RecordIntegrationError("kommo")
		return fmt.Errorf("kommo: %w", err)
	}

	if _, err := w.Leads.Update(ctx, event.LeadID, entity.LeadPatch{CRMID: &crmID}); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			log.Warn("lead apagado antes do vínculo com o CRM", zap.Int("crm_id", crmID))
			return nil
		}
		return fmt.Errorf("erro ao vincular crm_id %d: %w", crmID, err)
	}

	log.Info("lead espelhado no CRM", zap.Int("crm_id", crmID))
	return nil
}
