package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("kommo não configurado")

type Client struct {
	apiToken   string
	baseURL    string
	statusID   int // etapa do pipeline do Kommo onde os leads do site entram
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL, apiToken string, pipelineStatusID int, log *zap.Logger) *Client {
	return &Client{
		apiToken:   apiToken,
		baseURL:    baseURL,
		statusID:   pipelineStatusID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

func (c *Client) CreateLead(ctx context.Context, input CreateLeadInput) (int, error) {
	if c.apiToken == "" {
		return 0, ErrNotConfigured
	}

	contactID, err := c.findOrCreateContact(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("erro ao criar/buscar contato: %w", err)
	}

	lead := map[string]any{
		"name": input.Name,
		"_embedded": map[string]any{
			"tags": []map[string]any{
				{"name": "site_imoveis"},
			},
			"contacts": []map[string]any{
				{"id": contactID},
			},
		},
	}
	if c.statusID > 0 {
		lead["status_id"] = c.statusID
	}

	var result embeddedLeads
	if err := c.do(ctx, http.MethodPost, "/leads", []map[string]any{lead}, &result); err != nil {
		return 0, fmt.Errorf("erro ao criar lead: %w", err)
	}

	if len(result.Embedded.Leads) == 0 {
		return 0, fmt.Errorf("lead não criado")
	}

	leadID := result.Embedded.Leads[0].ID
	c.log.Info("kommo: lead criado", zap.Int("crm_id", leadID), zap.String("name", input.Name))

	if input.Message != "" {
		if err := c.AddNote(ctx, leadID, input.Message); err != nil {
			c.log.Warn("kommo: falha ao anexar mensagem inicial", zap.Error(err))
		}
	}

	return leadID, nil
}

// AddNote anexa uma nota comum ao lead do Kommo.
func (c *Client) AddNote(ctx context.Context, crmLeadID int, text string) error {
	if c.apiToken == "" {
		return ErrNotConfigured
	}

	note := []map[string]any{
		{
			"entity_id": crmLeadID,
			"note_type": "common",
			"params":    map[string]any{"text": text},
		},
	}

	return c.do(ctx, http.MethodPost, "/leads/notes", note, nil)
}

func (c *Client) findOrCreateContact(ctx context.Context, input CreateLeadInput) (int, error) {
	query := input.Phone
	if query == "" {
		query = input.Email
	}

	if query != "" {
		contactID, err := c.findContact(ctx, query)
		if err == nil && contactID > 0 {
			c.log.Debug("kommo: contato existente", zap.Int("contact_id", contactID))
			return contactID, nil
		}
	}

	return c.createContact(ctx, input)
}

func (c *Client) findContact(ctx context.Context, query string) (int, error) {
	var result embeddedContacts
	if err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(query), nil, &result); err != nil {
		return 0, err
	}

	if len(result.Embedded.Contacts) > 0 {
		return result.Embedded.Contacts[0].ID, nil
	}

	return 0, fmt.Errorf("contato não encontrado")
}

func (c *Client) createContact(ctx context.Context, input CreateLeadInput) (int, error) {
	var fields []map[string]any
	if input.Phone != "" {
		fields = append(fields, map[string]any{
			"field_code": "PHONE",
			"values":     []map[string]any{{"value": input.Phone, "enum_code": "WORK"}},
		})
	}
	if input.Email != "" {
		fields = append(fields, map[string]any{
			"field_code": "EMAIL",
			"values":     []map[string]any{{"value": input.Email, "enum_code": "WORK"}},
		})
	}

	contact := map[string]any{"name": input.Name}
	if len(fields) > 0 {
		contact["custom_fields_values"] = fields
	}

	var result embeddedContacts
	if err := c.do(ctx, http.MethodPost, "/contacts", []map[string]any{contact}, &result); err != nil {
		return 0, fmt.Errorf("erro ao criar contato: %w", err)
	}

	if len(result.Embedded.Contacts) == 0 {
		return 0, fmt.Errorf("erro ao obter ID do contato criado")
	}

	return result.Embedded.Contacts[0].ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNoContent {
		// busca sem resultado no Kommo volta 204
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d - %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}
