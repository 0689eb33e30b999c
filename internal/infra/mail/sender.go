package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

var newLeadTmpl = template.Must(template.ParseFS(templatesFS, "templates/new_lead.html"))

func NewEmailSender(host string, port int, user, password, from, adminTo string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		AdminTo:  adminTo,
	}
}

// RenderNewLeadAlert monta assunto e corpo HTML do alerta.
func RenderNewLeadAlert(alert NewLeadAlert) (string, string, error) {
	var body bytes.Buffer
	if err := newLeadTmpl.Execute(&body, alert); err != nil {
		return "", "", fmt.Errorf("erro ao processar template: %w", err)
	}
	subject := fmt.Sprintf("Novo lead no site: %s", alert.Name)
	return subject, body.String(), nil
}

func (s *EmailSender) SendNewLeadAlert(alert NewLeadAlert) error {
	if s.Host == "" || s.AdminTo == "" {
		return nil
	}

	subject, body, err := RenderNewLeadAlert(alert)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.AdminTo)
	if alert.Email != "" {
		m.SetHeader("Reply-To", alert.Email)
	}
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
