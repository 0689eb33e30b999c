package whatsapp

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

var nonDigits = regexp.MustCompile(`\D`)

var ErrInvalidNumber = errors.New("número de WhatsApp inválido")

// DeepLink monta o link wa.me que abre a conversa com o corretor já com o texto.
// Números com 10 ou 11 dígitos ganham o DDI 55.
func DeepLink(number, text string) (string, error) {
	digits := NormalizeNumber(number)
	if len(digits) < 10 || len(digits) > 13 {
		return "", ErrInvalidNumber
	}

	link := fmt.Sprintf("https://wa.me/%s", digits)
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link, nil
}

func NormalizeNumber(number string) string {
	digits := nonDigits.ReplaceAllString(number, "")
	if len(digits) == 10 || len(digits) == 11 {
		digits = "55" + digits
	}
	return digits
}

// Greeting é a mensagem fixa que o lead envia ao abrir o link.
func Greeting(name string) string {
	if name == "" {
		return "Olá! Vim pelo site e gostaria de mais informações sobre os imóveis."
	}
	return fmt.Sprintf("Olá! Meu nome é %s, vim pelo site e gostaria de mais informações sobre os imóveis.", name)
}
