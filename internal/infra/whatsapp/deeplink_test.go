package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepLink(t *testing.T) {
	link, err := DeepLink("(11) 98888-7777", "Olá! Tudo bem?")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/5511988887777?text=Ol%C3%A1%21+Tudo+bem%3F", link)
}

func TestDeepLinkKeepsCountryCode(t *testing.T) {
	link, err := DeepLink("+55 21 3333-4444", "")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/552133334444", link)
}

func TestDeepLinkRejectsShortNumber(t *testing.T) {
	_, err := DeepLink("1234", "oi")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestGreeting(t *testing.T) {
	assert.Contains(t, Greeting("Ana"), "Meu nome é Ana")
	assert.NotContains(t, Greeting(""), "Meu nome")
}
