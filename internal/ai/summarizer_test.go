package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

func TestClassifyInterest(t *testing.T) {
	cases := []struct {
		summary string
		want    domain.ChatInterest
	}{
		{"El cliente pidió precios y quedó en confirmar. Interesado", domain.InterestInterested},
		{"El cliente dijo que no le interesa el producto. No interesado", domain.InterestNotInterested},
		{"La conversación quedó abierta sin definición. Indeciso", domain.InterestUndecided},
		{"NO INTERESADO", domain.InterestNotInterested},
		{"sin veredicto reconocible", domain.InterestUndecided},
		{"", domain.InterestUndecided},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyInterest(tc.summary), "summary: %q", tc.summary)
	}
}

func TestClassifyInterestNoInteresadoWinsOverSubstring(t *testing.T) {
	// "no interesado" contains "interesado"; the negative must win.
	assert.Equal(t, domain.InterestNotInterested, ClassifyInterest("Cliente no interesado en la oferta"))
}
