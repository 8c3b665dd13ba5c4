package contact_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/electrade/network-api/internal/contact"
	"github.com/electrade/network-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNetwork() *domain.Network {
	return &domain.Network{
		Name:        "Nordic Trade",
		Email:       "contact@nordictrade.example",
		Country:     "Norway",
		City:        "Oslo",
		Street:      "Main Street",
		HouseNumber: "12b",
	}
}

func TestBuildVCard(t *testing.T) {
	card := contact.BuildVCard(sampleNetwork())

	assert.True(t, strings.HasPrefix(card, "BEGIN:VCARD\r\n"))
	assert.True(t, strings.HasSuffix(card, "END:VCARD\r\n"))
	assert.Contains(t, card, "VERSION:3.0\r\n")
	assert.Contains(t, card, "FN:Nordic Trade\r\n")
	assert.Contains(t, card, "EMAIL:contact@nordictrade.example\r\n")
	assert.Contains(t, card, "ADR;TYPE=WORK:;;Main Street 12b;Oslo;;;Norway\r\n")
}

func TestBuildVCard_Escaping(t *testing.T) {
	network := sampleNetwork()
	network.Name = "Trade; House, Ltd"

	card := contact.BuildVCard(network)
	assert.Contains(t, card, "FN:Trade\\; House\\, Ltd\r\n")
}

func TestRenderQR(t *testing.T) {
	png, err := contact.RenderQR(sampleNetwork())
	require.NoError(t, err)

	// PNG magic bytes
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
