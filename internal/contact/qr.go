// Package contact renders a network's contact details as a vCard QR
// code suitable for email delivery.
package contact

import (
	"fmt"
	"strings"

	"github.com/electrade/network-api/internal/domain"
	qrcode "github.com/skip2/go-qrcode"
)

// qrSize is the rendered PNG edge length in pixels
const qrSize = 256

// BuildVCard serializes the network's contact details as a vCard 3.0
// record. Empty address components stay as empty fields, keeping the
// ADR component count intact.
func BuildVCard(network *domain.Network) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\r\n")
	b.WriteString("VERSION:3.0\r\n")
	fmt.Fprintf(&b, "FN:%s\r\n", escape(network.Name))
	fmt.Fprintf(&b, "ORG:%s\r\n", escape(network.Name))
	fmt.Fprintf(&b, "EMAIL:%s\r\n", escape(network.Email))
	// ADR: PO box, extended, street, locality, region, postal code, country
	street := strings.TrimSpace(network.Street + " " + network.HouseNumber)
	fmt.Fprintf(&b, "ADR;TYPE=WORK:;;%s;%s;;;%s\r\n",
		escape(street), escape(network.City), escape(network.Country))
	b.WriteString("END:VCARD\r\n")
	return b.String()
}

// RenderQR encodes the network's vCard as a PNG QR code
func RenderQR(network *domain.Network) ([]byte, error) {
	png, err := qrcode.Encode(BuildVCard(network), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode contact QR: %w", err)
	}
	return png, nil
}

// escape applies vCard text escaping for commas, semicolons, backslashes
// and newlines.
func escape(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
		"\r", "",
	)
	return r.Replace(s)
}
