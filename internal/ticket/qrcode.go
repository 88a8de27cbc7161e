// Package ticket renders the scannable ticket issued when a booking settles.
package ticket

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/hvubui/cinebook/internal/domain"
)

const qrSize = 256

// QRTicket encodes the booking reference, its seats and the showtime start
// into a QR code, returned as a PNG data URL ready to embed in responses and
// confirmation emails. The payload is what gate staff scan, so it carries
// only what the scanner needs to verify the ticket.
func QRTicket(b *domain.Booking, showtimeStart time.Time) (string, error) {
	payload := fmt.Sprintf(
		"cinebook:%s|showtime:%d|start:%s|seats:%s",
		b.ID,
		b.ShowtimeID,
		showtimeStart.UTC().Format(time.RFC3339),
		strings.Join(b.Seats, ","),
	)

	png, err := qrcode.Encode(payload, qrcode.Medium, qrSize)
	if err != nil {
		return "", fmt.Errorf("encoding ticket QR code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
