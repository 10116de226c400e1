package contact

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

// Mailto builds a mailto link with an optional subject.
func Mailto(email, subject string) string {
	u := url.URL{Scheme: "mailto", Opaque: email}
	if subject != "" {
		u.RawQuery = url.Values{"subject": {subject}}.Encode()
	}
	return u.String()
}

// QRCode returns the module matrix for content, true meaning a dark module.
// The quiet zone is left to the caller.
func QRCode(content string) ([][]bool, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}
