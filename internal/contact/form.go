package contact

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var (
	ErrMissingField   = errors.New("required field is empty")
	ErrInvalidReplyTo = errors.New("reply address is not a valid email")
	ErrPending        = errors.New("a message is already being sent")
	ErrDelivery       = errors.New("message delivery failed")
)

// DefaultRecipient is used when the site does not name one.
const DefaultRecipient = "your-email@example.com"

// Form is a contact message as entered by the visitor.
type Form struct {
	FromName string `json:"from_name" yaml:"from_name"`
	ReplyTo  string `json:"reply_to" yaml:"reply_to"`
	Subject  string `json:"subject" yaml:"subject"`
	Message  string `json:"message" yaml:"message"`
	ToEmail  string `json:"to_email" yaml:"to_email"`
}

// NewForm returns an empty form addressed to recipient.
func NewForm(recipient string) Form {
	if recipient == "" {
		recipient = DefaultRecipient
	}
	return Form{ToEmail: recipient}
}

// Validate checks required fields and the reply address.
func (f Form) Validate() error {
	for _, field := range []struct{ name, value string }{
		{"from_name", f.FromName},
		{"reply_to", f.ReplyTo},
		{"subject", f.Subject},
		{"message", f.Message},
		{"to_email", f.ToEmail},
	} {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s: %w", field.name, ErrMissingField)
		}
	}
	addr, err := mail.ParseAddress(f.ReplyTo)
	if err != nil || addr.Name != "" || !strings.Contains(addr.Address, ".") {
		return fmt.Errorf("%q: %w", f.ReplyTo, ErrInvalidReplyTo)
	}
	return nil
}

// Reset clears what the visitor typed and keeps the recipient.
func (f Form) Reset() Form {
	return NewForm(f.ToEmail)
}

// Params are the template parameters sent to the relay.
func (f Form) Params() map[string]string {
	return map[string]string{
		"from_name": f.FromName,
		"reply_to":  f.ReplyTo,
		"subject":   f.Subject,
		"message":   f.Message,
		"to_email":  f.ToEmail,
	}
}
