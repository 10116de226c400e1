package contact

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Status of the contact form.
type Status int

const (
	Idle Status = iota
	Sending
	Sent
	Failed
	Invalid
)

func (s Status) String() string {
	switch s {
	case Sending:
		return "sending"
	case Sent:
		return "sent"
	case Failed:
		return "failed"
	case Invalid:
		return "invalid"
	}
	return "idle"
}

// Notice is a user-visible notification.
type Notice struct {
	Status  Status
	Message string
}

// Notifier displays notices, e.g. a toast.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (fn NotifierFunc) Notify(n Notice) { fn(n) }

// Submitter validates and delivers contact messages, one at a time.
// There is no retry; a failed submission leaves the form editable.
type Submitter struct {
	deliverer Deliverer
	notifier  Notifier
	logger    *log.Logger

	mu     sync.Mutex
	status Status
}

// NewSubmitter creates a submitter. A nil notifier drops notices, a nil logger means log.Default().
func NewSubmitter(d Deliverer, n Notifier, logger *log.Logger) *Submitter {
	if n == nil {
		n = NotifierFunc(func(Notice) {})
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Submitter{deliverer: d, notifier: n, logger: logger}
}

// Status returns the state of the last submission.
func (s *Submitter) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Busy reports whether the submit action is disabled.
func (s *Submitter) Busy() bool {
	return s.Status() == Sending
}

// Submit validates f and, when valid, delivers it exactly once. It blocks
// until the delivery resolves; a concurrent call returns ErrPending.
func (s *Submitter) Submit(ctx context.Context, f Form) error {
	s.mu.Lock()
	if s.status == Sending {
		s.mu.Unlock()
		return ErrPending
	}
	if err := f.Validate(); err != nil {
		s.status = Invalid
		s.mu.Unlock()
		s.notifier.Notify(Notice{Status: Invalid, Message: validationMessage(err)})
		return err
	}
	s.status = Sending
	s.mu.Unlock()

	s.logger.Printf("[>] contact: sending message from %s", f.ReplyTo)
	err := s.deliverer.Deliver(ctx, f)

	s.mu.Lock()
	if err != nil {
		s.status = Failed
	} else {
		s.status = Sent
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Printf("[!] contact: %v", err)
		s.notifier.Notify(Notice{Status: Failed, Message: "Failed to send message. Please try again."})
		if !errors.Is(err, ErrDelivery) {
			err = fmt.Errorf("%w: %v", ErrDelivery, err)
		}
		return err
	}
	s.logger.Printf("[*] contact: message sent")
	s.notifier.Notify(Notice{Status: Sent, Message: "Message sent successfully!"})
	return nil
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidReplyTo):
		return "Please enter a valid email address."
	case errors.Is(err, ErrMissingField):
		return "Please fill in all fields."
	}
	return err.Error()
}
