package engine

import (
	"context"
	"log"
	"sync"

	"github.com/ivlev/folio/internal/card"
	"github.com/ivlev/folio/internal/config"
	"github.com/ivlev/folio/internal/contact"
	"github.com/ivlev/folio/internal/timeline"
)

// FormFields are the editable contact fields in tab order.
var FormFields = []string{"from_name", "reply_to", "subject", "message"}

// Modal is the contact dialog: an overlay, the sliding content box and the form.
type Modal struct {
	Overlay *card.Element
	Content *card.Element

	spec      config.Contact
	submitter *contact.Submitter
	reduced   bool
	anim      *timeline.Engine

	mu    sync.Mutex
	open  bool
	form  contact.Form
	field int
	tls   []*timeline.Timeline
	qr    [][]bool
}

func newModal(spec config.Contact, sub *contact.Submitter, reduced bool, logger *log.Logger) *Modal {
	return &Modal{
		Overlay:   card.NewElement(),
		Content:   card.NewElement(),
		spec:      spec,
		submitter: sub,
		reduced:   reduced,
		anim:      timeline.NewEngine(logger),
		form:      contact.NewForm(spec.ToEmail),
	}
}

// Open shows the dialog: overlay fades in over 0.3s, content rises 50px over 0.5s.
func (m *Modal) Open() {
	m.mu.Lock()
	if m.open {
		m.mu.Unlock()
		return
	}
	m.open = true
	m.mu.Unlock()

	tls := []*timeline.Timeline{
		m.anim.Create(timeline.Step{
			Target:   m.Overlay,
			From:     timeline.PropertySet{"opacity": 0},
			To:       timeline.PropertySet{"opacity": 1},
			Duration: 0.3,
			Easing:   timeline.EaseOutCubic,
		}),
		m.anim.Create(timeline.Step{
			Target:   m.Content,
			From:     timeline.PropertySet{"y": 50, "opacity": 0},
			To:       timeline.PropertySet{"y": 0, "opacity": 1},
			Duration: 0.5,
			Easing:   timeline.EaseOutQuart,
		}),
	}
	for _, tl := range tls {
		if m.reduced {
			tl.Seek(1)
		} else {
			tl.Play(timeline.Forward)
		}
	}

	m.mu.Lock()
	m.tls = tls
	m.mu.Unlock()
}

// Close hides the dialog at once. The form keeps its contents.
func (m *Modal) Close() {
	m.mu.Lock()
	tls := m.tls
	m.tls = nil
	m.open = false
	m.mu.Unlock()

	for _, tl := range tls {
		tl.Destroy()
	}
	m.Overlay.Set("opacity", 0)
	m.Content.Set("opacity", 0)
}

// IsOpen reports whether the dialog is shown.
func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Form returns a copy of the form.
func (m *Modal) Form() contact.Form {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

// Field returns the index of the field being edited.
func (m *Modal) Field() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.field
}

// NextField moves the cursor by delta fields, wrapping around.
func (m *Modal) NextField(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(FormFields)
	m.field = ((m.field+delta)%n + n) % n
}

func (m *Modal) value(i int) *string {
	switch FormFields[i] {
	case "from_name":
		return &m.form.FromName
	case "reply_to":
		return &m.form.ReplyTo
	case "subject":
		return &m.form.Subject
	}
	return &m.form.Message
}

// Type appends text to the current field. Ignored while a message is sending.
func (m *Modal) Type(text string) {
	if m.submitter.Busy() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.value(m.field)
	*v += text
}

// Backspace removes the last rune of the current field.
func (m *Modal) Backspace() {
	if m.submitter.Busy() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.value(m.field)
	if r := []rune(*v); len(r) > 0 {
		*v = string(r[:len(r)-1])
	}
}

// Busy reports whether the submit action is disabled.
func (m *Modal) Busy() bool { return m.submitter.Busy() }

// Status is the state of the last submission.
func (m *Modal) Status() contact.Status { return m.submitter.Status() }

// Submit validates and sends the form. It blocks until delivery resolves.
func (m *Modal) Submit(ctx context.Context) error {
	return m.submitter.Submit(ctx, m.Form())
}

func (m *Modal) resetForm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = m.form.Reset()
	m.field = 0
}

// QR returns the mailto QR matrix of the contact address, built on first use.
func (m *Modal) QR() [][]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.qr == nil && m.spec.Email != "" {
		bits, err := contact.QRCode(contact.Mailto(m.spec.Email, ""))
		if err != nil {
			return nil
		}
		m.qr = bits
	}
	return m.qr
}

// Email is the address shown next to the form.
func (m *Modal) Email() string { return m.spec.Email }
