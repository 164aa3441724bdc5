// Package notify dispatches transition notifications to candidates and
// supervisors. Dispatch is fire-and-forget: messages are queued after the
// state-changing write commits, delivery failures are logged and never
// retried, and a failure can never undo or block a committed transition.
package notify

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/surgitrack/surgitrack/internal/pkg/email"
)

// Kind identifies a notification template.
type Kind string

const (
	KindSubmissionReceived  Kind = "submission-received"
	KindSubmissionDecided   Kind = "submission-decided"
	KindClinicalSubReceived Kind = "clinicalsub-received"
	KindClinicalSubDecided  Kind = "clinicalsub-decided"
)

// Message is one queued notification.
type Message struct {
	ID            string
	Recipient     string
	RecipientName string
	Kind          Kind
	Data          map[string]string
}

// NewMessage builds a Message with a fresh id.
func NewMessage(recipient, recipientName string, kind Kind, data map[string]string) Message {
	return Message{
		ID:            uuid.New().String(),
		Recipient:     recipient,
		RecipientName: recipientName,
		Kind:          kind,
		Data:          data,
	}
}

// Notifier is the outbound notification boundary consumed by services.
type Notifier interface {
	Dispatch(msg Message)
}

// AsyncNotifier delivers messages through a Mailer on a worker goroutine fed
// by a buffered channel. A full queue drops the message with a log line
// rather than blocking the caller.
type AsyncNotifier struct {
	mailer email.Mailer
	queue  chan Message
	logger zerolog.Logger

	// mu serializes sends against Close so a late Dispatch can never hit
	// the closed queue channel.
	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewAsyncNotifier creates an AsyncNotifier and starts its worker.
func NewAsyncNotifier(mailer email.Mailer, logger zerolog.Logger, buffer int) *AsyncNotifier {
	if buffer <= 0 {
		buffer = 64
	}
	n := &AsyncNotifier{
		mailer: mailer,
		queue:  make(chan Message, buffer),
		logger: logger,
		done:   make(chan struct{}),
	}
	go n.run()
	return n
}

// Dispatch queues a message for delivery. Never blocks.
func (n *AsyncNotifier) Dispatch(msg Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		n.logger.Warn().
			Str("messageId", msg.ID).
			Str("kind", string(msg.Kind)).
			Msg("Notifier closed, message dropped")
		return
	}
	select {
	case n.queue <- msg:
	default:
		n.logger.Warn().
			Str("messageId", msg.ID).
			Str("kind", string(msg.Kind)).
			Msg("Notification queue full, message dropped")
	}
}

// Close stops accepting messages and waits for the worker to drain the queue.
func (n *AsyncNotifier) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	<-n.done
}

func (n *AsyncNotifier) run() {
	defer close(n.done)
	for msg := range n.queue {
		subject, body := render(msg)
		if err := n.mailer.Send(msg.Recipient, subject, body); err != nil {
			n.logger.Error().Err(err).
				Str("messageId", msg.ID).
				Str("kind", string(msg.Kind)).
				Str("recipient", msg.Recipient).
				Msg("Notification delivery failed")
			continue
		}
		n.logger.Debug().
			Str("messageId", msg.ID).
			Str("kind", string(msg.Kind)).
			Msg("Notification delivered")
	}
}

func render(msg Message) (subject, body string) {
	name := msg.RecipientName
	if name == "" {
		name = "there"
	}

	switch msg.Kind {
	case KindSubmissionReceived:
		subject = "New submission awaiting your review"
		body = fmt.Sprintf(`
			<html><body>
			<p>Hello %s,</p>
			<p>A new procedure submission from %s is awaiting your review.</p>
			<p>Best regards,<br>SurgiTrack</p>
			</body></html>`, name, msg.Data["candidateName"])
	case KindSubmissionDecided:
		subject = fmt.Sprintf("Your submission has been %s", msg.Data["decision"])
		body = fmt.Sprintf(`
			<html><body>
			<p>Hello %s,</p>
			<p>Your procedure submission has been <strong>%s</strong>.</p>
			<p>Reviewer comment: %s</p>
			<p>Best regards,<br>SurgiTrack</p>
			</body></html>`, name, msg.Data["decision"], msg.Data["review"])
	case KindClinicalSubReceived:
		subject = "New clinical activity log awaiting your review"
		body = fmt.Sprintf(`
			<html><body>
			<p>Hello %s,</p>
			<p>A new clinical activity log from %s is awaiting your review.</p>
			<p>Best regards,<br>SurgiTrack</p>
			</body></html>`, name, msg.Data["candidateName"])
	case KindClinicalSubDecided:
		subject = fmt.Sprintf("Your clinical activity log has been %s", msg.Data["decision"])
		body = fmt.Sprintf(`
			<html><body>
			<p>Hello %s,</p>
			<p>Your clinical activity log has been <strong>%s</strong>.</p>
			<p>Reviewer comment: %s</p>
			<p>Best regards,<br>SurgiTrack</p>
			</body></html>`, name, msg.Data["decision"], msg.Data["review"])
	default:
		subject = "SurgiTrack notification"
		body = fmt.Sprintf("<html><body><p>Hello %s,</p></body></html>", name)
	}
	return subject, body
}
