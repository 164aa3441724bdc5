package notify

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type captureMailer struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	block chan struct{}
}

func (m *captureMailer) Send(toEmail, subject, htmlBody string) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, toEmail)
	return nil
}

func (m *captureMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}

func TestAsyncNotifierDeliversAndDrainsOnClose(t *testing.T) {
	mailer := &captureMailer{}
	n := NewAsyncNotifier(mailer, zerolog.Nop(), 8)

	n.Dispatch(NewMessage("alice@hospital.org", "Alice", KindSubmissionReceived, map[string]string{"candidateName": "Alice Reed"}))
	n.Dispatch(NewMessage("brian@hospital.org", "Brian", KindSubmissionDecided, map[string]string{"decision": "approved"}))
	n.Close()

	got := mailer.recipients()
	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries after Close, got %d", len(got))
	}
	if got[0] != "alice@hospital.org" || got[1] != "brian@hospital.org" {
		t.Errorf("unexpected delivery order: %v", got)
	}
}

func TestAsyncNotifierDispatchAfterCloseIsSafe(t *testing.T) {
	mailer := &captureMailer{}
	n := NewAsyncNotifier(mailer, zerolog.Nop(), 8)

	n.Dispatch(NewMessage("alice@hospital.org", "Alice", KindSubmissionReceived, map[string]string{"candidateName": "Alice Reed"}))
	n.Close()

	// A handler that outlives shutdown may still call Dispatch.
	n.Dispatch(NewMessage("brian@hospital.org", "Brian", KindSubmissionDecided, map[string]string{"decision": "approved"}))
	n.Close()

	got := mailer.recipients()
	if len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
}

func TestAsyncNotifierSurvivesDeliveryFailure(t *testing.T) {
	mailer := &captureMailer{fail: true}
	n := NewAsyncNotifier(mailer, zerolog.Nop(), 8)

	n.Dispatch(NewMessage("alice@hospital.org", "Alice", KindClinicalSubReceived, nil))
	n.Close()

	// Close returning at all proves the worker did not die on the error.
	if len(mailer.recipients()) != 0 {
		t.Error("failed sends should not be recorded")
	}
}

func TestAsyncNotifierDropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	mailer := &captureMailer{block: block}
	n := NewAsyncNotifier(mailer, zerolog.Nop(), 1)

	// First message occupies the worker, second fills the buffer, the rest
	// must be dropped without blocking.
	for i := 0; i < 5; i++ {
		n.Dispatch(NewMessage("alice@hospital.org", "Alice", KindSubmissionReceived, nil))
	}
	close(block)
	n.Close()

	if got := len(mailer.recipients()); got > 2 {
		t.Errorf("expected at most 2 deliveries, got %d", got)
	}
}

func TestRenderSubjectsPerKind(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{KindSubmissionReceived, "review"},
		{KindSubmissionDecided, "approved"},
		{KindClinicalSubReceived, "review"},
		{KindClinicalSubDecided, "approved"},
	}
	for _, tc := range cases {
		subject, body := render(Message{Kind: tc.kind, RecipientName: "Alice", Data: map[string]string{"decision": "approved", "candidateName": "Alice Reed"}})
		if subject == "" {
			t.Errorf("kind %q produced an empty subject", tc.kind)
		}
		if !strings.Contains(strings.ToLower(subject), tc.want) {
			t.Errorf("kind %q subject %q should mention %q", tc.kind, subject, tc.want)
		}
		if !strings.Contains(body, "Alice") {
			t.Errorf("kind %q body should address the recipient", tc.kind)
		}
	}
}
