package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/domain"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/store"
)

type fakeContacts struct {
	mu       sync.Mutex
	list     []domain.Contact
	disabled []string
}

func (f *fakeContacts) List() []domain.Contact {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Contact, len(f.list))
	copy(out, f.list)
	return out
}

func (f *fakeContacts) SetEnabled(id string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.list {
		if f.list[i].ID == id {
			f.list[i].Enabled = enabled
			if !enabled {
				f.disabled = append(f.disabled, id)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeGenerator struct{ text string }

func (f *fakeGenerator) Generate(_ context.Context, name string) string {
	return fmt.Sprintf("%s: %s", name, f.text)
}

type fakeSender struct {
	mu    sync.Mutex
	errs  []error
	calls []string // phone numbers, in order
}

func (f *fakeSender) Send(_ context.Context, phone, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.calls)
	f.calls = append(f.calls, phone)
	if i < len(f.errs) {
		return f.errs[i]
	}
	return nil
}

type fakeHistory struct {
	mu   sync.Mutex
	recs []store.SendRecord
}

func (f *fakeHistory) RecordSend(_ context.Context, rec store.SendRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, rec)
	return nil
}

func mondayContact() domain.Contact {
	return domain.Contact{
		ID:        "contact_1",
		Phone:     "+15550001111",
		Recipient: "Oksana",
		Hour:      8,
		Minute:    0,
		Weekdays:  []string{"monday"},
		Enabled:   true,
	}
}

// 2025-05-05 was a Monday.
func monday(hh, mm, ss int) time.Time {
	return time.Date(2025, time.May, 5, hh, mm, ss, 0, time.UTC)
}

func newTestScheduler(contacts *fakeContacts, sender *fakeSender) (*Scheduler, *fakeHistory) {
	history := &fakeHistory{}
	s := New(contacts, &fakeGenerator{text: "good morning"}, sender, history, zap.NewNop(), time.Minute, nil)
	return s, history
}

func TestTick_FiresOncePerMinute(t *testing.T) {
	contacts := &fakeContacts{list: []domain.Contact{mondayContact()}}
	sender := &fakeSender{}
	s, history := newTestScheduler(contacts, sender)
	ctx := context.Background()

	// Poll interval shorter than a minute: three ticks inside 08:00.
	s.tick(ctx, monday(8, 0, 0))
	s.tick(ctx, monday(8, 0, 20))
	s.tick(ctx, monday(8, 0, 59))
	if len(sender.calls) != 1 {
		t.Fatalf("want exactly 1 send in the scheduled minute, got %d", len(sender.calls))
	}

	// 08:01 with lastFired already set to 08:00 triggers none.
	s.tick(ctx, monday(8, 1, 0))
	if len(sender.calls) != 1 {
		t.Fatalf("no send expected at 08:01, got %d", len(sender.calls))
	}

	if len(history.recs) != 1 || history.recs[0].Status != store.StatusSent {
		t.Fatalf("want one sent history record, got %+v", history.recs)
	}
}

func TestTick_SkipsNonMatchingTimes(t *testing.T) {
	contacts := &fakeContacts{list: []domain.Contact{mondayContact()}}
	sender := &fakeSender{}
	s, _ := newTestScheduler(contacts, sender)
	ctx := context.Background()

	s.tick(ctx, monday(7, 59, 0))
	s.tick(ctx, time.Date(2025, time.May, 6, 8, 0, 0, 0, time.UTC)) // Tuesday 08:00
	if len(sender.calls) != 0 {
		t.Fatalf("no sends expected, got %d", len(sender.calls))
	}
}

func TestTick_DisabledContactNeverFires(t *testing.T) {
	c := mondayContact()
	c.Enabled = false
	contacts := &fakeContacts{list: []domain.Contact{c}}
	sender := &fakeSender{}
	s, _ := newTestScheduler(contacts, sender)

	s.tick(context.Background(), monday(8, 0, 0))
	if len(sender.calls) != 0 {
		t.Fatalf("disabled contact must not fire")
	}
}

func TestTick_TransientFailureKeepsContactEnabled(t *testing.T) {
	contacts := &fakeContacts{list: []domain.Contact{mondayContact()}}
	sender := &fakeSender{errs: []error{fmt.Errorf("%w: socket closed", domain.ErrTransient)}}
	s, history := newTestScheduler(contacts, sender)

	s.tick(context.Background(), monday(8, 0, 0))
	if len(contacts.disabled) != 0 {
		t.Fatalf("transient failure must not disable the contact")
	}
	if len(history.recs) != 1 || history.recs[0].Status != store.StatusFailed {
		t.Fatalf("want one failed history record, got %+v", history.recs)
	}

	// Still eligible next Monday at the same minute.
	s.tick(context.Background(), monday(8, 0, 0).AddDate(0, 0, 7))
	if len(sender.calls) != 2 {
		t.Fatalf("want retry on next scheduled minute, got %d calls", len(sender.calls))
	}
}

func TestTick_FatalFailureDisablesContactAndNotifies(t *testing.T) {
	contacts := &fakeContacts{list: []domain.Contact{mondayContact()}}
	sender := &fakeSender{errs: []error{fmt.Errorf("%w: not logged in", domain.ErrFatal)}}
	history := &fakeHistory{}

	var notified []string
	notify := func(c domain.Contact, err error) { notified = append(notified, c.ID) }
	s := New(contacts, &fakeGenerator{text: "good morning"}, sender, history, zap.NewNop(), time.Minute, notify)

	s.tick(context.Background(), monday(8, 0, 0))
	if len(contacts.disabled) != 1 || contacts.disabled[0] != "contact_1" {
		t.Fatalf("fatal failure must disable the contact, got %v", contacts.disabled)
	}
	if len(notified) != 1 || notified[0] != "contact_1" {
		t.Fatalf("user must be notified, got %v", notified)
	}
}

func TestTick_SendsGeneratedText(t *testing.T) {
	contacts := &fakeContacts{list: []domain.Contact{mondayContact()}}
	sender := &fakeSender{}
	s, history := newTestScheduler(contacts, sender)

	s.tick(context.Background(), monday(8, 0, 0))
	if len(history.recs) != 1 {
		t.Fatalf("want one history record")
	}
	if history.recs[0].Text != "Oksana: good morning" {
		t.Fatalf("sender must receive the generated text, got %q", history.recs[0].Text)
	}
}

func TestGate_RestoresPriorState(t *testing.T) {
	s, _ := newTestScheduler(&fakeContacts{}, &fakeSender{})

	// Running → Paused during the mutation → Running afterwards.
	s.state = StateRunning
	resume := s.Gate().Pause()
	if s.State() != StatePaused {
		t.Fatalf("gate must pause a running scheduler")
	}
	resume()
	if s.State() != StateRunning {
		t.Fatalf("resume must restore running state")
	}

	// Already paused stays paused.
	s.state = StatePaused
	resume = s.Gate().Pause()
	resume()
	if s.State() != StatePaused {
		t.Fatalf("resume must keep a paused scheduler paused")
	}

	// Stopped stays stopped.
	s.state = StateStopped
	resume = s.Gate().Pause()
	resume()
	if s.State() != StateStopped {
		t.Fatalf("gate must not start a stopped scheduler")
	}
}

func TestPauseResume(t *testing.T) {
	s, _ := newTestScheduler(&fakeContacts{}, &fakeSender{})
	s.state = StateRunning

	s.Pause()
	if s.State() != StatePaused {
		t.Fatalf("want paused")
	}
	s.Resume()
	if s.State() != StateRunning {
		t.Fatalf("want running")
	}

	// Resume on a stopped scheduler is a no-op.
	s.state = StateStopped
	s.Resume()
	if s.State() != StateStopped {
		t.Fatalf("resume must not start a stopped scheduler")
	}
}

func TestStartStop_ClearsLastFired(t *testing.T) {
	contacts := &fakeContacts{list: []domain.Contact{mondayContact()}}
	sender := &fakeSender{}
	history := &fakeHistory{}
	// Long interval: the loop never ticks during the test.
	s := New(contacts, &fakeGenerator{text: "good morning"}, sender, history, zap.NewNop(), time.Hour, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("second start must fail")
	}
	if s.State() != StateRunning {
		t.Fatalf("want running after start")
	}

	s.mu.Lock()
	s.lastFired["contact_1"] = monday(8, 0, 0)
	s.mu.Unlock()

	s.Stop()
	if s.State() != StateStopped {
		t.Fatalf("want stopped")
	}
	s.mu.Lock()
	remaining := len(s.lastFired)
	s.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("stop must clear last-fired state")
	}

	// Restart works and contacts are eligible again.
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	s.tick(context.Background(), monday(8, 0, 0))
	if len(sender.calls) != 1 {
		t.Fatalf("contact must be eligible after restart")
	}
	s.Stop()
}
