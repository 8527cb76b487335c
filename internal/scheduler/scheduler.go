package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/delivery"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/domain"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/store"
)

// State of the scheduler loop: Stopped → Running ⇄ Paused → Stopped.
type State int32

const (
	StateStopped State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// ContactSource provides the contact list and the auto-disable hook.
type ContactSource interface {
	List() []domain.Contact
	SetEnabled(id string, enabled bool) error
}

// Generator produces the message text for a recipient. It never fails; on
// generation trouble it returns the fallback greeting.
type Generator interface {
	Generate(ctx context.Context, recipientName string) string
}

// History records delivery attempts.
type History interface {
	RecordSend(ctx context.Context, rec store.SendRecord) error
}

// Notifier is invoked when a contact is auto-disabled after a fatal
// delivery failure.
type Notifier func(c domain.Contact, err error)

// Scheduler polls the contact list and dispatches due greetings.
type Scheduler struct {
	contacts ContactSource
	gen      Generator
	sender   delivery.Sender
	history  History
	log      *zap.Logger
	notify   Notifier

	interval  time.Duration
	opTimeout time.Duration
	now       func() time.Time

	mu        sync.Mutex
	state     State
	lastFired map[string]time.Time // contact ID -> minute of last attempt
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a Scheduler. notify may be nil; fatal failures are then only
// logged.
func New(contacts ContactSource, gen Generator, sender delivery.Sender, history History, log *zap.Logger, interval time.Duration, notify Notifier) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		contacts:  contacts,
		gen:       gen,
		sender:    sender,
		history:   history,
		log:       log,
		notify:    notify,
		interval:  interval,
		opTimeout: 30 * time.Second,
		now:       time.Now,
		lastFired: make(map[string]time.Time),
	}
}

// Start launches the tick loop. All contacts are eligible again at their next
// scheduled minute.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateStopped {
		s.mu.Unlock()
		return errors.New("scheduler already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateRunning
	s.lastFired = make(map[string]time.Time)
	s.mu.Unlock()

	go s.run(runCtx)
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts the loop and clears the in-memory last-fired state.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	s.state = StateStopped
	s.lastFired = make(map[string]time.Time)
	s.mu.Unlock()
	s.log.Info("scheduler stopped")
}

// Pause suspends polling without losing last-fired state.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		s.state = StatePaused
		s.log.Info("scheduler paused")
	}
}

// Resume continues polling from the next tick.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePaused {
		s.state = StateRunning
		s.log.Info("scheduler resumed")
	}
}

// State returns the current loop state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Gate returns the pause gate used by the contact store: mutations pause the
// loop and the returned resume restores the exact prior state.
func (s *Scheduler) Gate() store.Gate { return gate{s} }

type gate struct{ s *Scheduler }

func (g gate) Pause() func() {
	g.s.mu.Lock()
	prev := g.s.state
	if g.s.state == StateRunning {
		g.s.state = StatePaused
	}
	g.s.mu.Unlock()

	return func() {
		g.s.mu.Lock()
		defer g.s.mu.Unlock()
		// Restore only if nothing else (e.g. Stop) intervened.
		if g.s.state == StatePaused {
			g.s.state = prev
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.State() == StateRunning {
				s.tick(ctx, s.now())
			}
		}
	}
}

// tick evaluates every contact against the current wall-clock minute. A
// contact fires at most once per minute even when the poll interval is
// shorter than a minute.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	minute := now.Truncate(time.Minute)

	for _, c := range s.contacts.List() {
		if !domain.DueAt(now, &c) {
			continue
		}
		s.mu.Lock()
		already := s.lastFired[c.ID].Equal(minute)
		if !already {
			s.lastFired[c.ID] = minute
		}
		s.mu.Unlock()
		if already {
			continue
		}
		s.dispatch(ctx, c, minute)
	}
}

// dispatch runs one generate → send cycle for a due contact. Each cycle is
// timeout-bounded so a hung network call cannot stall the loop forever.
func (s *Scheduler) dispatch(ctx context.Context, c domain.Contact, firedAt time.Time) {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	text := s.gen.Generate(opCtx, c.Recipient)

	rec := store.SendRecord{
		Phone:     c.Phone,
		Recipient: c.Recipient,
		Text:      text,
		Status:    store.StatusSent,
		FiredAt:   firedAt,
	}

	err := s.sender.Send(opCtx, c.Phone, text)
	switch {
	case err == nil:
		s.log.Info("message sent",
			zap.String("contact", c.ID),
			zap.String("recipient", c.Recipient),
		)
	case errors.Is(err, domain.ErrFatal):
		rec.Status = store.StatusFailed
		rec.Error = err.Error()
		s.log.Error("fatal delivery failure, disabling contact",
			zap.String("contact", c.ID),
			zap.String("recipient", c.Recipient),
			zap.Error(err),
		)
		if derr := s.contacts.SetEnabled(c.ID, false); derr != nil {
			s.log.Error("failed to disable contact", zap.String("contact", c.ID), zap.Error(derr))
		}
		if s.notify != nil {
			s.notify(c, err)
		}
	default:
		rec.Status = store.StatusFailed
		rec.Error = err.Error()
		s.log.Warn("delivery failed, will retry next cycle",
			zap.String("contact", c.ID),
			zap.String("recipient", c.Recipient),
			zap.Error(err),
		)
	}

	if err := s.history.RecordSend(ctx, rec); err != nil {
		s.log.Warn("failed to record send history", zap.Error(err))
	}
}
