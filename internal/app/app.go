package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/api"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/cli"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/config"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/delivery"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/domain"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/generator"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/scheduler"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/store"
)

type App struct {
	cfg   config.Config
	flags config.Flags
	log   *zap.Logger

	contacts *store.Contacts
	history  *store.History
	wa       *delivery.WhatsApp
	sched    *scheduler.Scheduler
	httpSrv  *http.Server
}

func New(cfg config.Config, flags config.Flags, log *zap.Logger) *App {
	return &App{cfg: cfg, flags: flags, log: log}
}

func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("starting morning bot",
		zap.Bool("run", a.flags.Run),
		zap.Bool("once", a.flags.Once),
		zap.String("http", a.cfg.HTTPAddr),
	)

	history, err := store.OpenHistory(ctx, a.cfg.HistoryDBPath)
	if err != nil {
		a.log.Error("open history db failed", zap.Error(err))
		return err
	}
	a.history = history
	defer func() { _ = a.history.Close() }()

	contacts, err := store.OpenContacts(a.cfg.ContactsPath, a.log)
	if err != nil {
		a.log.Error("open contacts failed", zap.Error(err))
		return err
	}
	a.contacts = contacts

	wa, err := delivery.NewWhatsApp(ctx, a.cfg.SessionDBPath, a.log)
	if err != nil {
		a.log.Error("whatsapp client init failed", zap.Error(err))
		return err
	}
	a.wa = wa
	if err := a.wa.Connect(ctx); err != nil {
		a.log.Error("whatsapp connect failed", zap.Error(err))
		return err
	}
	defer a.wa.Disconnect()

	gen := generator.New(generator.NewClient(a.cfg.OpenAIAPIKey), a.history, a.log)

	a.sched = scheduler.New(a.contacts, gen, a.wa, a.history, a.log, a.cfg.PollInterval, a.notifyDisabled)
	a.contacts.SetGate(a.sched.Gate())
	defer a.sched.Stop()

	if a.flags.Once {
		return a.runOnce(ctx, gen)
	}

	a.startHTTP(ctx)
	defer a.shutdownHTTP()

	if a.flags.Run {
		if err := a.sched.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		a.log.Info("shutdown signal received")
		return nil
	}

	menu := cli.NewMenu(a.contacts, a.sched, a.log, os.Stdin, os.Stdout)
	return menu.Run(ctx)
}

// runOnce generates one message for the configured default recipient and
// delivers it at the flagged hour/minute (today, or tomorrow when the minute
// has already passed).
func (a *App) runOnce(ctx context.Context, gen *generator.Generator) error {
	if a.cfg.PhoneNo == "" || a.cfg.RecipientName == "" {
		return errors.New("one-shot mode needs PHONE_NO and RECIPIENT_NAME (or --phone/--recipient)")
	}

	now := time.Now()
	at := time.Date(now.Year(), now.Month(), now.Day(), a.cfg.DefaultHour, a.cfg.DefaultMinute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	a.log.Info("scheduling one-shot message",
		zap.String("recipient", a.cfg.RecipientName),
		zap.Time("at", at),
	)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Until(at)):
	}

	text := gen.Generate(ctx, a.cfg.RecipientName)
	a.log.Info("generated message", zap.String("text", text))

	rec := store.SendRecord{
		Phone:     a.cfg.PhoneNo,
		Recipient: a.cfg.RecipientName,
		Text:      text,
		Status:    store.StatusSent,
		FiredAt:   at,
	}
	if err := a.wa.Send(ctx, a.cfg.PhoneNo, text); err != nil {
		rec.Status = store.StatusFailed
		rec.Error = err.Error()
		_ = a.history.RecordSend(ctx, rec)
		a.log.Error("one-shot send failed", zap.Error(err))
		return err
	}
	if err := a.history.RecordSend(ctx, rec); err != nil {
		a.log.Warn("failed to record send history", zap.Error(err))
	}
	a.log.Info("message sent", zap.String("recipient", a.cfg.RecipientName))
	return nil
}

func (a *App) startHTTP(ctx context.Context) {
	handler := api.NewHandler(a.contacts, a.sched, a.history, a.log, ctx)
	a.httpSrv = &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()
}

func (a *App) shutdownHTTP() {
	if a.httpSrv == nil {
		return
	}
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shCtx); err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
}

// notifyDisabled surfaces an auto-disabled contact to the user. With no GUI,
// the console and log file are the notification channel.
func (a *App) notifyDisabled(c domain.Contact, err error) {
	a.log.Error("contact disabled after fatal delivery failure; re-enable it after fixing the session",
		zap.String("contact", c.ID),
		zap.String("recipient", c.Recipient),
		zap.Error(err),
	)
}
