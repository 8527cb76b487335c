package delivery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mdp/qrterminal"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/domain"
)

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}

// WhatsApp sends messages through WhatsApp Web via whatsmeow. Library errors
// are translated into the application's transient/fatal taxonomy.
type WhatsApp struct {
	client *whatsmeow.Client
	log    *zap.Logger
}

// NewWhatsApp opens the whatsmeow session container (SQLite) and builds the
// client. The session survives restarts; pairing is only needed once.
func NewWhatsApp(ctx context.Context, sessionDBPath string, log *zap.Logger) (*WhatsApp, error) {
	waLogger := waLog.Stdout("WA", "WARN", true)
	container, err := sqlstore.New(ctx, "sqlite", "file:"+sessionDBPath+"?_pragma=foreign_keys(1)", waLogger)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		device = container.NewDevice()
	}
	client := whatsmeow.NewClient(device, waLogger)
	return &WhatsApp{client: client, log: log}, nil
}

// Connect establishes the WhatsApp Web session. When no stored session
// exists, the pairing QR code is rendered to the terminal.
func (w *WhatsApp) Connect(ctx context.Context) error {
	if w.client.Store.ID == nil {
		qrChan, err := w.client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("qr channel: %w", err)
		}
		go func() {
			for evt := range qrChan {
				switch evt.Event {
				case "code":
					w.log.Info("scan the QR code with WhatsApp to pair this device")
					qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
				default:
					w.log.Info("whatsapp pairing event", zap.String("event", evt.Event))
				}
			}
		}()
	}
	return w.client.Connect()
}

// Disconnect closes the WhatsApp Web connection.
func (w *WhatsApp) Disconnect() {
	w.client.Disconnect()
}

// Send delivers one text message.
func (w *WhatsApp) Send(ctx context.Context, phone, text string) error {
	if !w.client.IsConnected() {
		return fmt.Errorf("%w: whatsapp client not connected", domain.ErrTransient)
	}
	jid, err := parseJID(phone)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFatal, err)
	}
	msg := &waE2E.Message{Conversation: proto.String(text)}
	if _, err := w.client.SendMessage(ctx, jid, msg); err != nil {
		return classify(err)
	}
	return nil
}

// parseJID accepts either a full JID ("user@server") or an E.164-like phone
// number with optional leading plus.
func parseJID(phone string) (types.JID, error) {
	s := strings.TrimSpace(phone)
	if strings.ContainsRune(s, '@') {
		return types.ParseJID(s)
	}
	user := strings.TrimPrefix(s, "+")
	if user == "" {
		return types.JID{}, fmt.Errorf("empty phone number")
	}
	return types.NewJID(user, types.DefaultUserServer), nil
}

// classify maps whatsmeow errors onto the application taxonomy. A dead
// session cannot heal on its own, so it is fatal; everything else is worth
// retrying on the next tick.
func classify(err error) error {
	switch {
	case errors.Is(err, whatsmeow.ErrNotLoggedIn), errors.Is(err, whatsmeow.ErrClientIsNil):
		return fmt.Errorf("%w: %v", domain.ErrFatal, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
}
