package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/store"
)

type fakeSched struct{ started int }

func (f *fakeSched) Start(context.Context) error {
	f.started++
	return nil
}

func newTestMenu(t *testing.T, input string) (*Menu, *store.Contacts, *bytes.Buffer) {
	t.Helper()
	contacts, err := store.OpenContacts(filepath.Join(t.TempDir(), "contacts.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("open contacts: %v", err)
	}
	out := &bytes.Buffer{}
	m := NewMenu(contacts, &fakeSched{}, zap.NewNop(), strings.NewReader(input), out)
	return m, contacts, out
}

func TestMenu_AddContactAndQuit(t *testing.T) {
	input := strings.Join([]string{
		"2",            // add
		"+15550001111", // phone
		"Oksana",       // recipient
		"8",            // hour
		"0",            // minute
		"monday,friday",
		"q",
	}, "\n") + "\n"
	m, contacts, out := newTestMenu(t, input)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	list := contacts.List()
	if len(list) != 1 {
		t.Fatalf("want 1 contact, got %d", len(list))
	}
	c := list[0]
	if c.Phone != "+15550001111" || c.Recipient != "Oksana" || c.Hour != 8 || c.Minute != 0 {
		t.Fatalf("unexpected contact: %+v", c)
	}
	if len(c.Weekdays) != 2 || c.Weekdays[0] != "monday" || c.Weekdays[1] != "friday" {
		t.Fatalf("unexpected weekdays: %v", c.Weekdays)
	}
	if !strings.Contains(out.String(), "Added Oksana") {
		t.Fatalf("missing confirmation in output: %s", out.String())
	}
}

func TestMenu_AddContact_WeekdayShortcut(t *testing.T) {
	input := strings.Join([]string{"2", "+15550001111", "Oksana", "", "", "weekdays", "q"}, "\n") + "\n"
	m, contacts, _ := newTestMenu(t, input)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	list := contacts.List()
	if len(list) != 1 {
		t.Fatalf("want 1 contact, got %d", len(list))
	}
	if len(list[0].Weekdays) != 5 {
		t.Fatalf("weekdays shortcut not expanded: %v", list[0].Weekdays)
	}
	// Empty hour input keeps the default.
	if list[0].Hour != 8 {
		t.Fatalf("default hour not kept: %d", list[0].Hour)
	}
}

func TestMenu_RemoveInvalidIndex(t *testing.T) {
	input := strings.Join([]string{"4", "7", "q"}, "\n") + "\n"
	m, _, out := newTestMenu(t, input)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "not found") {
		t.Fatalf("expected not-found error in output: %s", out.String())
	}
}

func TestMenu_ListEmpty(t *testing.T) {
	m, _, out := newTestMenu(t, "1\nq\n")
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "No contacts configured.") {
		t.Fatalf("missing empty-list message: %s", out.String())
	}
}

func TestMenu_EOFQuits(t *testing.T) {
	m, _, _ := newTestMenu(t, "")
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("run on EOF: %v", err)
	}
}
