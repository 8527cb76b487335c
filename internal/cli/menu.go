package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/domain"
)

// ContactStore is the slice of the contact store the menu needs.
type ContactStore interface {
	List() []domain.Contact
	Get(i int) (domain.Contact, error)
	Add(c domain.Contact) (domain.Contact, error)
	Edit(i int, c domain.Contact) (domain.Contact, error)
	Remove(i int) (domain.Contact, error)
}

// SchedulerControl starts the background loop from the menu.
type SchedulerControl interface {
	Start(ctx context.Context) error
}

// Menu is the interactive text presentation surface over the contact store
// and the scheduler.
type Menu struct {
	contacts ContactStore
	sched    SchedulerControl
	log      *zap.Logger
	in       *bufio.Scanner
	out      io.Writer
	now      func() time.Time
}

func NewMenu(contacts ContactStore, sched SchedulerControl, log *zap.Logger, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		contacts: contacts,
		sched:    sched,
		log:      log,
		in:       bufio.NewScanner(in),
		out:      out,
		now:      time.Now,
	}
}

// Run drives the menu until the user quits, input ends or the scheduler is
// started (which takes over the process until ctx is canceled).
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprint(m.out, "\n"+
			"1) List contacts\n"+
			"2) Add contact\n"+
			"3) Edit contact\n"+
			"4) Remove contact\n"+
			"5) Start scheduler\n"+
			"6) Upcoming sends (7 days)\n"+
			"q) Quit\n"+
			"> ")
		choice, ok := m.readLine()
		if !ok {
			return nil
		}
		switch strings.TrimSpace(choice) {
		case "1":
			m.printContacts()
		case "2":
			m.addContact()
		case "3":
			m.editContact()
		case "4":
			m.removeContact()
		case "5":
			if err := m.sched.Start(ctx); err != nil {
				fmt.Fprintf(m.out, "Error: %v\n", err)
				continue
			}
			m.log.Info("scheduler started from menu")
			fmt.Fprintln(m.out, "Scheduler running. Press Ctrl+C to stop.")
			<-ctx.Done()
			return nil
		case "6":
			fmt.Fprintln(m.out, domain.SummarizeUpcoming(m.now(), m.contacts.List()))
		case "q", "Q", "quit", "exit":
			return nil
		default:
			fmt.Fprintln(m.out, "Unknown choice.")
		}
	}
}

func (m *Menu) printContacts() {
	list := m.contacts.List()
	if len(list) == 0 {
		fmt.Fprintln(m.out, "No contacts configured.")
		return
	}
	for i, c := range list {
		state := "enabled"
		if !c.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(m.out, "%d) %s (%s) at %s on %s [%s]\n",
			i, c.Recipient, c.Phone, c.TimeLabel(), strings.Join(c.Weekdays, ", "), state)
	}
}

func (m *Menu) addContact() {
	contact, ok := m.promptContact(domain.Contact{Hour: 8, Enabled: true})
	if !ok {
		return
	}
	added, err := m.contacts.Add(contact)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Added %s (%s).\n", added.Recipient, added.ID)
}

func (m *Menu) editContact() {
	index, ok := m.promptIndex()
	if !ok {
		return
	}
	current, err := m.contacts.Get(index)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	contact, ok := m.promptContact(current)
	if !ok {
		return
	}
	if _, err := m.contacts.Edit(index, contact); err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Updated %s.\n", contact.Recipient)
}

func (m *Menu) removeContact() {
	index, ok := m.promptIndex()
	if !ok {
		return
	}
	removed, err := m.contacts.Remove(index)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Removed %s.\n", removed.Recipient)
}

// promptContact collects contact fields, keeping defaults on empty input.
func (m *Menu) promptContact(defaults domain.Contact) (domain.Contact, bool) {
	c := defaults

	if v, ok := m.prompt(fmt.Sprintf("Phone number [%s]: ", defaults.Phone)); !ok {
		return c, false
	} else if v != "" {
		c.Phone = v
	}
	if v, ok := m.prompt(fmt.Sprintf("Recipient name [%s]: ", defaults.Recipient)); !ok {
		return c, false
	} else if v != "" {
		c.Recipient = v
	}
	if v, ok := m.prompt(fmt.Sprintf("Hour (0-23) [%d]: ", defaults.Hour)); !ok {
		return c, false
	} else if v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fmt.Fprintln(m.out, "Invalid hour.")
			return c, false
		}
		c.Hour = n
	}
	if v, ok := m.prompt(fmt.Sprintf("Minute (0-59) [%d]: ", defaults.Minute)); !ok {
		return c, false
	} else if v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fmt.Fprintln(m.out, "Invalid minute.")
			return c, false
		}
		c.Minute = n
	}
	current := strings.Join(defaults.Weekdays, ",")
	if v, ok := m.prompt(fmt.Sprintf("Weekdays (comma-separated, or weekdays/weekend/all) [%s]: ", current)); !ok {
		return c, false
	} else if v != "" {
		days, err := domain.ExpandWeekdays(strings.Split(v, ","))
		if err != nil {
			fmt.Fprintf(m.out, "Error: %v\n", err)
			return c, false
		}
		c.Weekdays = days
	}
	return c, true
}

func (m *Menu) promptIndex() (int, bool) {
	m.printContacts()
	v, ok := m.prompt("Contact number: ")
	if !ok {
		return 0, false
	}
	index, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		fmt.Fprintln(m.out, "Invalid contact number.")
		return 0, false
	}
	return index, true
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	line, ok := m.readLine()
	return strings.TrimSpace(line), ok
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return m.in.Text(), true
}
