package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/domain"
)

// Gate pauses the scheduler for the duration of a contact mutation so a tick
// never reads a half-written list. The returned func restores the scheduler's
// prior running/paused state.
type Gate interface {
	Pause() (resume func())
}

type noopGate struct{}

func (noopGate) Pause() func() { return func() {} }

// Contacts is the persisted contact collection. The whole list lives in
// memory and is rewritten to a JSON file on every mutation.
type Contacts struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
	gate Gate
	list []domain.Contact
}

// OpenContacts loads the contact list from path, starting empty when the
// file does not exist. A corrupt file is logged and replaced on the next
// mutation rather than aborting startup.
func OpenContacts(path string, log *zap.Logger) (*Contacts, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	c := &Contacts{path: path, log: log, gate: noopGate{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &c.list); err != nil {
		log.Warn("contacts file is corrupt, starting with an empty list",
			zap.String("path", path), zap.Error(err))
		c.list = nil
	}
	return c, nil
}

// SetGate installs the scheduler pause gate. Called once during wiring,
// before any presentation surface can mutate the store.
func (c *Contacts) SetGate(g Gate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g != nil {
		c.gate = g
	}
}

// List returns a copy of the contact list in stable order.
func (c *Contacts) List() []domain.Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Contact, len(c.list))
	copy(out, c.list)
	return out
}

// Get returns the contact at index i.
func (c *Contacts) Get(i int) (domain.Contact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.list) {
		return domain.Contact{}, fmt.Errorf("%w: index %d", domain.ErrNotFound, i)
	}
	return c.list[i], nil
}

// Add validates and appends a new contact, assigns it an ID and persists the
// full collection.
func (c *Contacts) Add(contact domain.Contact) (domain.Contact, error) {
	if err := contact.Validate(); err != nil {
		return domain.Contact{}, err
	}
	resume := c.gate.Pause()
	defer resume()

	c.mu.Lock()
	defer c.mu.Unlock()
	contact.ID = c.nextIDLocked()
	c.list = append(c.list, contact)
	if err := c.persistLocked(); err != nil {
		c.list = c.list[:len(c.list)-1]
		return domain.Contact{}, err
	}
	return contact, nil
}

// Edit validates and replaces the contact at index i, keeping its ID.
func (c *Contacts) Edit(i int, contact domain.Contact) (domain.Contact, error) {
	if err := contact.Validate(); err != nil {
		return domain.Contact{}, err
	}
	resume := c.gate.Pause()
	defer resume()

	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.list) {
		return domain.Contact{}, fmt.Errorf("%w: index %d", domain.ErrNotFound, i)
	}
	contact.ID = c.list[i].ID
	prev := c.list[i]
	c.list[i] = contact
	if err := c.persistLocked(); err != nil {
		c.list[i] = prev
		return domain.Contact{}, err
	}
	return contact, nil
}

// Remove deletes the contact at index i and persists the collection.
func (c *Contacts) Remove(i int) (domain.Contact, error) {
	resume := c.gate.Pause()
	defer resume()

	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.list) {
		return domain.Contact{}, fmt.Errorf("%w: index %d", domain.ErrNotFound, i)
	}
	removed := c.list[i]
	c.list = append(c.list[:i], c.list[i+1:]...)
	if err := c.persistLocked(); err != nil {
		return domain.Contact{}, err
	}
	return removed, nil
}

// SetEnabled flips the enabled flag of the contact with the given ID. Used by
// the scheduler to auto-disable a contact after a fatal delivery failure, so
// it does not go through the pause gate.
func (c *Contacts) SetEnabled(id string, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.list {
		if c.list[i].ID == id {
			c.list[i].Enabled = enabled
			return c.persistLocked()
		}
	}
	return fmt.Errorf("%w: id %s", domain.ErrNotFound, id)
}

// nextIDLocked generates contact_N above the highest existing number.
func (c *Contacts) nextIDLocked() string {
	next := 1
	for _, contact := range c.list {
		s := strings.TrimPrefix(contact.ID, "contact_")
		if n, err := strconv.Atoi(s); err == nil && n >= next {
			next = n + 1
		}
	}
	return fmt.Sprintf("contact_%d", next)
}

// persistLocked rewrites the full collection. The write goes to a temp file
// first and is renamed into place so a crash never leaves a torn file.
func (c *Contacts) persistLocked() error {
	data, err := json.MarshalIndent(c.list, "", "    ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".contacts-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}
