// Package notify builds the notifications of the application: upcoming
// dividends of the held funds and new versions. The read state of each
// notification is kept in the store.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/gemini"
	"github.com/etnz/carteira/store"
	"github.com/etnz/carteira/update"
	"github.com/rs/zerolog"
)

// Type of a notification.
type Type string

const (
	Dividend Type = "dividend"
	Update   Type = "update"
	System   Type = "system"
)

// WelcomeID is the id of the notification shown to a new user.
const WelcomeID = "welcome-message"

// Notification is a message for the user.
type Notification struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	Message       string    `json:"message"`
	Date          time.Time `json:"date"`
	IsRead        bool      `json:"isRead"`
	RelatedTicker string    `json:"relatedTicker,omitempty"`
	Action        *Action   `json:"action,omitempty"`
}

// Action is what the user can do about a notification.
type Action struct {
	Type    string `json:"type"`    // "command"
	Command string `json:"command"` // to run, e.g. "fii update"
}

// Calendar lists the upcoming dividend dates of tickers.
type Calendar interface {
	FetchDividendCalendar(ctx context.Context, tickers []string) ([]gemini.DividendEvent, error)
}

// Center generates and persists notifications.
type Center struct {
	store    store.Store
	calendar Calendar // optional
	update   update.Info
	now      func() time.Time
	log      zerolog.Logger
}

// NewCenter returns a notification center persisting in 's'. calendar may be
// nil, then no dividend notification is generated.
func NewCenter(s store.Store, calendar Calendar, info update.Info, log zerolog.Logger) *Center {
	return &Center{
		store:    s,
		calendar: calendar,
		update:   info,
		now:      time.Now,
		log:      log.With().Str("component", "notify").Logger(),
	}
}

// Load returns the stored notifications, newest first.
func (c *Center) Load(ctx context.Context) ([]Notification, error) {
	raw, err := c.store.Get(ctx, store.NotificationKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load notifications: %w", err)
	}
	var list []Notification
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		c.log.Warn().Err(err).Msg("discarding unreadable notifications")
		return nil, nil
	}
	return list, nil
}

func (c *Center) save(ctx context.Context, list []Notification) error {
	if list == nil {
		list = []Notification{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("cannot encode notifications: %w", err)
	}
	if err := c.store.Set(ctx, store.NotificationKey, string(data)); err != nil {
		return fmt.Errorf("cannot save notifications: %w", err)
	}
	return nil
}

// generate returns the current notifications, all unread.
func (c *Center) generate(ctx context.Context, tickers []string) []Notification {
	var list []Notification
	if c.update.Available() {
		list = append(list, Notification{
			ID:      "update-" + c.update.Latest,
			Type:    Update,
			Message: fmt.Sprintf("Nova versão %s disponível! Execute `fii update` para ver as novidades.", c.update.Latest),
			Date:    c.now(),
			Action:  &Action{Type: "command", Command: "fii update"},
		})
	}
	if len(tickers) == 0 || c.calendar == nil {
		return list
	}
	events, err := c.calendar.FetchDividendCalendar(ctx, tickers)
	if err != nil {
		// the calendar is a secondary feature
		c.log.Warn().Err(err).Msg("cannot fetch dividend calendar")
		return list
	}
	for _, e := range events {
		list = append(list, Notification{
			ID:            fmt.Sprintf("dividend-%s-%s-%s", e.Ticker, e.Type, e.Date),
			Type:          Dividend,
			Message:       fmt.Sprintf("%s: %s em %s.", e.Ticker, e.Type, e.Date.Format("02/01/2006")),
			Date:          time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, time.UTC),
			RelatedTicker: e.Ticker,
		})
	}
	return list
}

// Refresh regenerates the notifications for the held tickers, keeps the read
// state of those already known, stores and returns them newest first.
//
// A user with neither stored nor generated notifications gets a read welcome
// message.
func (c *Center) Refresh(ctx context.Context, tickers []string) ([]Notification, error) {
	generated := c.generate(ctx, tickers)
	stored, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	read := make(map[string]bool, len(stored))
	for _, n := range stored {
		read[n.ID] = n.IsRead
	}
	merged := make([]Notification, 0, len(generated)+1)
	for _, n := range generated {
		n.IsRead = read[n.ID]
		merged = append(merged, n)
	}
	if len(stored) == 0 && len(merged) == 0 {
		merged = append(merged, Notification{
			ID:      WelcomeID,
			Type:    System,
			Message: "Bem-vindo! Suas notificações sobre dividendos e atualizações aparecerão aqui.",
			Date:    c.now(),
			IsRead:  true,
		})
	}
	slices.SortStableFunc(merged, func(a, b Notification) int { return b.Date.Compare(a.Date) })
	if err := c.save(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// MarkAllRead marks every stored notification as read.
func (c *Center) MarkAllRead(ctx context.Context) error {
	list, err := c.Load(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].IsRead = true
	}
	return c.save(ctx, list)
}

// MarkRead marks the notification 'id' as read.
func (c *Center) MarkRead(ctx context.Context, id string) error {
	list, err := c.Load(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(list, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		return fmt.Errorf("notification %q: %w", id, carteira.ErrNotFound)
	}
	list[i].IsRead = true
	return c.save(ctx, list)
}

// Unread counts the notifications not read yet.
func Unread(list []Notification) int {
	n := 0
	for _, x := range list {
		if !x.IsRead {
			n++
		}
	}
	return n
}
