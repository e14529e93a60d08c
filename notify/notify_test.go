package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/date"
	"github.com/etnz/carteira/gemini"
	"github.com/etnz/carteira/store"
	"github.com/etnz/carteira/update"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calendar struct {
	events []gemini.DividendEvent
	err    error
	asked  []string
}

func (c *calendar) FetchDividendCalendar(_ context.Context, tickers []string) ([]gemini.DividendEvent, error) {
	c.asked = tickers
	return c.events, c.err
}

var (
	noUpdate  = update.Info{Current: "1.2.0", Latest: "1.2.0"}
	newUpdate = update.Info{Current: "1.1.0", Latest: "1.2.0"}
	now       = time.Date(2025, time.February, 1, 10, 0, 0, 0, time.UTC)
)

func newCenter(s store.Store, cal Calendar, info update.Info) *Center {
	c := NewCenter(s, cal, info, zerolog.Nop())
	c.now = func() time.Time { return now }
	return c
}

func ids(list []Notification) []string {
	var res []string
	for _, n := range list {
		res = append(res, n.ID)
	}
	return res
}

func TestRefresh_Welcome(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	got, err := newCenter(s, nil, noUpdate).Refresh(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, WelcomeID, got[0].ID)
	assert.True(t, got[0].IsRead)
	assert.Equal(t, 0, Unread(got))

	// once stored, the welcome message is not generated anymore
	got, err = newCenter(s, nil, noUpdate).Refresh(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRefresh_MergesReadState(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	cal := &calendar{events: []gemini.DividendEvent{
		{Ticker: "HGLG11", Type: "Data Com", Date: date.New(2025, time.February, 28)},
		{Ticker: "MXRF11", Type: "Pagamento", Date: date.New(2025, time.February, 14)},
	}}
	c := newCenter(s, cal, newUpdate)

	got, err := c.Refresh(ctx, []string{"HGLG11", "MXRF11"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dividend-HGLG11-Data Com-2025-02-28", "dividend-MXRF11-Pagamento-2025-02-14", "update-1.2.0"}, ids(got))
	assert.Equal(t, "MXRF11: Pagamento em 14/02/2025.", got[1].Message)
	assert.Equal(t, 3, Unread(got))
	assert.Equal(t, []string{"HGLG11", "MXRF11"}, cal.asked)

	require.NoError(t, c.MarkRead(ctx, "update-1.2.0"))
	require.ErrorIs(t, c.MarkRead(ctx, "missing"), carteira.ErrNotFound)

	got, err = c.Refresh(ctx, []string{"HGLG11", "MXRF11"})
	require.NoError(t, err)
	assert.Equal(t, 2, Unread(got))

	require.NoError(t, c.MarkAllRead(ctx))
	stored, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
	assert.Equal(t, 0, Unread(stored))
}

func TestRefresh_CalendarFailure(t *testing.T) {
	cal := &calendar{err: errors.New("boom")}
	got, err := newCenter(store.NewMemory(), cal, newUpdate).Refresh(context.Background(), []string{"HGLG11"})
	require.NoError(t, err)
	assert.Equal(t, []string{"update-1.2.0"}, ids(got))
}

func TestRefresh_NoHoldingsNoCalendar(t *testing.T) {
	cal := &calendar{}
	_, err := newCenter(store.NewMemory(), cal, noUpdate).Refresh(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, cal.asked, "the calendar is not asked without holdings")
}
