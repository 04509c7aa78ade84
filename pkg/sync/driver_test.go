package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/movidesk"
	"github.com/Ramsey-B/fern/pkg/normalize"
)

func getTestLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// recorder captures the order of persistence operations across the fakes.
type recorder struct {
	ops []string
}

type fakeSource struct {
	current    []string
	past       []string
	currentErr error
	pastErr    error
	tickets    map[string]*movidesk.Ticket
	fetchErr   map[string]error
	fetches    []string
}

func (f *fakeSource) ListTicketIDs(ctx context.Context) ([]string, error) {
	return f.current, f.currentErr
}

func (f *fakeSource) ListPastTicketIDs(ctx context.Context) ([]string, error) {
	return f.past, f.pastErr
}

func (f *fakeSource) GetTicket(ctx context.Context, id string) (*movidesk.Ticket, error) {
	f.fetches = append(f.fetches, id)
	if err, ok := f.fetchErr[id]; ok {
		return nil, err
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, fmt.Errorf("no ticket %s", id)
	}
	return ticket, nil
}

type fakeCheckpoint struct {
	ids       []string
	initCalls int
	removed   []string
}

func (f *fakeCheckpoint) Initialize(ids []string) error {
	f.initCalls++
	f.ids = append([]string(nil), ids...)
	return nil
}

func (f *fakeCheckpoint) Read() ([]string, error) {
	return f.ids, nil
}

func (f *fakeCheckpoint) Remove(id string) error {
	f.removed = append(f.removed, id)
	remaining := make([]string, 0, len(f.ids))
	for _, existing := range f.ids {
		if existing != id {
			remaining = append(remaining, existing)
		}
	}
	f.ids = remaining
	return nil
}

type fakeLimiter struct {
	waits int
}

func (f *fakeLimiter) Wait(ctx context.Context) error {
	f.waits++
	return nil
}

type fakePersons struct {
	rec *recorder
	err error
}

func (f *fakePersons) UpsertWithOrganization(ctx context.Context, org *models.Person, p *models.Person) error {
	if f.err != nil {
		return f.err
	}
	if org != nil {
		f.rec.ops = append(f.rec.ops, "org:"+org.ID)
	}
	f.rec.ops = append(f.rec.ops, "person:"+p.ID)
	return nil
}

type fakeTickets struct {
	rec      *recorder
	existing []string
	err      error
}

func (f *fakeTickets) ExistingIDs(ctx context.Context) ([]string, error) {
	return f.existing, nil
}

func (f *fakeTickets) Insert(ctx context.Context, t *models.Ticket) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.rec.ops = append(f.rec.ops, "ticket:"+t.ID)
	return true, nil
}

type fakeActions struct {
	rec *recorder
}

func (f *fakeActions) Insert(ctx context.Context, a *models.TicketAction) error {
	f.rec.ops = append(f.rec.ops, fmt.Sprintf("action:%d@%s", a.ID, a.TicketID))
	return nil
}

type fakeEmitter struct {
	emitted []string
}

func (f *fakeEmitter) EmitTicketSynced(ctx context.Context, runID string, t *models.Ticket) error {
	f.emitted = append(f.emitted, t.ID)
	return nil
}

func ticketPayload(id string) *movidesk.Ticket {
	return &movidesk.Ticket{
		ID:         movidesk.ID(id),
		Subject:    "subject " + id,
		Status:     "New",
		BaseStatus: "New",
	}
}

type harness struct {
	rec        *recorder
	source     *fakeSource
	checkpoint *fakeCheckpoint
	limiter    *fakeLimiter
	persons    *fakePersons
	tickets    *fakeTickets
	actions    *fakeActions
	emitter    *fakeEmitter
	driver     *Driver
}

func newHarness(source *fakeSource, stored []string) *harness {
	rec := &recorder{}
	h := &harness{
		rec:        rec,
		source:     source,
		checkpoint: &fakeCheckpoint{},
		limiter:    &fakeLimiter{},
		persons:    &fakePersons{rec: rec},
		tickets:    &fakeTickets{rec: rec, existing: stored},
		actions:    &fakeActions{rec: rec},
		emitter:    &fakeEmitter{},
	}
	h.driver = NewDriver(Dependencies{
		Source:     h.source,
		Checkpoint: h.checkpoint,
		Limiter:    h.limiter,
		Normalizer: normalize.New(),
		Persons:    h.persons,
		Tickets:    h.tickets,
		Actions:    h.actions,
		Emitter:    h.emitter,
		Logger:     getTestLogger(),
	})
	return h
}

func TestDriver_Run_SyncsPendingTickets(t *testing.T) {
	source := &fakeSource{
		current: []string{"1", "2"},
		past:    []string{"3"},
		tickets: map[string]*movidesk.Ticket{
			"2": ticketPayload("2"),
			"3": ticketPayload("3"),
		},
	}
	h := newHarness(source, []string{"1"})

	summary, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Discovered)
	assert.Equal(t, 2, summary.Pending)
	assert.Equal(t, 2, summary.Synced)
	assert.Equal(t, 0, summary.Skipped)
	assert.NotEmpty(t, summary.RunID)

	assert.Equal(t, 1, h.checkpoint.initCalls)
	assert.Equal(t, []string{"2", "3"}, h.checkpoint.removed)
	assert.Empty(t, h.checkpoint.ids)
	assert.Equal(t, []string{"2", "3"}, source.fetches)
	assert.Equal(t, []string{"2", "3"}, h.emitter.emitted)
}

func TestDriver_Run_NothingPending(t *testing.T) {
	source := &fakeSource{current: []string{"1", "2"}}
	h := newHarness(source, []string{"1", "2"})

	summary, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Pending)
	assert.Empty(t, source.fetches)
	assert.Equal(t, 0, h.limiter.waits)
	assert.Equal(t, 1, h.checkpoint.initCalls)
	assert.Empty(t, h.checkpoint.ids)
}

func TestDriver_Run_PersistenceOrder(t *testing.T) {
	raw := ticketPayload("9")
	raw.Owner = &movidesk.Person{ID: "p1"}
	raw.Clients = []movidesk.Person{
		{ID: "c1", Organization: &movidesk.Person{ID: "o1"}},
	}
	raw.Actions = []movidesk.Action{{ID: 1}, {ID: 2}}

	source := &fakeSource{
		current: []string{"9"},
		tickets: map[string]*movidesk.Ticket{"9": raw},
	}
	h := newHarness(source, nil)

	_, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"person:p1",
		"org:o1",
		"person:c1",
		"ticket:9",
		"action:1@9",
		"action:2@9",
	}, h.rec.ops)
}

func TestDriver_Run_FetchFailureSkipsAndRetainsCheckpoint(t *testing.T) {
	source := &fakeSource{
		current: []string{"1", "2"},
		tickets: map[string]*movidesk.Ticket{"2": ticketPayload("2")},
		fetchErr: map[string]error{
			"1": errors.New("boom"),
		},
	}
	h := newHarness(source, nil)

	summary, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Synced)
	assert.Equal(t, 1, summary.Skipped)

	// the failed ticket stays checkpointed for a later run
	assert.Equal(t, []string{"1"}, h.checkpoint.ids)
	assert.Equal(t, []string{"2"}, h.checkpoint.removed)
	assert.Equal(t, []string{"2"}, h.emitter.emitted)
}

func TestDriver_Run_NormalizeFailureSkips(t *testing.T) {
	broken := ticketPayload("1")
	broken.Subject = ""

	source := &fakeSource{
		current: []string{"1"},
		tickets: map[string]*movidesk.Ticket{"1": broken},
	}
	h := newHarness(source, nil)

	summary, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Synced)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, h.rec.ops)
	assert.Equal(t, []string{"1"}, h.checkpoint.ids)
}

func TestDriver_Run_PersistFailureSkips(t *testing.T) {
	source := &fakeSource{
		current: []string{"1"},
		tickets: map[string]*movidesk.Ticket{"1": ticketPayload("1")},
	}
	h := newHarness(source, nil)
	h.tickets.err = errors.New("db down")

	summary, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, h.emitter.emitted)
	assert.Equal(t, []string{"1"}, h.checkpoint.ids)
}

func TestDriver_Run_MalformedListingExcludesBatch(t *testing.T) {
	source := &fakeSource{
		currentErr: movidesk.ErrMalformedListing,
		past:       []string{"5"},
		tickets:    map[string]*movidesk.Ticket{"5": ticketPayload("5")},
	}
	h := newHarness(source, nil)

	summary, err := h.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Discovered)
	assert.Equal(t, 1, summary.Synced)
}

func TestDriver_Run_DiscoveryFailureAborts(t *testing.T) {
	source := &fakeSource{currentErr: errors.New("network down")}
	h := newHarness(source, nil)

	_, err := h.driver.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, h.checkpoint.initCalls)
}

func TestDriver_Run_LimiterCalledPerFetch(t *testing.T) {
	source := &fakeSource{
		current: []string{"1", "2", "3"},
		tickets: map[string]*movidesk.Ticket{
			"1": ticketPayload("1"),
			"2": ticketPayload("2"),
			"3": ticketPayload("3"),
		},
	}
	h := newHarness(source, nil)

	_, err := h.driver.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, h.limiter.waits)
}

func TestDriver_Run_CanceledContext(t *testing.T) {
	source := &fakeSource{
		current: []string{"1"},
		tickets: map[string]*movidesk.Ticket{"1": ticketPayload("1")},
	}
	h := newHarness(source, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.driver.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDriver_Run_SecondRunIsIdempotent(t *testing.T) {
	source := &fakeSource{
		current: []string{"1"},
		tickets: map[string]*movidesk.Ticket{"1": ticketPayload("1")},
	}
	h := newHarness(source, nil)

	summary, err := h.driver.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Synced)

	// the store now has the ticket; a rerun finds nothing pending
	h.tickets.existing = []string{"1"}
	summary, err = h.driver.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Pending)
	assert.Equal(t, 0, summary.Synced)
}
