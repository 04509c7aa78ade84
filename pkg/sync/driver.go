package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/fern/pkg/diff"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/movidesk"
	"github.com/Ramsey-B/fern/pkg/normalize"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// TicketSource lists and fetches tickets from the helpdesk API.
type TicketSource interface {
	ListTicketIDs(ctx context.Context) ([]string, error)
	ListPastTicketIDs(ctx context.Context) ([]string, error)
	GetTicket(ctx context.Context, id string) (*movidesk.Ticket, error)
}

// Checkpoint persists the set of ticket ids still waiting to be synced.
type Checkpoint interface {
	Initialize(ids []string) error
	Read() ([]string, error)
	Remove(id string) error
}

// Limiter throttles detail fetches.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Normalizer maps raw payloads onto the relational model.
type Normalizer interface {
	Normalize(raw *movidesk.Ticket) (*normalize.Result, error)
}

// PersonStore writes person rows.
type PersonStore interface {
	UpsertWithOrganization(ctx context.Context, org *models.Person, p *models.Person) error
}

// TicketStore writes ticket rows.
type TicketStore interface {
	ExistingIDs(ctx context.Context) ([]string, error)
	Insert(ctx context.Context, t *models.Ticket) (bool, error)
}

// ActionStore writes ticket action rows.
type ActionStore interface {
	Insert(ctx context.Context, a *models.TicketAction) error
}

// Emitter publishes post-commit events. May be nil.
type Emitter interface {
	EmitTicketSynced(ctx context.Context, runID string, t *models.Ticket) error
}

// Summary reports what one run did.
type Summary struct {
	RunID      string    `json:"run_id"`
	Discovered int       `json:"discovered"`
	Pending    int       `json:"pending"`
	Synced     int       `json:"synced"`
	Skipped    int       `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Driver runs the sync pipeline: discover ids, diff against the store,
// checkpoint the pending set, then fetch, normalize and persist one ticket at
// a time. Strictly sequential; all state is threaded through explicitly.
type Driver struct {
	source     TicketSource
	checkpoint Checkpoint
	limiter    Limiter
	normalizer Normalizer
	persons    PersonStore
	tickets    TicketStore
	actions    ActionStore
	emitter    Emitter
	logger     ectologger.Logger
}

// Dependencies collects everything a Driver needs.
type Dependencies struct {
	Source     TicketSource
	Checkpoint Checkpoint
	Limiter    Limiter
	Normalizer Normalizer
	Persons    PersonStore
	Tickets    TicketStore
	Actions    ActionStore
	Emitter    Emitter
	Logger     ectologger.Logger
}

func NewDriver(deps Dependencies) *Driver {
	return &Driver{
		source:     deps.Source,
		checkpoint: deps.Checkpoint,
		limiter:    deps.Limiter,
		normalizer: deps.Normalizer,
		persons:    deps.Persons,
		tickets:    deps.Tickets,
		actions:    deps.Actions,
		emitter:    deps.Emitter,
		logger:     deps.Logger,
	}
}

// Run executes one full sync pass. Failures of discovery, diffing or
// checkpointing abort the run; per-ticket failures skip the ticket and leave
// its checkpoint entry for a later run.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	ctx, span := tracing.StartSpan(ctx, "sync.Driver.Run")
	defer span.End()

	summary := &Summary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	defer func() { summary.FinishedAt = time.Now().UTC() }()

	log := d.logger.WithContext(ctx).WithFields(map[string]any{"run_id": summary.RunID})

	discovered, err := d.discover(ctx, log)
	if err != nil {
		return summary, err
	}
	summary.Discovered = len(discovered)

	stored, err := d.tickets.ExistingIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load stored ticket ids: %w", err)
	}

	pending := diff.Pending(discovered, stored)
	summary.Pending = len(pending)
	log.Infof("discovered %d ticket ids, %d pending sync", len(discovered), len(pending))

	if err := d.checkpoint.Initialize(pending); err != nil {
		return summary, fmt.Errorf("failed to initialize checkpoint: %w", err)
	}

	for _, id := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := d.limiter.Wait(ctx); err != nil {
			return summary, err
		}

		if err := d.syncOne(ctx, summary.RunID, id); err != nil {
			log.WithError(err).WithFields(map[string]any{"ticket_id": id}).Warn("Skipping ticket")
			summary.Skipped++
			continue
		}

		if err := d.checkpoint.Remove(id); err != nil {
			return summary, fmt.Errorf("failed to advance checkpoint past ticket %s: %w", id, err)
		}

		summary.Synced++
	}

	log.WithFields(map[string]any{
		"discovered": summary.Discovered,
		"pending":    summary.Pending,
		"synced":     summary.Synced,
		"skipped":    summary.Skipped,
	}).Info("Sync run finished")

	return summary, nil
}

// discover gathers ids from both listing partitions. A malformed listing
// excludes that batch but does not abort the run.
func (d *Driver) discover(ctx context.Context, log ectologger.Logger) ([]string, error) {
	var discovered []string

	current, err := d.source.ListTicketIDs(ctx)
	if errors.Is(err, movidesk.ErrMalformedListing) {
		log.WithError(err).Warn("Excluding current ticket listing")
	} else if err != nil {
		return nil, fmt.Errorf("failed to list current tickets: %w", err)
	} else {
		discovered = append(discovered, current...)
	}

	past, err := d.source.ListPastTicketIDs(ctx)
	if errors.Is(err, movidesk.ErrMalformedListing) {
		log.WithError(err).Warn("Excluding past ticket listing")
	} else if err != nil {
		return nil, fmt.Errorf("failed to list past tickets: %w", err)
	} else {
		discovered = append(discovered, past...)
	}

	return discovered, nil
}

// syncOne fetches, normalizes and persists a single ticket.
func (d *Driver) syncOne(ctx context.Context, runID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "sync.Driver.syncOne")
	defer span.End()

	raw, err := d.source.GetTicket(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	result, err := d.normalizer.Normalize(raw)
	if err != nil {
		return fmt.Errorf("normalize failed: %w", err)
	}

	if err := d.persist(ctx, result); err != nil {
		return err
	}

	if d.emitter != nil {
		// best effort; the ticket is already committed
		if err := d.emitter.EmitTicketSynced(ctx, runID, &result.Ticket); err != nil {
			d.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"ticket_id": id}).Warn("Failed to emit ticket.synced")
		}
	}

	return nil
}

// persist writes one normalized ticket in dependency order: persons first,
// then the ticket row, then its actions.
func (d *Driver) persist(ctx context.Context, result *normalize.Result) error {
	for i := range result.Persons {
		unit := &result.Persons[i]
		if err := d.persons.UpsertWithOrganization(ctx, unit.Organization, &unit.Person); err != nil {
			return err
		}
	}

	for i := range result.Clients {
		unit := &result.Clients[i]
		if err := d.persons.UpsertWithOrganization(ctx, unit.Organization, &unit.Person); err != nil {
			return err
		}
	}

	if _, err := d.tickets.Insert(ctx, &result.Ticket); err != nil {
		return err
	}

	for i := range result.Actions {
		if err := d.actions.Insert(ctx, &result.Actions[i]); err != nil {
			return err
		}
	}

	return nil
}
