package ticket

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const ticketTable = "tickets"

var ticketStruct = database.NewStruct(new(models.Ticket))

// Repository handles ticket persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ExistingIDs returns the ids of every ticket already stored.
func (r *Repository) ExistingIDs(ctx context.Context) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "ticket.Repository.ExistingIDs")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id")
	sb.From("tickets")

	query, args := sb.Build()
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list existing ticket ids")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list existing ticket ids: %v", err)
	}

	return ids, nil
}

// Insert writes one ticket in its own transaction. A ticket that already
// exists is left untouched; the bool reports whether a row was written.
func (r *Repository) Insert(ctx context.Context, t *models.Ticket) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ticket.Repository.Insert")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to begin ticket transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	ib := ticketStruct.InsertInto(ticketTable, t).OnConflictDoNothing()
	query, args := ib.Build()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"ticket_id": t.ID}).Error("Failed to insert ticket")
		return false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to insert ticket %s: %v", t.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to commit ticket transaction: %v", err)
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}
