package action

import (
	"context"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const foreignKeyViolation = pq.ErrorCode("23503")

// Repository handles ticket action persistence
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

const insertQuery = `
	INSERT INTO ticket_actions (id, ticket_id, type, origin, description, html_description, status, justification, created_date, created_by_id, is_deleted)
	VALUES (:id, :ticket_id, :type, :origin, :description, :html_description, :status, :justification, :created_date, :created_by_id, :is_deleted)
`

// Insert appends one action. Actions are never updated once written; an
// existing (id, ticket_id) pair is skipped. An action whose ticket row is
// missing is logged and dropped so the rest of the run can continue.
func (r *Repository) Insert(ctx context.Context, a *models.TicketAction) error {
	ctx, span := tracing.StartSpan(ctx, "action.Repository.Insert")
	defer span.End()

	exists, err := r.exists(ctx, a.ID, a.TicketID)
	if err != nil {
		return err
	}
	if exists {
		r.logger.WithContext(ctx).Debugf("action %d already exists for ticket %s, skipping", a.ID, a.TicketID)
		return nil
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to begin action transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.NamedExecContext(ctx, insertQuery, a); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"action_id": a.ID, "ticket_id": a.TicketID}).Warn("Dropping action referencing a missing ticket")
			return nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"action_id": a.ID, "ticket_id": a.TicketID}).Error("Failed to insert action")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to insert action %d for ticket %s: %v", a.ID, a.TicketID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to commit action transaction: %v", err)
	}

	return nil
}

func (r *Repository) exists(ctx context.Context, id int, ticketID string) (bool, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("ticket_actions")
	sb.Where(sb.Equal("id", id), sb.Equal("ticket_id", ticketID))

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"action_id": id, "ticket_id": ticketID}).Error("Failed to check action existence")
		return false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to check action %d for ticket %s: %v", id, ticketID, err)
	}

	return count > 0, nil
}
