package person

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const personTable = "persons"

var personStruct = database.NewStruct(new(models.Person))

// Repository handles person persistence. Owners, creators, clients and
// organizations all share the persons table.
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

// Upsert writes one person. The row is fully refreshed on conflict, so a
// re-synced ticket always carries the latest person data.
func (r *Repository) Upsert(ctx context.Context, p *models.Person) error {
	return r.UpsertWithOrganization(ctx, nil, p)
}

// UpsertWithOrganization writes a person and its organization in one
// transaction, organization first so the reference is always satisfied.
func (r *Repository) UpsertWithOrganization(ctx context.Context, org *models.Person, p *models.Person) error {
	ctx, span := tracing.StartSpan(ctx, "person.Repository.UpsertWithOrganization")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to begin person transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	if org != nil {
		if err := r.upsertRow(ctx, tx, org); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"person_id": org.ID}).Error("Failed to upsert organization")
			return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to upsert organization %s: %v", org.ID, err)
		}
	}

	if err := r.upsertRow(ctx, tx, p); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"person_id": p.ID}).Error("Failed to upsert person")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to upsert person %s: %v", p.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to commit person transaction: %v", err)
	}

	return nil
}

func (r *Repository) upsertRow(ctx context.Context, tx database.Tx, p *models.Person) error {
	ib := personStruct.InsertInto(personTable, p)
	ub := ib.OnConflict("id")
	ub.Set(
		ub.Assign("business_name", database.Excluded("business_name")),
		ub.Assign("email", database.Excluded("email")),
		ub.Assign("phone", database.Excluded("phone")),
		ub.Assign("person_type", database.Excluded("person_type")),
		ub.Assign("profile_type", database.Excluded("profile_type")),
		ub.Assign("is_deleted", database.Excluded("is_deleted")),
		ub.Assign("organization_id", database.Excluded("organization_id")),
		ub.Assign("updated_at", time.Now().UTC()),
	)

	query, args := ib.Build()
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
