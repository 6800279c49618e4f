package ports

import (
	"context"
	"time"

	"github.com/davidkwan/orggraph/modules/query/model"
)

// QueryRepository runs the read-side storage functions/queries the query
// service composes. Each maps to one database function or report-style SQL
// statement rather than the per-row CRUD operations the entity modules own.
type QueryRepository interface {
	// FindColleaguesAtDate calls the find_colleagues_at_date storage
	// function: everyone employed alongside personName on targetDate.
	FindColleaguesAtDate(ctx context.Context, personName string, targetDate time.Time) ([]model.Colleague, error)

	// FindAllColleagues calls find_all_colleagues: everyone whose tenure
	// ever overlapped personName's at a shared organization.
	FindAllColleagues(ctx context.Context, personName string) ([]model.AllColleague, error)

	CareerProgressionByName(ctx context.Context, personName string) ([]model.CareerEntry, error)
	CareerProgressionByPersonID(ctx context.Context, personID int64) ([]model.CareerEntry, error)

	NetworkSnapshot(ctx context.Context, targetDate time.Time) ([]model.NetworkSnapshotEntry, error)
}
