package resolver

import (
	"context"
	"time"

	"epvotes-backend/internal/db"
	"epvotes-backend/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/resolver")

// Resolver maps scraped name strings to stored members active on a given
// date. It only reads, so one instance is safe to share; it operates on a
// query handle so callers can scope it to a transaction.
type Resolver struct {
	qry *db.Queries
}

func New(qry *db.Queries) Resolver {
	return Resolver{qry: qry}
}

// Resolve returns the members active on `date` whose normalized last name
// equals the normalized input. When that leaves more than one candidate
// and the first name narrows the set down to at least one member, the
// narrowed set is returned. Zero candidates means the name is unknown;
// more than one means the caller has to disambiguate.
func (r Resolver) Resolve(ctx context.Context, firstName, lastName string, date time.Time) ([]db.Member, error) {
	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("last_name", lastName),
		attribute.String("date", date.Format(time.DateOnly)),
	)

	candidates, err := r.qry.ListActiveMembersByLastName(ctx, db.ListActiveMembersByLastNameParams{
		Date:               date.Format(time.DateOnly),
		LastNameNormalized: textutil.NormalizeName(lastName),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(candidates) <= 1 {
		return candidates, nil
	}

	firstNormalized := textutil.NormalizeName(firstName)
	var narrowed []db.Member
	for _, member := range candidates {
		if member.FirstNameNormalized == firstNormalized {
			narrowed = append(narrowed, member)
		}
	}
	if len(narrowed) > 0 {
		return narrowed, nil
	}

	// the first name didn't help, hand all candidates back
	span.SetAttributes(attribute.Int("ambiguous_candidates", len(candidates)))
	return candidates, nil
}
