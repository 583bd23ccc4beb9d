package docregistry

import (
	"context"
	"database/sql"
	"errors"

	"epvotes-backend/internal/db"
	"epvotes-backend/lib/scrapers/epapi"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/docregistry")

// Registry upserts legislative documents keyed on their natural identity
// (type, term, number, year). It operates on a query handle so callers
// can scope it to a transaction.
type Registry struct {
	qry *db.Queries
}

func New(qry *db.Queries) Registry {
	return Registry{qry: qry}
}

// Resolve returns the document matching the reference's natural key,
// creating it (and its procedure, when the scrape carried one) on first
// sight. An existing document is returned untouched: scraped titles never
// overwrite stored ones. A nil ref resolves to no document.
func (r Registry) Resolve(ctx context.Context, ref *epapi.DocumentRef, termID int64) (db.Document, bool, error) {
	if ref == nil {
		return db.Document{}, false, nil
	}

	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("type", ref.Type),
		attribute.Int64("number", ref.Number),
		attribute.Int64("year", ref.Year),
	)

	existing, err := r.qry.GetDocumentByNaturalKey(ctx, db.GetDocumentByNaturalKeyParams{
		Type:   ref.Type,
		TermID: termID,
		Number: ref.Number,
		Year:   ref.Year,
	})
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.Document{}, false, err
	}

	var procedureID sql.NullInt64
	if ref.Procedure != nil {
		procedure, err := r.qry.CreateProcedure(ctx, ref.Procedure.Title)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return db.Document{}, false, err
		}
		procedureID = sql.NullInt64{Int64: procedure.ID, Valid: true}
	}

	document, err := r.qry.CreateDocument(ctx, db.CreateDocumentParams{
		Type:        ref.Type,
		TermID:      termID,
		Number:      ref.Number,
		Year:        ref.Year,
		Title:       ref.Title,
		ProcedureID: procedureID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.Document{}, false, err
	}
	return document, true, nil
}
