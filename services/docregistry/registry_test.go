package docregistry

import (
	"context"
	"testing"

	"epvotes-backend/internal/db"
	"epvotes-backend/lib/scrapers/epapi"
	"epvotes-backend/lib/testutil"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setup(t *testing.T) (Registry, *db.Queries, int64, func()) {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/docregistry",
		DbSchema: db.Schema,
	})
	qry := db.New(result.DB)

	term, err := qry.CreateTerm(context.Background(), db.CreateTermParams{
		Number:    9,
		StartDate: "2019-07-02",
	})
	require.NoError(t, err)

	return New(qry), qry, term.ID, cleanup
}

func TestResolveCreatesDocumentWithProcedure(t *testing.T) {
	registry, qry, termID, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	document, ok, err := registry.Resolve(ctx, &epapi.DocumentRef{
		Type:   "B",
		Number: 154,
		Year:   2019,
		Title:  "MOTION FOR A RESOLUTION on search and rescue in the Mediterranean",
		Procedure: &epapi.ProcedureRef{
			Title: "Resolution on search and rescue in the Mediterranean",
		},
	}, termID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "B", document.Type)
	require.EqualValues(t, 154, document.Number)
	require.True(t, document.ProcedureID.Valid)

	procedure, err := qry.GetProcedure(ctx, document.ProcedureID.Int64)
	require.NoError(t, err)
	require.Equal(t, "Resolution on search and rescue in the Mediterranean", procedure.Title)
}

func TestResolveReturnsExistingDocumentUntouched(t *testing.T) {
	registry, qry, termID, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	existing, err := qry.CreateDocument(ctx, db.CreateDocumentParams{
		Type:   "B",
		TermID: termID,
		Number: 154,
		Year:   2019,
		Title:  "Curated title",
	})
	require.NoError(t, err)

	document, ok, err := registry.Resolve(ctx, &epapi.DocumentRef{
		Type:   "B",
		Number: 154,
		Year:   2019,
		Title:  "Scraped title that must not overwrite the stored one",
	}, termID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, existing.ID, document.ID)
	require.Equal(t, "Curated title", document.Title)

	count, err := qry.CountDocuments(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestResolveWithoutReference(t *testing.T) {
	registry, qry, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, ok, err := registry.Resolve(ctx, nil, 1)
	require.NoError(t, err)
	require.False(t, ok)

	count, err := qry.CountDocuments(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}
