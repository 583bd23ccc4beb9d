package resolver

import (
	"context"
	"testing"
	"time"

	"epvotes-backend/internal/db"
	"epvotes-backend/lib/testutil"
	"epvotes-backend/services/directory"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var voteDate = time.Date(2019, 10, 24, 0, 0, 0, 0, time.UTC)

type fixture struct {
	resolver  Resolver
	directory directory.Service
	cleanup   func()
}

func setup(t *testing.T) fixture {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/resolver",
		DbSchema: db.Schema,
	})
	dir := directory.NewService(result.DB)

	_, err := dir.EnsureTerm(context.Background(), 9, time.Date(2019, 7, 2, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	return fixture{
		resolver:  New(db.New(result.DB)),
		directory: dir,
		cleanup:   cleanup,
	}
}

func (f fixture) activeMember(t *testing.T, webID int64, first, last string) db.Member {
	t.Helper()
	ctx := context.Background()
	member, err := f.directory.UpsertMember(ctx, directory.UpsertMemberParams{
		WebID:     webID,
		FirstName: first,
		LastName:  last,
	})
	require.NoError(t, err)
	require.NoError(t, f.directory.MergeTermMemberships(ctx, member.ID, []int64{9}))
	return member
}

func (f fixture) inactiveMember(t *testing.T, webID int64, first, last string) db.Member {
	t.Helper()
	member, err := f.directory.UpsertMember(context.Background(), directory.UpsertMemberParams{
		WebID:     webID,
		FirstName: first,
		LastName:  last,
	})
	require.NoError(t, err)
	return member
}

func TestResolveByLastName(t *testing.T) {
	f := setup(t)
	defer f.cleanup()

	jane := f.activeMember(t, 1, "Jane", "Doe")
	f.activeMember(t, 2, "John", "Smith")

	members, err := f.resolver.Resolve(context.Background(), "Jane", "Doe", voteDate)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, jane.ID, members[0].ID)
}

func TestResolveIsCaseAndDiacriticInsensitive(t *testing.T) {
	f := setup(t)
	defer f.cleanup()

	member := f.activeMember(t, 1, "Jane", "DOÉ")

	for _, lastName := range []string{"DOE", "Doe", "doé", "DOÉ"} {
		members, err := f.resolver.Resolve(context.Background(), "Jane", lastName, voteDate)
		require.NoError(t, err)
		require.Len(t, members, 1, "last name %q", lastName)
		require.Equal(t, member.ID, members[0].ID)
	}
}

func TestResolveIgnoresInactiveMembers(t *testing.T) {
	f := setup(t)
	defer f.cleanup()

	f.inactiveMember(t, 1, "Jane", "Doe")
	active := f.activeMember(t, 2, "Jane", "Doe")

	members, err := f.resolver.Resolve(context.Background(), "Jane", "Doe", voteDate)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, active.ID, members[0].ID)
}

func TestResolveNarrowsByFirstName(t *testing.T) {
	f := setup(t)
	defer f.cleanup()

	jane := f.activeMember(t, 1, "Jane", "Doe")
	f.activeMember(t, 2, "John", "Doe")

	members, err := f.resolver.Resolve(context.Background(), "Jane", "Doe", voteDate)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, jane.ID, members[0].ID)
}

func TestResolveReturnsAllIdenticalHomonyms(t *testing.T) {
	f := setup(t)
	defer f.cleanup()

	f.activeMember(t, 1, "Jane", "Doe")
	f.activeMember(t, 2, "Jane", "Doe")

	members, err := f.resolver.Resolve(context.Background(), "Jane", "Doe", voteDate)
	require.NoError(t, err)
	require.Len(t, members, 2)
}

func TestResolveUnknownName(t *testing.T) {
	f := setup(t)
	defer f.cleanup()

	f.activeMember(t, 1, "Jane", "Doe")

	members, err := f.resolver.Resolve(context.Background(), "Missing", "Person", voteDate)
	require.NoError(t, err)
	require.Len(t, members, 0)
}
