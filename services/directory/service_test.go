package directory

import (
	"context"
	"testing"
	"time"

	"epvotes-backend/internal/db"
	"epvotes-backend/lib/testutil"
	"epvotes-backend/lib/textutil"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func date(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *time.Time {
	d := date(s)
	return &d
}

func setup(t *testing.T) (Service, *db.Queries, func()) {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/directory",
		DbSchema: db.Schema,
	})
	return NewService(result.DB), db.New(result.DB), cleanup
}

func TestUpsertMemberNormalizesNames(t *testing.T) {
	service, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	member, err := service.UpsertMember(ctx, UpsertMemberParams{
		WebID:     12345,
		FirstName: "ALL",
		LastName:  "UPPERCASE",
	})
	require.NoError(t, err)
	require.Equal(t, textutil.NormalizeName("ALL"), member.FirstNameNormalized)
	require.Equal(t, textutil.NormalizeName("UPPERCASE"), member.LastNameNormalized)

	// renaming recomputes the normalized columns
	member, err = service.UpsertMember(ctx, UpsertMemberParams{
		WebID:     12345,
		FirstName: "Jane",
		LastName:  "Nienaß",
	})
	require.NoError(t, err)
	require.Equal(t, "jane", member.FirstNameNormalized)
	require.Equal(t, "nienass", member.LastNameNormalized)
}

func TestUpsertMemberKeepsKnownFields(t *testing.T) {
	service, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := service.UpsertMember(ctx, UpsertMemberParams{
		WebID:       12345,
		FirstName:   "Jane",
		LastName:    "Doe",
		DateOfBirth: datePtr("1975-01-01"),
		CountryCode: "AT",
	})
	require.NoError(t, err)

	// a roster scrape without profile info must not erase it
	member, err := service.UpsertMember(ctx, UpsertMemberParams{WebID: 12345})
	require.NoError(t, err)
	require.Equal(t, "Jane", member.FirstName)
	require.Equal(t, "Doe", member.LastName)
	require.Equal(t, "1975-01-01", member.DateOfBirth.String)
	require.Equal(t, "AT", member.CountryCode.String)
}

func TestWebIDIsUnique(t *testing.T) {
	_, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := qry.CreateMember(ctx, db.CreateMemberParams{WebID: 12345})
	require.NoError(t, err)
	_, err = qry.CreateMember(ctx, db.CreateMemberParams{WebID: 12345})
	require.Error(t, err)
	require.True(t, db.IsUniqueViolation(err))
}

func TestUpsertMemberIsIdempotent(t *testing.T) {
	service, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	first, err := service.UpsertMember(ctx, UpsertMemberParams{WebID: 12345, FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	second, err := service.UpsertMember(ctx, UpsertMemberParams{WebID: 12345, FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	require.Equal(t, first, second)

	members, err := qry.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestMergeTermMemberships(t *testing.T) {
	service, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := service.EnsureTerm(ctx, 8, date("2014-07-01"), datePtr("2019-07-01"))
	require.NoError(t, err)
	_, err = service.EnsureTerm(ctx, 9, date("2019-07-02"), nil)
	require.NoError(t, err)
	_, err = service.EnsureTerm(ctx, 10, date("2024-07-16"), nil)
	require.NoError(t, err)

	member, err := service.UpsertMember(ctx, UpsertMemberParams{WebID: 12345})
	require.NoError(t, err)

	require.NoError(t, service.MergeTermMemberships(ctx, member.ID, []int64{8, 9}))
	require.NoError(t, service.MergeTermMemberships(ctx, member.ID, []int64{9, 10}))

	memberships, err := qry.ListTermMembershipsByMember(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 3)
}

func TestActiveMembersAt(t *testing.T) {
	service, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	term, err := service.EnsureTerm(ctx, 9, date("2019-07-02"), nil)
	require.NoError(t, err)

	active, err := service.UpsertMember(ctx, UpsertMemberParams{WebID: 1, LastName: "Active"})
	require.NoError(t, err)
	require.NoError(t, service.MergeTermMemberships(ctx, active.ID, []int64{term.Number}))

	// never attached to a term
	_, err = service.UpsertMember(ctx, UpsertMemberParams{WebID: 2, LastName: "Inactive"})
	require.NoError(t, err)

	members, err := service.ActiveMembersAt(ctx, date("2020-01-02"))
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, active.ID, members[0].ID)

	// before the term started nobody is active
	members, err = service.ActiveMembersAt(ctx, date("2019-07-01"))
	require.NoError(t, err)
	require.Len(t, members, 0)

	count, err := service.CountActiveMembersAt(ctx, date("2020-01-02"))
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestGroupMembershipOverlapIsRejected(t *testing.T) {
	service, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	member, err := service.UpsertMember(ctx, UpsertMemberParams{WebID: 12345})
	require.NoError(t, err)

	_, err = service.SetGroupMembership(ctx, SetGroupMembershipParams{
		MemberID:  member.ID,
		GroupCode: "GREENS",
		GroupName: "Greens/European Free Alliance",
		Start:     date("2020-01-01"),
	})
	require.NoError(t, err)

	// open-ended membership covers every later date
	_, err = service.SetGroupMembership(ctx, SetGroupMembershipParams{
		MemberID:  member.ID,
		GroupCode: "EPP",
		GroupName: "European People's Party",
		Start:     date("2021-06-01"),
	})
	require.ErrorIs(t, err, ErrOverlappingGroupMembership)
}

func TestGroupAt(t *testing.T) {
	service, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	member, err := service.UpsertMember(ctx, UpsertMemberParams{WebID: 12345})
	require.NoError(t, err)

	_, err = service.SetGroupMembership(ctx, SetGroupMembershipParams{
		MemberID:  member.ID,
		GroupCode: "GREENS",
		GroupName: "Greens/European Free Alliance",
		Start:     date("2020-01-01"),
		End:       datePtr("2020-06-30"),
	})
	require.NoError(t, err)
	_, err = service.SetGroupMembership(ctx, SetGroupMembershipParams{
		MemberID:  member.ID,
		GroupCode: "EPP",
		GroupName: "European People's Party",
		Start:     date("2020-07-01"),
	})
	require.NoError(t, err)

	group, ok, err := service.GroupAt(ctx, member.ID, date("2020-03-01"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "GREENS", group.Code)

	group, ok, err = service.GroupAt(ctx, member.ID, date("2020-07-01"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "EPP", group.Code)

	_, ok, err = service.GroupAt(ctx, member.ID, date("2019-12-31"))
	require.NoError(t, err)
	require.False(t, ok)
}
