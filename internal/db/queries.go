package db

import (
	"context"
	"database/sql"
)

const createTerm = `
INSERT INTO terms (number, start_date, end_date)
VALUES (?1, ?2, ?3)
RETURNING id, number, start_date, end_date
`

type CreateTermParams struct {
	Number    int64
	StartDate string
	EndDate   sql.NullString
}

func (q *Queries) CreateTerm(ctx context.Context, arg CreateTermParams) (Term, error) {
	row := q.db.QueryRowContext(ctx, createTerm, arg.Number, arg.StartDate, arg.EndDate)
	var i Term
	err := row.Scan(&i.ID, &i.Number, &i.StartDate, &i.EndDate)
	return i, err
}

const getTermByNumber = `
SELECT id, number, start_date, end_date FROM terms WHERE number = ?1
`

func (q *Queries) GetTermByNumber(ctx context.Context, number int64) (Term, error) {
	row := q.db.QueryRowContext(ctx, getTermByNumber, number)
	var i Term
	err := row.Scan(&i.ID, &i.Number, &i.StartDate, &i.EndDate)
	return i, err
}

const getTerm = `
SELECT id, number, start_date, end_date FROM terms WHERE id = ?1
`

func (q *Queries) GetTerm(ctx context.Context, id int64) (Term, error) {
	row := q.db.QueryRowContext(ctx, getTerm, id)
	var i Term
	err := row.Scan(&i.ID, &i.Number, &i.StartDate, &i.EndDate)
	return i, err
}

const memberColumns = `
members.id, members.web_id, members.first_name, members.last_name,
members.first_name_normalized, members.last_name_normalized,
members.date_of_birth, members.country_code
`

func scanMember(row interface{ Scan(...interface{}) error }) (Member, error) {
	var i Member
	err := row.Scan(
		&i.ID,
		&i.WebID,
		&i.FirstName,
		&i.LastName,
		&i.FirstNameNormalized,
		&i.LastNameNormalized,
		&i.DateOfBirth,
		&i.CountryCode,
	)
	return i, err
}

const createMember = `
INSERT INTO members (
    web_id, first_name, last_name,
    first_name_normalized, last_name_normalized,
    date_of_birth, country_code
)
VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7)
RETURNING ` + memberColumns

type CreateMemberParams struct {
	WebID               int64
	FirstName           string
	LastName            string
	FirstNameNormalized string
	LastNameNormalized  string
	DateOfBirth         sql.NullString
	CountryCode         sql.NullString
}

func (q *Queries) CreateMember(ctx context.Context, arg CreateMemberParams) (Member, error) {
	row := q.db.QueryRowContext(ctx, createMember,
		arg.WebID,
		arg.FirstName,
		arg.LastName,
		arg.FirstNameNormalized,
		arg.LastNameNormalized,
		arg.DateOfBirth,
		arg.CountryCode,
	)
	return scanMember(row)
}

const updateMember = `
UPDATE members
SET first_name = ?2,
    last_name = ?3,
    first_name_normalized = ?4,
    last_name_normalized = ?5,
    date_of_birth = ?6,
    country_code = ?7
WHERE id = ?1
RETURNING ` + memberColumns

type UpdateMemberParams struct {
	ID                  int64
	FirstName           string
	LastName            string
	FirstNameNormalized string
	LastNameNormalized  string
	DateOfBirth         sql.NullString
	CountryCode         sql.NullString
}

func (q *Queries) UpdateMember(ctx context.Context, arg UpdateMemberParams) (Member, error) {
	row := q.db.QueryRowContext(ctx, updateMember,
		arg.ID,
		arg.FirstName,
		arg.LastName,
		arg.FirstNameNormalized,
		arg.LastNameNormalized,
		arg.DateOfBirth,
		arg.CountryCode,
	)
	return scanMember(row)
}

const getMember = `
SELECT ` + memberColumns + ` FROM members WHERE id = ?1
`

func (q *Queries) GetMember(ctx context.Context, id int64) (Member, error) {
	return scanMember(q.db.QueryRowContext(ctx, getMember, id))
}

const getMemberByWebID = `
SELECT ` + memberColumns + ` FROM members WHERE web_id = ?1
`

func (q *Queries) GetMemberByWebID(ctx context.Context, webID int64) (Member, error) {
	return scanMember(q.db.QueryRowContext(ctx, getMemberByWebID, webID))
}

const listMembers = `
SELECT ` + memberColumns + ` FROM members ORDER BY id
`

func (q *Queries) ListMembers(ctx context.Context) ([]Member, error) {
	rows, err := q.db.QueryContext(ctx, listMembers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Member
	for rows.Next() {
		i, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const activeAtCondition = `
EXISTS (
    SELECT 1 FROM term_memberships tm
    WHERE tm.member_id = members.id
      AND tm.start_date <= ?1
      AND (tm.end_date IS NULL OR tm.end_date >= ?1)
)`

const listActiveMembersAt = `
SELECT ` + memberColumns + `
FROM members
WHERE ` + activeAtCondition + `
ORDER BY members.id
`

func (q *Queries) ListActiveMembersAt(ctx context.Context, date string) ([]Member, error) {
	rows, err := q.db.QueryContext(ctx, listActiveMembersAt, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Member
	for rows.Next() {
		i, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countActiveMembersAt = `
SELECT COUNT(*) FROM members WHERE ` + activeAtCondition

func (q *Queries) CountActiveMembersAt(ctx context.Context, date string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countActiveMembersAt, date)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listActiveMembersByLastName = `
SELECT ` + memberColumns + `
FROM members
WHERE members.last_name_normalized = ?2
  AND ` + activeAtCondition + `
ORDER BY members.id
`

type ListActiveMembersByLastNameParams struct {
	Date               string
	LastNameNormalized string
}

func (q *Queries) ListActiveMembersByLastName(ctx context.Context, arg ListActiveMembersByLastNameParams) ([]Member, error) {
	rows, err := q.db.QueryContext(ctx, listActiveMembersByLastName, arg.Date, arg.LastNameNormalized)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Member
	for rows.Next() {
		i, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createTermMembership = `
INSERT INTO term_memberships (member_id, term_id, start_date, end_date)
VALUES (?1, ?2, ?3, ?4)
RETURNING id, member_id, term_id, start_date, end_date
`

type CreateTermMembershipParams struct {
	MemberID  int64
	TermID    int64
	StartDate string
	EndDate   sql.NullString
}

func (q *Queries) CreateTermMembership(ctx context.Context, arg CreateTermMembershipParams) (TermMembership, error) {
	row := q.db.QueryRowContext(ctx, createTermMembership,
		arg.MemberID, arg.TermID, arg.StartDate, arg.EndDate)
	var i TermMembership
	err := row.Scan(&i.ID, &i.MemberID, &i.TermID, &i.StartDate, &i.EndDate)
	return i, err
}

const listTermMembershipsByMember = `
SELECT id, member_id, term_id, start_date, end_date
FROM term_memberships
WHERE member_id = ?1
ORDER BY start_date
`

func (q *Queries) ListTermMembershipsByMember(ctx context.Context, memberID int64) ([]TermMembership, error) {
	rows, err := q.db.QueryContext(ctx, listTermMembershipsByMember, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TermMembership
	for rows.Next() {
		var i TermMembership
		err := rows.Scan(&i.ID, &i.MemberID, &i.TermID, &i.StartDate, &i.EndDate)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createGroup = `
INSERT INTO groups (code, name)
VALUES (?1, ?2)
RETURNING id, code, name
`

type CreateGroupParams struct {
	Code string
	Name string
}

func (q *Queries) CreateGroup(ctx context.Context, arg CreateGroupParams) (Group, error) {
	row := q.db.QueryRowContext(ctx, createGroup, arg.Code, arg.Name)
	var i Group
	err := row.Scan(&i.ID, &i.Code, &i.Name)
	return i, err
}

const getGroupByCode = `
SELECT id, code, name FROM groups WHERE code = ?1
`

func (q *Queries) GetGroupByCode(ctx context.Context, code string) (Group, error) {
	row := q.db.QueryRowContext(ctx, getGroupByCode, code)
	var i Group
	err := row.Scan(&i.ID, &i.Code, &i.Name)
	return i, err
}

const createGroupMembership = `
INSERT INTO group_memberships (member_id, group_id, start_date, end_date)
VALUES (?1, ?2, ?3, ?4)
RETURNING id, member_id, group_id, start_date, end_date
`

type CreateGroupMembershipParams struct {
	MemberID  int64
	GroupID   int64
	StartDate string
	EndDate   sql.NullString
}

func (q *Queries) CreateGroupMembership(ctx context.Context, arg CreateGroupMembershipParams) (GroupMembership, error) {
	row := q.db.QueryRowContext(ctx, createGroupMembership,
		arg.MemberID, arg.GroupID, arg.StartDate, arg.EndDate)
	var i GroupMembership
	err := row.Scan(&i.ID, &i.MemberID, &i.GroupID, &i.StartDate, &i.EndDate)
	return i, err
}

const listOverlappingGroupMemberships = `
SELECT id, member_id, group_id, start_date, end_date
FROM group_memberships
WHERE member_id = ?1
  AND (end_date IS NULL OR end_date >= ?2)
  AND (?3 IS NULL OR start_date <= ?3)
`

type ListOverlappingGroupMembershipsParams struct {
	MemberID  int64
	StartDate string
	EndDate   sql.NullString
}

func (q *Queries) ListOverlappingGroupMemberships(ctx context.Context, arg ListOverlappingGroupMembershipsParams) ([]GroupMembership, error) {
	rows, err := q.db.QueryContext(ctx, listOverlappingGroupMemberships,
		arg.MemberID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GroupMembership
	for rows.Next() {
		var i GroupMembership
		err := rows.Scan(&i.ID, &i.MemberID, &i.GroupID, &i.StartDate, &i.EndDate)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getMemberGroupAt = `
SELECT groups.id, groups.code, groups.name
FROM group_memberships
JOIN groups ON groups.id = group_memberships.group_id
WHERE group_memberships.member_id = ?1
  AND group_memberships.start_date <= ?2
  AND (group_memberships.end_date IS NULL OR group_memberships.end_date >= ?2)
`

type GetMemberGroupAtParams struct {
	MemberID int64
	Date     string
}

func (q *Queries) GetMemberGroupAt(ctx context.Context, arg GetMemberGroupAtParams) (Group, error) {
	row := q.db.QueryRowContext(ctx, getMemberGroupAt, arg.MemberID, arg.Date)
	var i Group
	err := row.Scan(&i.ID, &i.Code, &i.Name)
	return i, err
}

const createProcedure = `
INSERT INTO procedures (title)
VALUES (?1)
RETURNING id, title
`

func (q *Queries) CreateProcedure(ctx context.Context, title string) (Procedure, error) {
	row := q.db.QueryRowContext(ctx, createProcedure, title)
	var i Procedure
	err := row.Scan(&i.ID, &i.Title)
	return i, err
}

const getProcedure = `
SELECT id, title FROM procedures WHERE id = ?1
`

func (q *Queries) GetProcedure(ctx context.Context, id int64) (Procedure, error) {
	row := q.db.QueryRowContext(ctx, getProcedure, id)
	var i Procedure
	err := row.Scan(&i.ID, &i.Title)
	return i, err
}

const documentColumns = `
documents.id, documents.type, documents.term_id, documents.number,
documents.year, documents.title, documents.procedure_id
`

const createDocument = `
INSERT INTO documents (type, term_id, number, year, title, procedure_id)
VALUES (?1, ?2, ?3, ?4, ?5, ?6)
RETURNING ` + documentColumns

type CreateDocumentParams struct {
	Type        string
	TermID      int64
	Number      int64
	Year        int64
	Title       string
	ProcedureID sql.NullInt64
}

func (q *Queries) CreateDocument(ctx context.Context, arg CreateDocumentParams) (Document, error) {
	row := q.db.QueryRowContext(ctx, createDocument,
		arg.Type, arg.TermID, arg.Number, arg.Year, arg.Title, arg.ProcedureID)
	var i Document
	err := row.Scan(&i.ID, &i.Type, &i.TermID, &i.Number, &i.Year, &i.Title, &i.ProcedureID)
	return i, err
}

const getDocumentByNaturalKey = `
SELECT ` + documentColumns + `
FROM documents
WHERE type = ?1 AND term_id = ?2 AND number = ?3 AND year = ?4
`

type GetDocumentByNaturalKeyParams struct {
	Type   string
	TermID int64
	Number int64
	Year   int64
}

func (q *Queries) GetDocumentByNaturalKey(ctx context.Context, arg GetDocumentByNaturalKeyParams) (Document, error) {
	row := q.db.QueryRowContext(ctx, getDocumentByNaturalKey,
		arg.Type, arg.TermID, arg.Number, arg.Year)
	var i Document
	err := row.Scan(&i.ID, &i.Type, &i.TermID, &i.Number, &i.Year, &i.Title, &i.ProcedureID)
	return i, err
}

const countDocuments = `
SELECT COUNT(*) FROM documents
`

func (q *Queries) CountDocuments(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countDocuments)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const voteColumns = `
votes.id, votes.doceo_vote_id, votes.term_id, votes.date, votes.description,
votes.subvote_description, votes.type, votes.document_id, votes.stats
`

func scanVote(row interface{ Scan(...interface{}) error }) (Vote, error) {
	var i Vote
	err := row.Scan(
		&i.ID,
		&i.DoceoVoteID,
		&i.TermID,
		&i.Date,
		&i.Description,
		&i.SubvoteDescription,
		&i.Type,
		&i.DocumentID,
		&i.Stats,
	)
	return i, err
}

const createVote = `
INSERT INTO votes (doceo_vote_id, term_id, date, description, subvote_description, type)
VALUES (?1, ?2, ?3, ?4, ?5, ?6)
RETURNING ` + voteColumns

type CreateVoteParams struct {
	DoceoVoteID        int64
	TermID             int64
	Date               string
	Description        string
	SubvoteDescription sql.NullString
	Type               string
}

func (q *Queries) CreateVote(ctx context.Context, arg CreateVoteParams) (Vote, error) {
	row := q.db.QueryRowContext(ctx, createVote,
		arg.DoceoVoteID, arg.TermID, arg.Date,
		arg.Description, arg.SubvoteDescription, arg.Type)
	return scanVote(row)
}

const updateVote = `
UPDATE votes
SET date = ?2,
    description = ?3,
    subvote_description = ?4,
    type = ?5
WHERE id = ?1
RETURNING ` + voteColumns

type UpdateVoteParams struct {
	ID                 int64
	Date               string
	Description        string
	SubvoteDescription sql.NullString
	Type               string
}

func (q *Queries) UpdateVote(ctx context.Context, arg UpdateVoteParams) (Vote, error) {
	row := q.db.QueryRowContext(ctx, updateVote,
		arg.ID, arg.Date, arg.Description, arg.SubvoteDescription, arg.Type)
	return scanVote(row)
}

const getVote = `
SELECT ` + voteColumns + ` FROM votes WHERE id = ?1
`

func (q *Queries) GetVote(ctx context.Context, id int64) (Vote, error) {
	return scanVote(q.db.QueryRowContext(ctx, getVote, id))
}

const getVoteByDoceoID = `
SELECT ` + voteColumns + ` FROM votes WHERE term_id = ?1 AND doceo_vote_id = ?2
`

type GetVoteByDoceoIDParams struct {
	TermID      int64
	DoceoVoteID int64
}

func (q *Queries) GetVoteByDoceoID(ctx context.Context, arg GetVoteByDoceoIDParams) (Vote, error) {
	return scanVote(q.db.QueryRowContext(ctx, getVoteByDoceoID, arg.TermID, arg.DoceoVoteID))
}

const listVotesByDate = `
SELECT ` + voteColumns + ` FROM votes WHERE term_id = ?1 AND date = ?2 ORDER BY doceo_vote_id
`

type ListVotesByDateParams struct {
	TermID int64
	Date   string
}

func (q *Queries) ListVotesByDate(ctx context.Context, arg ListVotesByDateParams) ([]Vote, error) {
	rows, err := q.db.QueryContext(ctx, listVotesByDate, arg.TermID, arg.Date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Vote
	for rows.Next() {
		i, err := scanVote(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countVotes = `
SELECT COUNT(*) FROM votes
`

func (q *Queries) CountVotes(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countVotes)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const setVoteDocument = `
UPDATE votes SET document_id = ?2 WHERE id = ?1
`

type SetVoteDocumentParams struct {
	ID         int64
	DocumentID sql.NullInt64
}

func (q *Queries) SetVoteDocument(ctx context.Context, arg SetVoteDocumentParams) error {
	_, err := q.db.ExecContext(ctx, setVoteDocument, arg.ID, arg.DocumentID)
	return err
}

const setVoteStats = `
UPDATE votes SET stats = ?2 WHERE id = ?1
`

type SetVoteStatsParams struct {
	ID    int64
	Stats string
}

func (q *Queries) SetVoteStats(ctx context.Context, arg SetVoteStatsParams) error {
	_, err := q.db.ExecContext(ctx, setVoteStats, arg.ID, arg.Stats)
	return err
}

const listVoteMemberPositions = `
SELECT vote_id, member_id, position
FROM vote_member_positions
WHERE vote_id = ?1
ORDER BY member_id
`

func (q *Queries) ListVoteMemberPositions(ctx context.Context, voteID int64) ([]VoteMemberPosition, error) {
	rows, err := q.db.QueryContext(ctx, listVoteMemberPositions, voteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []VoteMemberPosition
	for rows.Next() {
		var i VoteMemberPosition
		err := rows.Scan(&i.VoteID, &i.MemberID, &i.Position)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createVoteMemberPosition = `
INSERT INTO vote_member_positions (vote_id, member_id, position)
VALUES (?1, ?2, ?3)
`

type CreateVoteMemberPositionParams struct {
	VoteID   int64
	MemberID int64
	Position Position
}

func (q *Queries) CreateVoteMemberPosition(ctx context.Context, arg CreateVoteMemberPositionParams) error {
	_, err := q.db.ExecContext(ctx, createVoteMemberPosition,
		arg.VoteID, arg.MemberID, string(arg.Position))
	return err
}

const updateVoteMemberPosition = `
UPDATE vote_member_positions SET position = ?3 WHERE vote_id = ?1 AND member_id = ?2
`

type UpdateVoteMemberPositionParams struct {
	VoteID   int64
	MemberID int64
	Position Position
}

func (q *Queries) UpdateVoteMemberPosition(ctx context.Context, arg UpdateVoteMemberPositionParams) error {
	_, err := q.db.ExecContext(ctx, updateVoteMemberPosition,
		arg.VoteID, arg.MemberID, string(arg.Position))
	return err
}

const deleteVoteMemberPosition = `
DELETE FROM vote_member_positions WHERE vote_id = ?1 AND member_id = ?2
`

type DeleteVoteMemberPositionParams struct {
	VoteID   int64
	MemberID int64
}

func (q *Queries) DeleteVoteMemberPosition(ctx context.Context, arg DeleteVoteMemberPositionParams) error {
	_, err := q.db.ExecContext(ctx, deleteVoteMemberPosition, arg.VoteID, arg.MemberID)
	return err
}

const createVotingList = `
INSERT INTO voting_lists (term_id, date, description, doceo_vote_id, stats)
VALUES (?1, ?2, ?3, ?4, ?5)
RETURNING id, term_id, date, description, doceo_vote_id, vote_id, stats
`

type CreateVotingListParams struct {
	TermID      int64
	Date        string
	Description string
	DoceoVoteID sql.NullInt64
	Stats       sql.NullString
}

func (q *Queries) CreateVotingList(ctx context.Context, arg CreateVotingListParams) (VotingList, error) {
	row := q.db.QueryRowContext(ctx, createVotingList,
		arg.TermID, arg.Date, arg.Description, arg.DoceoVoteID, arg.Stats)
	var i VotingList
	err := row.Scan(&i.ID, &i.TermID, &i.Date, &i.Description, &i.DoceoVoteID, &i.VoteID, &i.Stats)
	return i, err
}

const listUnmatchedVotingLists = `
SELECT id, term_id, date, description, doceo_vote_id, vote_id, stats
FROM voting_lists
WHERE vote_id IS NULL
ORDER BY date, id
`

func (q *Queries) ListUnmatchedVotingLists(ctx context.Context) ([]VotingList, error) {
	rows, err := q.db.QueryContext(ctx, listUnmatchedVotingLists)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []VotingList
	for rows.Next() {
		var i VotingList
		err := rows.Scan(&i.ID, &i.TermID, &i.Date, &i.Description, &i.DoceoVoteID, &i.VoteID, &i.Stats)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const setVotingListVote = `
UPDATE voting_lists SET vote_id = ?2 WHERE id = ?1
`

type SetVotingListVoteParams struct {
	ID     int64
	VoteID sql.NullInt64
}

func (q *Queries) SetVotingListVote(ctx context.Context, arg SetVotingListVoteParams) error {
	_, err := q.db.ExecContext(ctx, setVotingListVote, arg.ID, arg.VoteID)
	return err
}
