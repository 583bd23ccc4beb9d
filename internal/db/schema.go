package db

import (
	"fmt"

	_ "embed"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Position is a member's recorded stance on a vote. The NOVOTE value is
// only stored explicitly when a voting list reports it; members silently
// absent from a vote are counted into stats without a row.
type Position string

const (
	POSITION_FOR        Position = "FOR"
	POSITION_AGAINST    Position = "AGAINST"
	POSITION_ABSTENTION Position = "ABSTENTION"
	POSITION_NOVOTE     Position = "NOVOTE"
)

func ParsePosition(raw string) (Position, error) {
	switch Position(raw) {
	case POSITION_FOR, POSITION_AGAINST, POSITION_ABSTENTION, POSITION_NOVOTE:
		return Position(raw), nil
	}
	return "", fmt.Errorf("unknown vote position %q", raw)
}

type VoteType string

const (
	VOTE_TYPE_NORMAL    VoteType = "NORMAL"
	VOTE_TYPE_SPLIT     VoteType = "SPLIT"
	VOTE_TYPE_AMENDMENT VoteType = "AMENDMENT"
	VOTE_TYPE_SEPARATE  VoteType = "SEPARATE"
	VOTE_TYPE_FINAL     VoteType = "FINAL"
)

func ParseVoteType(raw string) (VoteType, error) {
	switch VoteType(raw) {
	case VOTE_TYPE_NORMAL, VOTE_TYPE_SPLIT, VOTE_TYPE_AMENDMENT,
		VOTE_TYPE_SEPARATE, VOTE_TYPE_FINAL:
		return VoteType(raw), nil
	}
	return "", fmt.Errorf("unknown vote type %q", raw)
}
