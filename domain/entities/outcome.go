package entities

import (
	"fmt"
	"time"
)

// OutcomeState represents the lifecycle state of a game outcome
type OutcomeState string

const (
	OutcomeStatePlanned   OutcomeState = "planned"
	OutcomeStateConfirmed OutcomeState = "confirmed"
	OutcomeStateResolved  OutcomeState = "resolved"
)

// ContestKind classifies how a game outcome is contested
type ContestKind string

const (
	ContestKindIndividual ContestKind = "individual"
	ContestKindTeam       ContestKind = "team"
	ContestKindCoop       ContestKind = "coop"
)

// GameOutcome is a played or scheduled game instance. The scheduling
// subsystem owns these rows; the wagering engine only reads the roster,
// state, scheduled time and recorded result.
type GameOutcome struct {
	ID             int64        `db:"id"`
	GameName       string       `db:"game_name"`
	State          OutcomeState `db:"state"`
	ScheduledAt    time.Time    `db:"scheduled_at"`
	WinnerMemberID *int64       `db:"winner_member_id"`
	WinnerTeam     *string      `db:"winner_team"`
	NoContest      bool         `db:"no_contest"`
	CreatedAt      time.Time    `db:"created_at"`

	Participants []*OutcomeParticipant `db:"-"` // Loaded separately
}

// OutcomeParticipant is a single roster entry, optionally tagged with a team
type OutcomeParticipant struct {
	ID        int64   `db:"id"`
	OutcomeID int64   `db:"outcome_id"`
	MemberID  int64   `db:"member_id"`
	Team      *string `db:"team"`
}

// Branch is a unit you can bet on: a single contestant, or every
// contestant sharing a team tag.
type Branch struct {
	Key     string
	Team    *string
	Members []*OutcomeParticipant
}

// IsConfirmed reports whether the outcome has been confirmed for play
func (o *GameOutcome) IsConfirmed() bool {
	return o.State == OutcomeStateConfirmed
}

// IsPast reports whether the scheduled date has elapsed
func (o *GameOutcome) IsPast(now time.Time) bool {
	return now.After(o.ScheduledAt)
}

// HasRecordedResult reports whether the scheduling subsystem has written a
// result: a winning contestant, a winning team, or an explicit no-contest.
func (o *GameOutcome) HasRecordedResult() bool {
	return o.WinnerMemberID != nil || o.WinnerTeam != nil || o.NoContest
}

// ParticipantByMember returns the roster entry for a member, or nil
func (o *GameOutcome) ParticipantByMember(memberID int64) *OutcomeParticipant {
	for _, p := range o.Participants {
		if p.MemberID == memberID {
			return p
		}
	}
	return nil
}

// HasTeam reports whether any participant carries the given team tag
func (o *GameOutcome) HasTeam(team string) bool {
	for _, p := range o.Participants {
		if p.Team != nil && *p.Team == team {
			return true
		}
	}
	return false
}

// Kind classifies the outcome. No team tags means an individual contest.
// A single team tag covering the whole roster is a cooperative game.
// Anything else is a team contest.
func (o *GameOutcome) Kind() ContestKind {
	teams := make(map[string]bool)
	tagged := 0
	for _, p := range o.Participants {
		if p.Team != nil {
			teams[*p.Team] = true
			tagged++
		}
	}
	switch {
	case len(teams) == 0:
		return ContestKindIndividual
	case len(teams) == 1 && tagged == len(o.Participants):
		return ContestKindCoop
	default:
		return ContestKindTeam
	}
}

// Branches groups the roster into wagerable branches. Team members share
// one branch keyed by the team name; untagged participants each form their
// own branch keyed by member id. Order follows roster order.
func (o *GameOutcome) Branches() []Branch {
	var branches []Branch
	index := make(map[string]int)
	for _, p := range o.Participants {
		key := BranchKeyForParticipant(p)
		if i, ok := index[key]; ok {
			branches[i].Members = append(branches[i].Members, p)
			continue
		}
		index[key] = len(branches)
		branches = append(branches, Branch{
			Key:     key,
			Team:    p.Team,
			Members: []*OutcomeParticipant{p},
		})
	}
	return branches
}

// BranchKeyForParticipant returns the branch key a participant belongs to
func BranchKeyForParticipant(p *OutcomeParticipant) string {
	if p.Team != nil {
		return "team:" + *p.Team
	}
	return fmt.Sprintf("member:%d", p.MemberID)
}

// WinningBranchKey returns the branch key of the recorded result, or ""
// when no result has been recorded or the game ended in a no-contest.
func (o *GameOutcome) WinningBranchKey() string {
	if o.NoContest {
		return ""
	}
	if o.WinnerTeam != nil {
		return "team:" + *o.WinnerTeam
	}
	if o.WinnerMemberID != nil {
		// A contestant winner inside a team game settles as a team win.
		if p := o.ParticipantByMember(*o.WinnerMemberID); p != nil && p.Team != nil {
			return "team:" + *p.Team
		}
		return fmt.Sprintf("member:%d", *o.WinnerMemberID)
	}
	return ""
}
