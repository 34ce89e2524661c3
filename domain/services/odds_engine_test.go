package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"gamenight/domain/entities"
	"gamenight/domain/interfaces"
	"gamenight/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type oddsEngineFixture struct {
	ratingEngine *testhelpers.MockRatingEngine
	quoteRepo    *testhelpers.MockOddsQuoteRepository
	publisher    *testhelpers.MockEventPublisher
	clock        testhelpers.FixedClock
	engine       interfaces.OddsEngine
}

func newOddsEngineFixture(seed int64) *oddsEngineFixture {
	f := &oddsEngineFixture{
		ratingEngine: &testhelpers.MockRatingEngine{},
		quoteRepo:    &testhelpers.MockOddsQuoteRepository{},
		publisher:    &testhelpers.MockEventPublisher{},
		clock:        testhelpers.FixedClock{Time: time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC)},
	}
	f.engine = NewOddsEngine(f.ratingEngine, f.quoteRepo, f.publisher, f.clock, rand.New(rand.NewSource(seed)))
	f.publisher.On("Publish", mock.Anything).Return(nil).Maybe()
	return f
}

func individualOutcome(id int64, memberIDs ...int64) *entities.GameOutcome {
	outcome := &entities.GameOutcome{
		ID:          id,
		GameName:    "Catan",
		State:       entities.OutcomeStateConfirmed,
		ScheduledAt: time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC),
	}
	for _, memberID := range memberIDs {
		outcome.Participants = append(outcome.Participants, &entities.OutcomeParticipant{
			OutcomeID: id,
			MemberID:  memberID,
		})
	}
	return outcome
}

func participant(memberID int64, team string) *entities.OutcomeParticipant {
	return &entities.OutcomeParticipant{
		MemberID: memberID,
		Team:     &team,
	}
}

func teamOutcome(id int64, teams map[string][]int64, order []string) *entities.GameOutcome {
	outcome := &entities.GameOutcome{
		ID:          id,
		GameName:    "Codenames",
		State:       entities.OutcomeStateConfirmed,
		ScheduledAt: time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC),
	}
	for _, team := range order {
		for _, memberID := range teams[team] {
			outcome.Participants = append(outcome.Participants, participant(memberID, team))
		}
	}
	return outcome
}

func openWager(outcomeID int64, pick entities.Pick, amount, lockedOdds int64) *entities.Wager {
	return &entities.Wager{
		OutcomeID:      outcomeID,
		BettorMemberID: 99,
		PickMemberID:   pick.MemberID,
		PickTeam:       pick.Team,
		Amount:         amount,
		LockedOdds:     lockedOdds,
	}
}

func TestOddsEngine_CalculateWinProbabilities(t *testing.T) {
	f := newOddsEngineFixture(1)

	t.Run("empty pool", func(t *testing.T) {
		probs := f.engine.CalculateWinProbabilities(nil, nil)
		assert.Empty(t, probs)
	})

	t.Run("single contestant is certain", func(t *testing.T) {
		probs := f.engine.CalculateWinProbabilities([]int64{7}, nil)
		assert.Equal(t, map[int64]float64{7: 1}, probs)
	})

	t.Run("equal ratings split evenly", func(t *testing.T) {
		probs := f.engine.CalculateWinProbabilities([]int64{1, 2}, map[int64]int{1: 1200, 2: 1200})
		assert.InDelta(t, 0.5, probs[1], 1e-9)
		assert.InDelta(t, 0.5, probs[2], 1e-9)
	})

	t.Run("probabilities sum to one and favor the stronger player", func(t *testing.T) {
		probs := f.engine.CalculateWinProbabilities(
			[]int64{1, 2, 3},
			map[int64]int{1: 1500, 2: 1200, 3: 1100},
		)
		sum := 0.0
		for _, p := range probs {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.Greater(t, probs[1], probs[2])
		assert.Greater(t, probs[2], probs[3])
	})

	t.Run("unknown members default to the standard rating", func(t *testing.T) {
		probs := f.engine.CalculateWinProbabilities([]int64{1, 2}, map[int64]int{})
		assert.InDelta(t, 0.5, probs[1], 1e-9)
		assert.InDelta(t, 0.5, probs[2], 1e-9)
	})
}

func TestOddsEngine_ProbabilityToOdds(t *testing.T) {
	f := newOddsEngineFixture(1)

	tests := []struct {
		name        string
		probability float64
		want        int64
	}{
		{"even chance lands on 3/5", 0.5, 160},
		{"one third lands near 11/8", 1.0 / 3.0, 238},
		{"one tenth is exactly 7/1", 0.1, 800},
		{"certainty clamps to the floor", 1.0, 105},
		{"near certainty clamps to the floor", 0.8, 105},
		{"zero probability caps at the ceiling", 0, 2000},
		{"negative probability caps at the ceiling", -0.5, 2000},
		{"long shot caps at the ceiling", 0.01, 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.engine.ProbabilityToOdds(tt.probability))
		})
	}
}

func TestSnapToCatalog(t *testing.T) {
	tests := []struct {
		name string
		odds int64
		want int64
	}{
		{"exact entry is kept", 200, 200},
		{"nearest below wins", 161, 160},
		{"nearest above wins", 199, 200},
		{"tie breaks toward smaller odds", 187, 183},
		{"below the catalog floor", 50, 105},
		{"above the catalog ceiling", 2500, 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snapToCatalog(tt.odds))
		})
	}
}

func TestOddsEngine_GenerateInitialOdds(t *testing.T) {
	ctx := context.Background()

	t.Run("no participants is an error", func(t *testing.T) {
		f := newOddsEngineFixture(42)
		_, err := f.engine.GenerateInitialOdds(ctx, individualOutcome(1))
		assert.Error(t, err)
	})

	t.Run("replaces the quote set wholesale", func(t *testing.T) {
		f := newOddsEngineFixture(42)
		outcome := individualOutcome(1, 10, 20)
		f.ratingEngine.On("GetRatings", ctx, []int64{10, 20}).Return(map[int64]int{10: 1200, 20: 1200}, nil)
		f.quoteRepo.On("ReplaceForOutcome", ctx, int64(1), mock.Anything).Return(nil)

		quotes, err := f.engine.GenerateInitialOdds(ctx, outcome)
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		for _, q := range quotes {
			assert.Equal(t, int64(1), q.OutcomeID)
			assert.Equal(t, f.clock.Time, q.SetAt)
			assert.GreaterOrEqual(t, q.Odds, int64(entities.MinOdds))
			assert.LessOrEqual(t, q.Odds, int64(entities.MaxOdds))
		}
		f.quoteRepo.AssertCalled(t, "ReplaceForOutcome", ctx, int64(1), quotes)
	})

	t.Run("same seed produces the same quotes", func(t *testing.T) {
		run := func() []*entities.OddsQuote {
			f := newOddsEngineFixture(42)
			outcome := individualOutcome(1, 10, 20, 30)
			f.ratingEngine.On("GetRatings", ctx, []int64{10, 20, 30}).Return(map[int64]int{10: 1400, 20: 1200, 30: 1100}, nil)
			f.quoteRepo.On("ReplaceForOutcome", ctx, int64(1), mock.Anything).Return(nil)
			quotes, err := f.engine.GenerateInitialOdds(ctx, outcome)
			require.NoError(t, err)
			return quotes
		}

		first := run()
		second := run()
		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].MemberID, second[i].MemberID)
			assert.Equal(t, first[i].Odds, second[i].Odds)
		}
	})

	t.Run("team members share one quote", func(t *testing.T) {
		f := newOddsEngineFixture(7)
		outcome := teamOutcome(1, map[string][]int64{
			"red":  {1, 2},
			"blue": {3, 4},
		}, []string{"red", "blue"})
		f.ratingEngine.On("GetRatings", ctx, []int64{1, 2, 3, 4}).Return(map[int64]int{1: 1300, 2: 1200, 3: 1250, 4: 1250}, nil)
		f.quoteRepo.On("ReplaceForOutcome", ctx, int64(1), mock.Anything).Return(nil)

		quotes, err := f.engine.GenerateInitialOdds(ctx, outcome)
		require.NoError(t, err)
		require.Len(t, quotes, 4)

		byMember := map[int64]int64{}
		for _, q := range quotes {
			byMember[q.MemberID] = q.Odds
		}
		assert.Equal(t, byMember[1], byMember[2])
		assert.Equal(t, byMember[3], byMember[4])
	})

	t.Run("coop roster is priced as one branch", func(t *testing.T) {
		f := newOddsEngineFixture(7)
		outcome := teamOutcome(1, map[string][]int64{"crew": {1, 2, 3}}, []string{"crew"})
		f.ratingEngine.On("GetRatings", ctx, []int64{1, 2, 3}).Return(map[int64]int{1: 1200, 2: 1200, 3: 1200}, nil)
		f.quoteRepo.On("ReplaceForOutcome", ctx, int64(1), mock.Anything).Return(nil)

		quotes, err := f.engine.GenerateInitialOdds(ctx, outcome)
		require.NoError(t, err)
		require.Len(t, quotes, 3)
		assert.Equal(t, quotes[0].Odds, quotes[1].Odds)
		assert.Equal(t, quotes[1].Odds, quotes[2].Odds)
	})
}

func TestOddsEngine_RecalculateForCashflow(t *testing.T) {
	ctx := context.Background()
	setAt := time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)

	quote := func(outcomeID, memberID, odds int64) *entities.OddsQuote {
		return &entities.OddsQuote{OutcomeID: outcomeID, MemberID: memberID, Odds: odds, SetAt: setAt}
	}

	t.Run("no open wagers returns the stored quotes untouched", func(t *testing.T) {
		f := newOddsEngineFixture(1)
		outcome := individualOutcome(1, 10, 20)
		existing := []*entities.OddsQuote{quote(1, 10, 160), quote(1, 20, 160)}
		f.quoteRepo.On("GetByOutcome", ctx, int64(1)).Return(existing, nil)

		quotes, err := f.engine.RecalculateForCashflow(ctx, outcome, nil)
		require.NoError(t, err)
		assert.Equal(t, existing, quotes)
		f.quoteRepo.AssertNotCalled(t, "UpdateOdds", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("open wagers with no quotes is an error", func(t *testing.T) {
		f := newOddsEngineFixture(1)
		outcome := individualOutcome(1, 10, 20)
		f.quoteRepo.On("GetByOutcome", ctx, int64(1)).Return([]*entities.OddsQuote{}, nil)

		_, err := f.engine.RecalculateForCashflow(ctx, outcome, []*entities.Wager{
			openWager(1, entities.MemberPick(10), 100, 160),
		})
		assert.Error(t, err)
	})

	t.Run("liability shortens the heavy branch and lengthens the light one", func(t *testing.T) {
		f := newOddsEngineFixture(1)
		outcome := individualOutcome(1, 10, 20)
		f.quoteRepo.On("GetByOutcome", ctx, int64(1)).Return(
			[]*entities.OddsQuote{quote(1, 10, 160), quote(1, 20, 160)}, nil)
		f.ratingEngine.On("GetRatings", ctx, []int64{10, 20}).Return(map[int64]int{10: 1200, 20: 1200}, nil)
		f.quoteRepo.On("UpdateOdds", ctx, int64(1),
			map[int64]int64{10: 140, 20: 183}, f.clock.Time).Return(nil)

		wagers := []*entities.Wager{
			openWager(1, entities.MemberPick(10), 100, 160),
			openWager(1, entities.MemberPick(20), 50, 160),
		}
		quotes, err := f.engine.RecalculateForCashflow(ctx, outcome, wagers)
		require.NoError(t, err)

		byMember := map[int64]int64{}
		for _, q := range quotes {
			byMember[q.MemberID] = q.Odds
			assert.Equal(t, f.clock.Time, q.SetAt)
		}
		assert.Equal(t, map[int64]int64{10: 140, 20: 183}, byMember)
		f.quoteRepo.AssertExpectations(t)
	})

	t.Run("repricing is idempotent for a fixed wager set", func(t *testing.T) {
		f := newOddsEngineFixture(1)
		outcome := individualOutcome(1, 10, 20)
		// Quotes already moved by a previous pass for the same wagers.
		f.quoteRepo.On("GetByOutcome", ctx, int64(1)).Return(
			[]*entities.OddsQuote{quote(1, 10, 140), quote(1, 20, 183)}, nil)
		f.ratingEngine.On("GetRatings", ctx, []int64{10, 20}).Return(map[int64]int{10: 1200, 20: 1200}, nil)
		f.quoteRepo.On("UpdateOdds", ctx, int64(1),
			map[int64]int64{10: 140, 20: 183}, f.clock.Time).Return(nil)

		wagers := []*entities.Wager{
			openWager(1, entities.MemberPick(10), 100, 160),
			openWager(1, entities.MemberPick(20), 50, 160),
		}
		quotes, err := f.engine.RecalculateForCashflow(ctx, outcome, wagers)
		require.NoError(t, err)

		byMember := map[int64]int64{}
		for _, q := range quotes {
			byMember[q.MemberID] = q.Odds
		}
		assert.Equal(t, map[int64]int64{10: 140, 20: 183}, byMember)
	})

	t.Run("branches with no wagers keep their stored quotes", func(t *testing.T) {
		f := newOddsEngineFixture(1)
		outcome := individualOutcome(1, 10, 20, 30)
		f.quoteRepo.On("GetByOutcome", ctx, int64(1)).Return(
			[]*entities.OddsQuote{quote(1, 10, 238), quote(1, 20, 300), quote(1, 30, 300)}, nil)
		f.ratingEngine.On("GetRatings", ctx, []int64{10, 20, 30}).Return(
			map[int64]int{10: 1200, 20: 1200, 30: 1200}, nil)
		f.quoteRepo.On("UpdateOdds", ctx, int64(1),
			map[int64]int64{10: 180}, f.clock.Time).Return(nil)

		quotes, err := f.engine.RecalculateForCashflow(ctx, outcome, []*entities.Wager{
			openWager(1, entities.MemberPick(10), 100, 238),
		})
		require.NoError(t, err)

		byMember := map[int64]int64{}
		setAts := map[int64]time.Time{}
		for _, q := range quotes {
			byMember[q.MemberID] = q.Odds
			setAts[q.MemberID] = q.SetAt
		}
		assert.Equal(t, map[int64]int64{10: 180, 20: 300, 30: 300}, byMember)
		assert.Equal(t, f.clock.Time, setAts[10])
		assert.Equal(t, setAt, setAts[20])
		assert.Equal(t, setAt, setAts[30])
	})

	t.Run("team members move together", func(t *testing.T) {
		f := newOddsEngineFixture(1)
		outcome := teamOutcome(1, map[string][]int64{
			"red":  {1, 2},
			"blue": {3, 4},
		}, []string{"red", "blue"})
		f.quoteRepo.On("GetByOutcome", ctx, int64(1)).Return([]*entities.OddsQuote{
			quote(1, 1, 160), quote(1, 2, 160), quote(1, 3, 160), quote(1, 4, 160),
		}, nil)
		f.ratingEngine.On("GetRatings", ctx, []int64{1, 2, 3, 4}).Return(
			map[int64]int{1: 1200, 2: 1200, 3: 1200, 4: 1200}, nil)
		f.quoteRepo.On("UpdateOdds", ctx, int64(1),
			map[int64]int64{1: 140, 2: 140, 3: 183, 4: 183}, f.clock.Time).Return(nil)

		wagers := []*entities.Wager{
			openWager(1, entities.TeamPick("red"), 100, 160),
			openWager(1, entities.TeamPick("blue"), 50, 160),
		}
		quotes, err := f.engine.RecalculateForCashflow(ctx, outcome, wagers)
		require.NoError(t, err)

		byMember := map[int64]int64{}
		for _, q := range quotes {
			byMember[q.MemberID] = q.Odds
		}
		assert.Equal(t, map[int64]int64{1: 140, 2: 140, 3: 183, 4: 183}, byMember)
		f.quoteRepo.AssertExpectations(t)
	})
}
