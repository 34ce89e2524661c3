package services

import (
	"context"
	"testing"

	"gamenight/domain/entities"
	"gamenight/domain/events"
	"gamenight/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRatingEngineFixture() (*testhelpers.MockContestantRepository, *testhelpers.MockEventPublisher, *ratingEngine) {
	contestantRepo := &testhelpers.MockContestantRepository{}
	publisher := &testhelpers.MockEventPublisher{}
	engine := NewRatingEngine(contestantRepo, publisher).(*ratingEngine)
	return contestantRepo, publisher, engine
}

func contestantAt(memberID int64, rating int) *entities.Contestant {
	return &entities.Contestant{MemberID: memberID, Rating: rating}
}

func expectRatingMove(repo *testhelpers.MockContestantRepository, memberID int64, from, to int) {
	repo.On("GetByMember", mock.Anything, memberID).Return(contestantAt(memberID, from), nil).Once()
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(c *entities.Contestant) bool {
		return c.MemberID == memberID && c.Rating == to
	})).Return(nil).Once()
}

func TestExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.5, expectedScore(1200, 1200), 1e-9)
	assert.InDelta(t, 0.7597, expectedScore(1400, 1200), 1e-4)

	// Complementary by construction
	assert.InDelta(t, 1.0, expectedScore(1400, 1200)+expectedScore(1200, 1400), 1e-9)
}

func TestRatingEngine_GetRating(t *testing.T) {
	ctx := context.Background()

	t.Run("unrated member gets the default", func(t *testing.T) {
		contestantRepo, _, engine := newRatingEngineFixture()
		contestantRepo.On("GetByMember", ctx, int64(42)).Return(nil, nil)

		rating, err := engine.GetRating(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, entities.DefaultRating, rating)
	})

	t.Run("rated member gets the stored rating", func(t *testing.T) {
		contestantRepo, _, engine := newRatingEngineFixture()
		contestantRepo.On("GetByMember", ctx, int64(42)).Return(contestantAt(42, 1337), nil)

		rating, err := engine.GetRating(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, 1337, rating)
	})
}

func TestRatingEngine_GetRatings(t *testing.T) {
	ctx := context.Background()
	contestantRepo, _, engine := newRatingEngineFixture()

	contestantRepo.On("GetByMembers", ctx, []int64{1, 2}).Return(map[int64]*entities.Contestant{
		1: contestantAt(1, 1450),
	}, nil)

	ratings, err := engine.GetRatings(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 1450, 2: entities.DefaultRating}, ratings)
}

func TestRatingEngine_UpdateForIndividualWin(t *testing.T) {
	ctx := context.Background()

	t.Run("favorite beats underdog for a small delta", func(t *testing.T) {
		contestantRepo, publisher, engine := newRatingEngineFixture()
		contestantRepo.On("GetByMembers", ctx, []int64{1, 2}).Return(map[int64]*entities.Contestant{
			1: contestantAt(1, 1400),
			2: contestantAt(2, 1200),
		}, nil)
		// round(32 * (1 - expectedScore(1400, 1200))) = 8
		expectRatingMove(contestantRepo, 2, 1200, 1192)
		expectRatingMove(contestantRepo, 1, 1400, 1408)
		publisher.On("Publish", mock.AnythingOfType("events.RatingChangedEvent")).Return(nil)

		err := engine.UpdateForIndividualWin(ctx, 7, 1, []int64{2})
		require.NoError(t, err)
		contestantRepo.AssertExpectations(t)
	})

	t.Run("equal ratings move by half the k factor", func(t *testing.T) {
		contestantRepo, publisher, engine := newRatingEngineFixture()
		contestantRepo.On("GetByMembers", ctx, []int64{1, 2}).Return(map[int64]*entities.Contestant{
			1: contestantAt(1, 1200),
			2: contestantAt(2, 1200),
		}, nil)
		expectRatingMove(contestantRepo, 2, 1200, 1184)
		expectRatingMove(contestantRepo, 1, 1200, 1216)
		publisher.On("Publish", mock.AnythingOfType("events.RatingChangedEvent")).Return(nil)

		err := engine.UpdateForIndividualWin(ctx, 7, 1, []int64{2})
		require.NoError(t, err)
		contestantRepo.AssertExpectations(t)
	})

	t.Run("winner gains the sum of pairwise deltas", func(t *testing.T) {
		contestantRepo, publisher, engine := newRatingEngineFixture()
		contestantRepo.On("GetByMembers", ctx, []int64{1, 2, 3}).Return(map[int64]*entities.Contestant{
			1: contestantAt(1, 1200),
			2: contestantAt(2, 1200),
			3: contestantAt(3, 1200),
		}, nil)
		expectRatingMove(contestantRepo, 2, 1200, 1184)
		expectRatingMove(contestantRepo, 3, 1200, 1184)
		expectRatingMove(contestantRepo, 1, 1200, 1232)
		publisher.On("Publish", mock.AnythingOfType("events.RatingChangedEvent")).Return(nil)

		err := engine.UpdateForIndividualWin(ctx, 7, 1, []int64{2, 3})
		require.NoError(t, err)
		contestantRepo.AssertExpectations(t)
	})

	t.Run("rating never drops below the floor", func(t *testing.T) {
		contestantRepo, publisher, engine := newRatingEngineFixture()
		contestantRepo.On("GetByMembers", ctx, []int64{1, 2}).Return(map[int64]*entities.Contestant{
			1: contestantAt(1, 105),
			2: contestantAt(2, 105),
		}, nil)
		expectRatingMove(contestantRepo, 2, 105, entities.MinRating)
		expectRatingMove(contestantRepo, 1, 105, 121)
		publisher.On("Publish", mock.AnythingOfType("events.RatingChangedEvent")).Return(nil)

		err := engine.UpdateForIndividualWin(ctx, 7, 1, []int64{2})
		require.NoError(t, err)
		contestantRepo.AssertExpectations(t)
	})

	t.Run("first time players are created at the default", func(t *testing.T) {
		contestantRepo, publisher, engine := newRatingEngineFixture()
		contestantRepo.On("GetByMembers", ctx, []int64{1, 2}).Return(map[int64]*entities.Contestant{}, nil)
		contestantRepo.On("GetByMember", ctx, int64(2)).Return(nil, nil).Once()
		contestantRepo.On("Upsert", ctx, mock.MatchedBy(func(c *entities.Contestant) bool {
			return c.MemberID == 2 && c.Rating == 1184 && c.GamesPlayed == 1
		})).Return(nil).Once()
		contestantRepo.On("GetByMember", ctx, int64(1)).Return(nil, nil).Once()
		contestantRepo.On("Upsert", ctx, mock.MatchedBy(func(c *entities.Contestant) bool {
			return c.MemberID == 1 && c.Rating == 1216 && c.GamesPlayed == 1
		})).Return(nil).Once()
		publisher.On("Publish", mock.AnythingOfType("events.RatingChangedEvent")).Return(nil)

		err := engine.UpdateForIndividualWin(ctx, 7, 1, []int64{2})
		require.NoError(t, err)
		contestantRepo.AssertExpectations(t)
	})

	t.Run("no losers means nothing moves", func(t *testing.T) {
		contestantRepo, _, engine := newRatingEngineFixture()

		err := engine.UpdateForIndividualWin(ctx, 7, 1, nil)
		require.NoError(t, err)
		contestantRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

func TestRatingEngine_UpdateForTeamWin(t *testing.T) {
	ctx := context.Background()

	t.Run("delta from team averages applies uniformly", func(t *testing.T) {
		contestantRepo, publisher, engine := newRatingEngineFixture()
		contestantRepo.On("GetByMembers", ctx, []int64{1, 2, 3, 4}).Return(map[int64]*entities.Contestant{
			1: contestantAt(1, 1300),
			2: contestantAt(2, 1200),
			3: contestantAt(3, 1300),
			4: contestantAt(4, 1200),
		}, nil)
		// Both averages are 1250, so every member moves by 16
		expectRatingMove(contestantRepo, 3, 1300, 1284)
		expectRatingMove(contestantRepo, 4, 1200, 1184)
		expectRatingMove(contestantRepo, 1, 1300, 1316)
		expectRatingMove(contestantRepo, 2, 1200, 1216)
		publisher.On("Publish", mock.AnythingOfType("events.RatingChangedEvent")).Return(nil)

		err := engine.UpdateForTeamWin(ctx, 7, []int64{1, 2}, [][]int64{{3, 4}})
		require.NoError(t, err)
		contestantRepo.AssertExpectations(t)
	})

	t.Run("empty rosters are a no-op", func(t *testing.T) {
		contestantRepo, _, engine := newRatingEngineFixture()

		require.NoError(t, engine.UpdateForTeamWin(ctx, 7, nil, [][]int64{{3}}))
		require.NoError(t, engine.UpdateForTeamWin(ctx, 7, []int64{1}, nil))
		contestantRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

func TestRatingEngine_UpdateForNoContest(t *testing.T) {
	ctx := context.Background()
	contestantRepo, publisher, engine := newRatingEngineFixture()

	expectRatingMove(contestantRepo, 1, 1200, 1190)
	// Penalty clamps at the floor
	expectRatingMove(contestantRepo, 2, 105, entities.MinRating)
	publisher.On("Publish", mock.AnythingOfType("events.RatingChangedEvent")).Return(nil)

	err := engine.UpdateForNoContest(ctx, 7, []int64{1, 2})
	require.NoError(t, err)
	contestantRepo.AssertExpectations(t)
}

func TestRatingEngine_PublishesRatingChanges(t *testing.T) {
	ctx := context.Background()
	contestantRepo, publisher, engine := newRatingEngineFixture()

	contestantRepo.On("GetByMembers", ctx, []int64{1, 2}).Return(map[int64]*entities.Contestant{
		1: contestantAt(1, 1200),
		2: contestantAt(2, 1200),
	}, nil)
	expectRatingMove(contestantRepo, 2, 1200, 1184)
	expectRatingMove(contestantRepo, 1, 1200, 1216)

	var published []events.RatingChangedEvent
	publisher.On("Publish", mock.AnythingOfType("events.RatingChangedEvent")).Run(func(args mock.Arguments) {
		published = append(published, args.Get(0).(events.RatingChangedEvent))
	}).Return(nil)

	err := engine.UpdateForIndividualWin(ctx, 7, 1, []int64{2})
	require.NoError(t, err)

	require.Len(t, published, 2)
	assert.Equal(t, events.RatingChangedEvent{MemberID: 2, OutcomeID: 7, OldRating: 1200, NewRating: 1184}, published[0])
	assert.Equal(t, events.RatingChangedEvent{MemberID: 1, OutcomeID: 7, OldRating: 1200, NewRating: 1216}, published[1])
}
