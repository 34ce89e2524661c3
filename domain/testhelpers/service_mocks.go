package testhelpers

import (
	"context"

	"gamenight/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockRatingEngine is a mock implementation of RatingEngine
type MockRatingEngine struct {
	mock.Mock
}

func (m *MockRatingEngine) GetRating(ctx context.Context, memberID int64) (int, error) {
	args := m.Called(ctx, memberID)
	return args.Int(0), args.Error(1)
}

func (m *MockRatingEngine) GetRatings(ctx context.Context, memberIDs []int64) (map[int64]int, error) {
	args := m.Called(ctx, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockRatingEngine) UpdateForIndividualWin(ctx context.Context, outcomeID, winnerID int64, loserIDs []int64) error {
	args := m.Called(ctx, outcomeID, winnerID, loserIDs)
	return args.Error(0)
}

func (m *MockRatingEngine) UpdateForTeamWin(ctx context.Context, outcomeID int64, winningTeam []int64, losingTeams [][]int64) error {
	args := m.Called(ctx, outcomeID, winningTeam, losingTeams)
	return args.Error(0)
}

func (m *MockRatingEngine) UpdateForNoContest(ctx context.Context, outcomeID int64, playerIDs []int64) error {
	args := m.Called(ctx, outcomeID, playerIDs)
	return args.Error(0)
}

// MockOddsEngine is a mock implementation of OddsEngine
type MockOddsEngine struct {
	mock.Mock
}

func (m *MockOddsEngine) CalculateWinProbabilities(contestants []int64, ratings map[int64]int) map[int64]float64 {
	args := m.Called(contestants, ratings)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[int64]float64)
}

func (m *MockOddsEngine) ProbabilityToOdds(probability float64) int64 {
	args := m.Called(probability)
	return args.Get(0).(int64)
}

func (m *MockOddsEngine) GenerateInitialOdds(ctx context.Context, outcome *entities.GameOutcome) ([]*entities.OddsQuote, error) {
	args := m.Called(ctx, outcome)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.OddsQuote), args.Error(1)
}

func (m *MockOddsEngine) RecalculateForCashflow(ctx context.Context, outcome *entities.GameOutcome, openWagers []*entities.Wager) ([]*entities.OddsQuote, error) {
	args := m.Called(ctx, outcome, openWagers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.OddsQuote), args.Error(1)
}
