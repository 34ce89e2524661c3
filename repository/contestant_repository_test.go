package repository

import (
	"context"
	"testing"

	"gamenight/domain/entities"
	"gamenight/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContestantRepository(t *testing.T) {
	t.Parallel()

	testDB := testutil.SetupTestDatabase(t)
	repo := NewContestantRepository(testDB.DB)
	ctx := context.Background()

	t.Run("GetByMember returns nil for an unrated member", func(t *testing.T) {
		contestant, err := repo.GetByMember(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, contestant)
	})

	t.Run("Upsert creates and reloads a contestant", func(t *testing.T) {
		contestant := &entities.Contestant{MemberID: 1, Rating: 1216, GamesPlayed: 1}
		require.NoError(t, repo.Upsert(ctx, contestant))
		assert.False(t, contestant.CreatedAt.IsZero())
		assert.False(t, contestant.UpdatedAt.IsZero())

		loaded, err := repo.GetByMember(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, int64(1), loaded.MemberID)
		assert.Equal(t, 1216, loaded.Rating)
		assert.Equal(t, 1, loaded.GamesPlayed)
	})

	t.Run("Upsert updates an existing contestant in place", func(t *testing.T) {
		contestant := &entities.Contestant{MemberID: 2, Rating: 1200, GamesPlayed: 3}
		require.NoError(t, repo.Upsert(ctx, contestant))

		contestant.Rating = 1184
		contestant.GamesPlayed = 4
		require.NoError(t, repo.Upsert(ctx, contestant))

		loaded, err := repo.GetByMember(ctx, 2)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, 1184, loaded.Rating)
		assert.Equal(t, 4, loaded.GamesPlayed)
	})

	t.Run("GetByMembers omits unrated members", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &entities.Contestant{MemberID: 10, Rating: 1300, GamesPlayed: 5}))
		require.NoError(t, repo.Upsert(ctx, &entities.Contestant{MemberID: 11, Rating: 1100, GamesPlayed: 2}))

		contestants, err := repo.GetByMembers(ctx, []int64{10, 11, 12})
		require.NoError(t, err)
		require.Len(t, contestants, 2)
		assert.Equal(t, 1300, contestants[10].Rating)
		assert.Equal(t, 1100, contestants[11].Rating)
		assert.NotContains(t, contestants, int64(12))
	})

	t.Run("GetByMembers with no ids returns an empty map", func(t *testing.T) {
		contestants, err := repo.GetByMembers(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, contestants)
	})
}
