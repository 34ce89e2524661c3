package repository

import (
	"context"
	"testing"

	"gamenight/domain/entities"
	"gamenight/domain/events"
	"gamenight/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher buffers events like the NATS transactional publisher
// but records flushes and discards instead of hitting a broker.
type recordingPublisher struct {
	pending   []events.Event
	flushed   []events.Event
	discarded int
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

func (p *recordingPublisher) Flush(ctx context.Context) error {
	p.flushed = append(p.flushed, p.pending...)
	p.pending = nil
	return nil
}

func (p *recordingPublisher) Discard() {
	p.pending = nil
	p.discarded++
}

func TestUnitOfWork(t *testing.T) {
	t.Parallel()

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	t.Run("commit persists writes and flushes buffered events", func(t *testing.T) {
		publisher := &recordingPublisher{}
		uow := CreateTestUnitOfWork(testDB.DB, 1000, publisher)
		require.NoError(t, uow.Begin(ctx))

		require.NoError(t, uow.ContestantRepository().Upsert(ctx, &entities.Contestant{
			MemberID: 1, Rating: 1216, GamesPlayed: 1,
		}))
		require.NoError(t, uow.EventBus().Publish(events.RatingChangedEvent{
			MemberID: 1, OutcomeID: 7, OldRating: 1200, NewRating: 1216,
		}))
		assert.Empty(t, publisher.flushed)

		require.NoError(t, uow.Commit())
		require.Len(t, publisher.flushed, 1)

		loaded, err := NewContestantRepository(testDB.DB).GetByMember(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, 1216, loaded.Rating)
	})

	t.Run("rollback discards writes and buffered events", func(t *testing.T) {
		publisher := &recordingPublisher{}
		uow := CreateTestUnitOfWork(testDB.DB, 1000, publisher)
		require.NoError(t, uow.Begin(ctx))

		require.NoError(t, uow.ContestantRepository().Upsert(ctx, &entities.Contestant{
			MemberID: 2, Rating: 1300, GamesPlayed: 1,
		}))
		require.NoError(t, uow.EventBus().Publish(events.RatingChangedEvent{MemberID: 2}))

		require.NoError(t, uow.Rollback())
		assert.Empty(t, publisher.flushed)
		assert.Equal(t, 1, publisher.discarded)

		loaded, err := NewContestantRepository(testDB.DB).GetByMember(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("currency writes ride the same transaction", func(t *testing.T) {
		publisher := &recordingPublisher{}
		uow := CreateTestUnitOfWork(testDB.DB, 1000, publisher)
		require.NoError(t, uow.Begin(ctx))

		ok, err := uow.CurrencyLedger().TryDebit(ctx, 3, 400)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, uow.Rollback())

		// The rolled-back debit never happened, the row was never seeded.
		balance, err := NewMemberLedger(testDB.DB, 1000).GetBalance(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), balance)
	})

	t.Run("begin twice is an error", func(t *testing.T) {
		uow := CreateTestUnitOfWork(testDB.DB, 1000, &recordingPublisher{})
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		assert.Error(t, uow.Begin(ctx))
	})

	t.Run("commit without begin is an error", func(t *testing.T) {
		uow := CreateTestUnitOfWork(testDB.DB, 1000, &recordingPublisher{})
		assert.Error(t, uow.Commit())
	})

	t.Run("rollback without begin is a no-op", func(t *testing.T) {
		uow := CreateTestUnitOfWork(testDB.DB, 1000, &recordingPublisher{})
		assert.NoError(t, uow.Rollback())
	})

	t.Run("repositories are unavailable before begin", func(t *testing.T) {
		uow := CreateTestUnitOfWork(testDB.DB, 1000, &recordingPublisher{})
		assert.Panics(t, func() { uow.WagerRepository() })
	})
}
