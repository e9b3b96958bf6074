package factory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/homeguess/internal/model"
	"github.com/mcoot/homeguess/internal/pubsub"
	redisstorage "github.com/mcoot/homeguess/internal/storage/redis"
	"github.com/mcoot/homeguess/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: Complete match from create to a player crossing the threshold
func (s *IntegrationSuite) TestCompleteMatch() {
	ctrl := s.app.SessionController

	// Step 1: Ann creates, Bob joins
	s.app.MockRandom.QueueID("ann", "match-1", "bob")
	created, annID, err := ctrl.Create(s.ctx, "Ann")
	s.Require().NoError(err)
	s.Equal(model.SessionID("match-1"), created.ID)
	s.Equal(model.PlayerID("ann"), annID)

	joined, bobID, err := ctrl.Join(s.ctx, created.ID, "Bob")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("bob"), bobID)
	s.Equal(model.SessionStatePlaying, joined.State)

	// Step 2: Round one in Philadelphia. Bob guesses Trenton, about 28 miles off.
	s.app.MockRandom.QueueIntn(0)
	home, err := ctrl.Advance(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(TestZipPhiladelphia, home.Address.Zipcode)

	s.Require().NoError(ctrl.Guess(s.ctx, created.ID, annID, TestZipPhiladelphia))
	s.Require().NoError(ctrl.Guess(s.ctx, created.ID, bobID, TestZipTrenton))

	result, err := ctrl.Score(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionStatePlaying, result.State)
	s.Nil(result.Loser)
	s.Equal(0, result.Players[0].Score)
	s.Equal(6, result.Players[1].Score)

	// Step 3: Denver rounds until Bob crosses the threshold
	rounds := 1
	for result.State != model.SessionStateFinished {
		s.Require().Less(rounds, 20, "match should end")

		s.app.MockRandom.QueueIntn(2)
		home, err = ctrl.Advance(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal(TestZipDenver, home.Address.Zipcode)
		rounds++

		s.Require().NoError(ctrl.Guess(s.ctx, created.ID, annID, TestZipDenver))
		s.Require().NoError(ctrl.Guess(s.ctx, created.ID, bobID, TestZipTrenton))

		result, err = ctrl.Score(s.ctx, created.ID)
		s.Require().NoError(err)
	}

	s.Equal(8, rounds)
	s.Require().NotNil(result.Loser)
	s.Equal(bobID, result.Loser.ID)
	s.Equal(6+7*319, result.Loser.Score)

	// Step 4: The stored session reflects the finished match
	final, err := ctrl.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionStateFinished, final.State)
	s.Equal(8, final.Round())
	s.Equal(bobID, final.LoserID)

	// Step 5: Finished sessions refuse guesses and new players
	s.ErrorIs(ctrl.Guess(s.ctx, created.ID, annID, TestZipDenver), model.ErrSessionFinished)
	_, _, err = ctrl.Join(s.ctx, created.ID, "Cat")
	s.ErrorIs(err, model.ErrSessionFull)

	// Step 6: Delete removes it
	s.Require().NoError(ctrl.Delete(s.ctx, created.ID))
	_, err = ctrl.Get(s.ctx, created.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.Equal(0, s.app.MemStore.Len())
}

// Test: Opponent leaves mid-match and a new player takes the seat
func (s *IntegrationSuite) TestLeaveAndRejoin() {
	ctrl := s.app.SessionController

	created, annID, err := ctrl.Create(s.ctx, "Ann")
	s.Require().NoError(err)
	_, bobID, err := ctrl.Join(s.ctx, created.ID, "Bob")
	s.Require().NoError(err)

	_, err = ctrl.Advance(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Require().NoError(ctrl.Guess(s.ctx, created.ID, bobID, TestZipTrenton))

	s.Require().NoError(ctrl.Leave(s.ctx, created.ID, bobID))
	waiting, err := ctrl.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionStateWaiting, waiting.State)
	s.Len(waiting.Players, 1)
	s.Empty(waiting.Guesses)

	_, catID, err := ctrl.Join(s.ctx, created.ID, "Cat")
	s.Require().NoError(err)

	resumed, err := ctrl.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionStatePlaying, resumed.State)
	s.Equal([]model.PlayerID{annID, catID}, []model.PlayerID{resumed.Players[0].ID, resumed.Players[1].ID})
	s.Equal(1, resumed.Round())
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err, "catalog is required")

	_, err = New(Config{Catalog: TestCatalog(), StorageType: "etcd"})
	assert.Error(t, err)

	_, err = New(Config{Catalog: TestCatalog(), StorageType: StorageTypeRedis})
	assert.Error(t, err, "redis config is required")

	_, err = New(Config{Catalog: TestCatalog(), Fanout: FanoutRedis})
	assert.Error(t, err, "redis fanout needs the redis store")

	_, err = New(Config{Catalog: TestCatalog(), Fanout: "kafka"})
	assert.Error(t, err)
}

func TestNewMemory(t *testing.T) {
	app, err := New(Config{Catalog: TestCatalog()})
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	created, _, err := app.SessionController.Create(ctx, "Ann")
	require.NoError(t, err)

	got, err := app.SessionController.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Contains(t, app.HealthCheckers, "catalog")
	assert.NotContains(t, app.HealthCheckers, "redis")
}

func TestNewRedis(t *testing.T) {
	mini := miniredis.RunT(t)

	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mini.Addr()

	app, err := New(Config{
		Catalog:     TestCatalog(),
		StorageType: StorageTypeRedis,
		RedisConfig: &redisCfg,
		Fanout:      FanoutRedis,
	})
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	created, _, err := app.SessionController.Create(ctx, "Ann")
	require.NoError(t, err)
	assert.True(t, mini.Exists("homeguess:session:"+string(created.ID)))

	require.Contains(t, app.HealthCheckers, "redis")
	assert.NoError(t, app.HealthCheckers["redis"].Check(ctx))

	mini.Close()
	assert.Error(t, app.HealthCheckers["redis"].Check(ctx))
}

func TestNewRedisUnreachable(t *testing.T) {
	mini := miniredis.RunT(t)
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mini.Addr()
	mini.Close()

	_, err := New(Config{
		Catalog:     TestCatalog(),
		StorageType: StorageTypeRedis,
		RedisConfig: &redisCfg,
	})
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
}

func TestNewNATS(t *testing.T) {
	srv := testutil.StartNATS(t)

	natsCfg := pubsub.DefaultNATSConfig()
	natsCfg.URL = srv.ClientURL()
	natsCfg.ReconnectWait = 50 * time.Millisecond

	app, err := New(Config{
		Catalog:    TestCatalog(),
		Fanout:     FanoutNATS,
		NATSConfig: &natsCfg,
	})
	require.NoError(t, err)
	defer app.Close()

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	defer nc.Close()
	sub, err := nc.SubscribeSync("homeguess.sessions.>")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	ctx := context.Background()
	created, _, err := app.SessionController.Create(ctx, "Ann")
	require.NoError(t, err)

	msg, err := sub.NextMsg(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "homeguess.sessions."+string(created.ID)+".updated", msg.Subject)

	require.Contains(t, app.HealthCheckers, "nats")
	assert.NoError(t, app.HealthCheckers["nats"].Check(ctx))

	srv.Shutdown()
	assert.Eventually(t, func() bool {
		return app.HealthCheckers["nats"].Check(ctx) != nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestNewNATSUnreachable(t *testing.T) {
	srv := testutil.StartNATS(t)
	natsCfg := pubsub.DefaultNATSConfig()
	natsCfg.URL = srv.ClientURL()
	srv.Shutdown()

	_, err := New(Config{
		Catalog:    TestCatalog(),
		Fanout:     FanoutNATS,
		NATSConfig: &natsCfg,
	})
	assert.Error(t, err)
}
