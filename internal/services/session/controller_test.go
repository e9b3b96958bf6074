package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/homeguess/internal/catalog"
	"github.com/mcoot/homeguess/internal/dependencies/mocks"
	"github.com/mcoot/homeguess/internal/model"
	"github.com/mcoot/homeguess/internal/services/scoring"
	"github.com/mcoot/homeguess/internal/storage"
	"github.com/mcoot/homeguess/internal/storage/memory"
	"github.com/mcoot/homeguess/internal/testutil"
)

// recordingNotifier captures notifications for assertions
type recordingNotifier struct {
	mu      sync.Mutex
	updated []*model.Session
	deleted []model.SessionID
}

func (n *recordingNotifier) SessionUpdated(ctx context.Context, session *model.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, session.Clone())
}

func (n *recordingNotifier) SessionDeleted(ctx context.Context, id model.SessionID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, id)
}

func (n *recordingNotifier) updates() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.updated)
}

func (n *recordingNotifier) last() *model.Session {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.updated) == 0 {
		return nil
	}
	return n.updated[len(n.updated)-1]
}

// failingLocker never reaches its backend
type failingLocker struct{}

func (failingLocker) AcquireLock(ctx context.Context, key string, ttl time.Duration) (storage.LockResult, error) {
	return storage.LockResult{Status: storage.LockFailed, Key: key}, fmt.Errorf("%w: connection refused", model.ErrStoreUnavailable)
}

func (failingLocker) ReleaseLock(ctx context.Context, lock storage.LockResult) error {
	return nil
}

// failingStorage reads from an inner store but refuses writes
type failingStorage struct {
	storage.Storage
}

func (failingStorage) SaveSession(ctx context.Context, session *model.Session) error {
	return fmt.Errorf("%w: connection refused", model.ErrStoreUnavailable)
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	locker     *memory.Locker
	notifier   *recordingNotifier
	clock      *clockwork.FakeClock
	random     *mocks.MockRandom
	catalog    *catalog.Catalog
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(mocks.Epoch)
	s.locker = memory.NewLocker(s.clock)
	s.notifier = &recordingNotifier{}
	s.random = mocks.NewMockRandom()
	s.catalog = catalog.New([]model.PropertyRecord{
		{Address: model.Address{Street: "1 Truth Ln", Zipcode: "TRUTH"}, Images: []string{"t.jpg"}, Latitude: 40.0, Longitude: -75.0},
		{Address: model.Address{Street: "2 East St", Zipcode: "EAST"}, Images: []string{"e.jpg"}, Latitude: 40.0, Longitude: -74.0},
		{Address: model.Address{Street: "3 Far Rd", Zipcode: "FAR"}, Images: []string{"f.jpg"}, Latitude: 34.0, Longitude: -118.0},
	})
	s.controller = s.newController(s.storage, s.locker)
	s.ctx = context.Background()
}

func (s *ControllerSuite) newController(store storage.Storage, locker storage.Locker) *Controller {
	return NewController(
		store,
		locker,
		s.catalog,
		scoring.New(s.catalog),
		s.notifier,
		s.clock,
		s.random,
		testutil.NopLogger(),
		DefaultConfig(),
	)
}

// createPlaying returns a two-player session and both player IDs
func (s *ControllerSuite) createPlaying() (model.SessionID, model.PlayerID, model.PlayerID) {
	session, alice, err := s.controller.Create(s.ctx, "Alice")
	s.Require().NoError(err)
	_, bob, err := s.controller.Join(s.ctx, session.ID, "Bob")
	s.Require().NoError(err)
	return session.ID, alice, bob
}

// startRound advances into a round whose home is catalog entry idx
func (s *ControllerSuite) startRound(id model.SessionID, idx int) *model.PropertyRecord {
	s.random.QueueIntn(idx)
	home, err := s.controller.Advance(s.ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(home)
	return home
}

func (s *ControllerSuite) guess(id model.SessionID, player model.PlayerID, zip string) {
	s.Require().NoError(s.controller.Guess(s.ctx, id, player, zip))
}

func (s *ControllerSuite) score(id model.SessionID) *ScoreResult {
	result, err := s.controller.Score(s.ctx, id)
	s.Require().NoError(err)
	return result
}

func (s *ControllerSuite) setScores(id model.SessionID, scores ...int) {
	session, err := s.storage.GetSession(s.ctx, id)
	s.Require().NoError(err)
	for i, score := range scores {
		session.Players[i].Score = score
	}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))
}

// Create tests

func (s *ControllerSuite) TestCreateSucceeds() {
	s.random.QueueID("player-1", "session-1")

	session, playerID, err := s.controller.Create(s.ctx, "Alice")
	s.Require().NoError(err)

	s.Equal(model.SessionID("session-1"), session.ID)
	s.Equal(model.PlayerID("player-1"), playerID)
	s.Equal(model.SessionStateWaiting, session.State)
	s.Equal(1, session.Round())
	s.Require().Len(session.Players, 1)
	s.Equal("Alice", session.Players[0].Name)
	s.Equal(0, session.Players[0].Score)
	s.Empty(session.Homes)
	s.Empty(session.Guesses)
	s.Equal(mocks.Epoch, session.CreatedAt)
}

func (s *ControllerSuite) TestCreateIsPersistedAndBroadcast() {
	session, _, _ := s.controller.Create(s.ctx, "Alice")

	stored, err := s.controller.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.ID, stored.ID)
	s.Equal(1, s.notifier.updates())
}

func (s *ControllerSuite) TestCreateStoreFailure() {
	controller := s.newController(failingStorage{Storage: s.storage}, s.locker)

	_, _, err := controller.Create(s.ctx, "Alice")
	s.ErrorIs(err, model.ErrStoreUnavailable)
	s.Equal(0, s.notifier.updates())
}

// Join tests

func (s *ControllerSuite) TestJoinStartsMatch() {
	session, _, _ := s.controller.Create(s.ctx, "Alice")

	joined, bob, err := s.controller.Join(s.ctx, session.ID, "Bob")
	s.Require().NoError(err)

	s.Equal(model.SessionStatePlaying, joined.State)
	s.Len(joined.Players, 2)
	s.Equal(bob, joined.Players[1].ID)
	s.Equal("Bob", joined.Players[1].Name)
	s.Equal(model.SessionStatePlaying, s.notifier.last().State)
}

func (s *ControllerSuite) TestJoinFullSession() {
	id, _, _ := s.createPlaying()
	before, _ := s.controller.Get(s.ctx, id)
	updates := s.notifier.updates()

	_, _, err := s.controller.Join(s.ctx, id, "Carol")
	s.ErrorIs(err, model.ErrSessionFull)

	after, _ := s.controller.Get(s.ctx, id)
	s.Equal(before, after)
	s.Equal(updates, s.notifier.updates())
}

func (s *ControllerSuite) TestJoinFullFinishedSession() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.setScores(id, 1990, 0)
	s.guess(id, alice, "EAST")
	s.guess(id, bob, "TRUTH")
	s.score(id)

	_, _, err := s.controller.Join(s.ctx, id, "Carol")
	s.ErrorIs(err, model.ErrSessionFull)
}

func (s *ControllerSuite) TestJoinAbandonedSession() {
	session, alice, _ := s.controller.Create(s.ctx, "Alice")
	s.Require().NoError(s.controller.Leave(s.ctx, session.ID, alice))

	_, _, err := s.controller.Join(s.ctx, session.ID, "Bob")
	s.ErrorIs(err, model.ErrSessionFinished)
}

func (s *ControllerSuite) TestJoinNotFound() {
	_, _, err := s.controller.Join(s.ctx, "nonexistent", "Bob")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Advance tests

func (s *ControllerSuite) TestAdvanceNotFound() {
	_, err := s.controller.Advance(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestAdvanceWaitingDoesNotStartRound() {
	session, _, _ := s.controller.Create(s.ctx, "Alice")

	home, err := s.controller.Advance(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Nil(home)

	stored, _ := s.controller.Get(s.ctx, session.ID)
	s.Empty(stored.Homes)
}

func (s *ControllerSuite) TestAdvanceStartsFirstRound() {
	id, _, _ := s.createPlaying()
	updates := s.notifier.updates()

	home := s.startRound(id, 1)

	s.Equal("EAST", home.Address.Zipcode)
	stored, _ := s.controller.Get(s.ctx, id)
	s.Len(stored.Homes, 1)
	s.Equal(1, stored.Round())
	s.Equal(updates+1, s.notifier.updates())
}

func (s *ControllerSuite) TestAdvanceDuringRoundReturnsCurrentHome() {
	id, alice, _ := s.createPlaying()
	first := s.startRound(id, 0)
	s.guess(id, alice, "EAST")

	s.random.QueueIntn(2)
	home, err := s.controller.Advance(s.ctx, id)
	s.Require().NoError(err)

	s.Equal(first, home)
	stored, _ := s.controller.Get(s.ctx, id)
	s.Len(stored.Homes, 1)
	s.Equal("EAST", stored.Guesses[alice])
}

func (s *ControllerSuite) TestAdvanceAfterScoringStartsNextRound() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.guess(id, alice, "EAST")
	s.guess(id, bob, "TRUTH")
	_, err := s.controller.Score(s.ctx, id)
	s.Require().NoError(err)

	home := s.startRound(id, 2)

	s.Equal("FAR", home.Address.Zipcode)
	stored, _ := s.controller.Get(s.ctx, id)
	s.Len(stored.Homes, 2)
	s.Equal(2, stored.Round())
	s.Empty(stored.Guesses)
	s.False(stored.RoundScored)
}

func (s *ControllerSuite) TestConcurrentAdvanceAppendsOneHome() {
	id, _, _ := s.createPlaying()

	const callers = 16
	homes := make([]*model.PropertyRecord, callers)
	g, ctx := errgroup.WithContext(s.ctx)
	for i := 0; i < callers; i++ {
		i := i
		g.Go(func() error {
			home, err := s.controller.Advance(ctx, id)
			homes[i] = home
			return err
		})
	}
	s.Require().NoError(g.Wait())

	stored, _ := s.controller.Get(s.ctx, id)
	s.Len(stored.Homes, 1)
	s.Equal(1, stored.Round())
	for _, home := range homes {
		if home != nil {
			s.Equal(stored.Homes[0], *home)
		}
	}
}

func (s *ControllerSuite) TestAdvanceWithLockHeldIsReadOnly() {
	id, _, _ := s.createPlaying()
	_, err := s.locker.AcquireLock(s.ctx, storage.AdvanceLockKey(id), time.Second)
	s.Require().NoError(err)

	home, err := s.controller.Advance(s.ctx, id)
	s.Require().NoError(err)
	s.Nil(home)

	stored, _ := s.controller.Get(s.ctx, id)
	s.Empty(stored.Homes)
}

func (s *ControllerSuite) TestAdvanceAfterLockExpiry() {
	id, _, _ := s.createPlaying()
	held, err := s.locker.AcquireLock(s.ctx, storage.AdvanceLockKey(id), 2*time.Second)
	s.Require().NoError(err)
	s.Require().True(held.Acquired())
	s.clock.Advance(2 * time.Second)

	home := s.startRound(id, 0)
	s.Equal("TRUTH", home.Address.Zipcode)
}

func (s *ControllerSuite) TestAdvanceReleasesLock() {
	id, _, _ := s.createPlaying()
	s.startRound(id, 0)

	lock, err := s.locker.AcquireLock(s.ctx, storage.AdvanceLockKey(id), time.Second)
	s.Require().NoError(err)
	s.True(lock.Acquired())
}

func (s *ControllerSuite) TestAdvanceReleasesLockOnError() {
	_, err := s.controller.Advance(s.ctx, "nonexistent")
	s.Require().ErrorIs(err, model.ErrSessionNotFound)

	lock, err := s.locker.AcquireLock(s.ctx, storage.AdvanceLockKey("nonexistent"), time.Second)
	s.Require().NoError(err)
	s.True(lock.Acquired())
}

func (s *ControllerSuite) TestAdvanceReleasesLockOnSaveFailure() {
	id, _, _ := s.createPlaying()
	controller := s.newController(failingStorage{Storage: s.storage}, s.locker)

	_, err := controller.Advance(s.ctx, id)
	s.ErrorIs(err, model.ErrStoreUnavailable)

	lock, err := s.locker.AcquireLock(s.ctx, storage.AdvanceLockKey(id), time.Second)
	s.Require().NoError(err)
	s.True(lock.Acquired())
}

func (s *ControllerSuite) TestAdvanceFallsBackWhenLockUnavailable() {
	id, _, _ := s.createPlaying()
	s.startRound(id, 1)
	controller := s.newController(s.storage, failingLocker{})

	home, err := controller.Advance(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("EAST", home.Address.Zipcode)

	stored, _ := s.controller.Get(s.ctx, id)
	s.Len(stored.Homes, 1)
}

func (s *ControllerSuite) TestAdvanceFinishedReturnsLastHome() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.setScores(id, 1990, 0)
	s.guess(id, alice, "EAST")
	s.guess(id, bob, "TRUTH")
	s.score(id)

	home, err := s.controller.Advance(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("TRUTH", home.Address.Zipcode)

	stored, _ := s.controller.Get(s.ctx, id)
	s.Len(stored.Homes, 1)
}

func (s *ControllerSuite) TestAdvanceHomeIsCopy() {
	id, _, _ := s.createPlaying()
	home := s.startRound(id, 0)
	home.Images[0] = "mutated.jpg"

	stored, _ := s.controller.Get(s.ctx, id)
	s.Equal("t.jpg", stored.Homes[0].Images[0])
	again, _ := s.catalog.LookupZip("TRUTH")
	s.Equal(40.0, again.Lat)
}

// Guess tests

func (s *ControllerSuite) TestGuessRecordsAndBroadcasts() {
	id, alice, _ := s.createPlaying()
	s.startRound(id, 0)
	updates := s.notifier.updates()

	err := s.controller.Guess(s.ctx, id, alice, " 19102 ")
	s.Require().NoError(err)

	stored, _ := s.controller.Get(s.ctx, id)
	s.Equal("19102", stored.Guesses[alice])
	s.Equal(updates+1, s.notifier.updates())
	s.Equal("19102", s.notifier.last().Guesses[alice])
}

func (s *ControllerSuite) TestGuessLastWriteWins() {
	id, alice, _ := s.createPlaying()
	s.startRound(id, 0)

	s.guess(id, alice, "EAST")
	s.guess(id, alice, "FAR")

	stored, _ := s.controller.Get(s.ctx, id)
	s.Len(stored.Guesses, 1)
	s.Equal("FAR", stored.Guesses[alice])
}

func (s *ControllerSuite) TestGuessNotFound() {
	err := s.controller.Guess(s.ctx, "nonexistent", "p1", "EAST")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestGuessUnknownPlayer() {
	id, _, _ := s.createPlaying()
	s.startRound(id, 0)

	err := s.controller.Guess(s.ctx, id, "stranger", "EAST")
	s.ErrorIs(err, model.ErrPlayerNotInSession)
}

func (s *ControllerSuite) TestGuessBeforeFirstRound() {
	id, alice, _ := s.createPlaying()

	err := s.controller.Guess(s.ctx, id, alice, "EAST")
	s.ErrorIs(err, model.ErrNoActiveRound)
}

func (s *ControllerSuite) TestGuessAfterScoring() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.guess(id, alice, "EAST")
	s.guess(id, bob, "TRUTH")
	s.score(id)

	err := s.controller.Guess(s.ctx, id, alice, "TRUTH")
	s.ErrorIs(err, model.ErrRoundScored)
}

func (s *ControllerSuite) TestGuessFinishedSession() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.setScores(id, 1990, 0)
	s.guess(id, alice, "EAST")
	s.guess(id, bob, "TRUTH")
	s.score(id)

	err := s.controller.Guess(s.ctx, id, bob, "EAST")
	s.ErrorIs(err, model.ErrSessionFinished)
}

// Score tests

func (s *ControllerSuite) TestScoreAppliesDistancePenalty() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.guess(id, alice, "EAST")
	s.guess(id, bob, "TRUTH")

	result, err := s.controller.Score(s.ctx, id)
	s.Require().NoError(err)

	s.Equal(11, result.Players[0].Score)
	s.Equal(0, result.Players[1].Score)
	s.Equal(model.SessionStatePlaying, result.State)
	s.Nil(result.Loser)

	stored, _ := s.controller.Get(s.ctx, id)
	s.True(stored.RoundScored)
	s.Equal(11, stored.Players[0].Score)
}

func (s *ControllerSuite) TestScoreWithOneGuess() {
	id, alice, _ := s.createPlaying()
	s.startRound(id, 0)
	s.guess(id, alice, "EAST")

	_, err := s.controller.Score(s.ctx, id)
	s.ErrorIs(err, model.ErrNotAllGuessed)

	stored, _ := s.controller.Get(s.ctx, id)
	s.Equal(0, stored.Players[0].Score)
	s.False(stored.RoundScored)
}

func (s *ControllerSuite) TestScoreWithOnePlayer() {
	session, _, _ := s.controller.Create(s.ctx, "Alice")

	_, err := s.controller.Score(s.ctx, session.ID)
	s.ErrorIs(err, model.ErrNotAllGuessed)
}

func (s *ControllerSuite) TestScoreNotFound() {
	_, err := s.controller.Score(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestScoreUnknownZipNoPenalty() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.guess(id, alice, "00000")
	s.guess(id, bob, "EAST")

	result, err := s.controller.Score(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(0, result.Players[0].Score)
	s.Equal(11, result.Players[1].Score)
}

func (s *ControllerSuite) TestScoreIsIdempotentPerRound() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.guess(id, alice, "EAST")
	s.guess(id, bob, "EAST")

	first, _ := s.controller.Score(s.ctx, id)
	updates := s.notifier.updates()
	second, err := s.controller.Score(s.ctx, id)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(11, second.Players[0].Score)
	s.Equal(updates, s.notifier.updates())
}

func (s *ControllerSuite) TestScoreReachingThresholdEndsGame() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.setScores(id, 1989, 0)
	s.guess(id, alice, "EAST")
	s.guess(id, bob, "TRUTH")

	result, err := s.controller.Score(s.ctx, id)
	s.Require().NoError(err)

	s.Equal(2000, result.Players[0].Score)
	s.Equal(model.SessionStateFinished, result.State)
	s.Require().NotNil(result.Loser)
	s.Equal(alice, result.Loser.ID)

	stored, _ := s.controller.Get(s.ctx, id)
	s.Equal(model.SessionStateFinished, stored.State)
	s.Equal(alice, stored.LoserID)
}

func (s *ControllerSuite) TestScoreBothOverThresholdHighestLoses() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.setScores(id, 1995, 2000)
	s.guess(id, alice, "EAST")
	s.guess(id, bob, "TRUTH")

	result, err := s.controller.Score(s.ctx, id)
	s.Require().NoError(err)

	s.Require().NotNil(result.Loser)
	s.Equal(alice, result.Loser.ID)
	s.Equal(2006, result.Loser.Score)
	s.Equal(bob, result.Players[1].ID)
	s.Equal(2000, result.Players[1].Score)
}

func (s *ControllerSuite) TestScoreAfterGameOverReturnsFinalResult() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.setScores(id, 0, 1995)
	s.guess(id, alice, "TRUTH")
	s.guess(id, bob, "EAST")
	s.score(id)

	result, err := s.controller.Score(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.SessionStateFinished, result.State)
	s.Require().NotNil(result.Loser)
	s.Equal(bob, result.Loser.ID)
	s.Equal(2006, result.Loser.Score)
}

// Leave tests

func (s *ControllerSuite) TestLeaveIsIdempotent() {
	id, alice, _ := s.createPlaying()

	s.Require().NoError(s.controller.Leave(s.ctx, id, alice))
	updates := s.notifier.updates()
	s.Require().NoError(s.controller.Leave(s.ctx, id, alice))

	stored, _ := s.controller.Get(s.ctx, id)
	s.Len(stored.Players, 1)
	s.Equal(updates, s.notifier.updates())
}

func (s *ControllerSuite) TestLeaveDuringMatchReturnsToWaiting() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.guess(id, alice, "EAST")
	s.guess(id, bob, "EAST")

	s.Require().NoError(s.controller.Leave(s.ctx, id, bob))

	stored, _ := s.controller.Get(s.ctx, id)
	s.Equal(model.SessionStateWaiting, stored.State)
	s.Len(stored.Players, 1)
	s.NotContains(stored.Guesses, bob)
	s.Contains(stored.Guesses, alice)
	s.NoError(stored.Validate())
}

func (s *ControllerSuite) TestLeaveLastPlayerFinishes() {
	session, alice, _ := s.controller.Create(s.ctx, "Alice")

	s.Require().NoError(s.controller.Leave(s.ctx, session.ID, alice))

	stored, _ := s.controller.Get(s.ctx, session.ID)
	s.Equal(model.SessionStateFinished, stored.State)
	s.Empty(stored.Players)
	s.Equal(model.SessionStateFinished, s.notifier.last().State)
}

func (s *ControllerSuite) TestLeaveFinishedSessionIsNoop() {
	id, alice, bob := s.createPlaying()
	s.startRound(id, 0)
	s.setScores(id, 1990, 0)
	s.guess(id, alice, "EAST")
	s.guess(id, bob, "TRUTH")
	s.score(id)

	s.Require().NoError(s.controller.Leave(s.ctx, id, bob))

	stored, _ := s.controller.Get(s.ctx, id)
	s.Len(stored.Players, 2)
	s.Equal(model.SessionStateFinished, stored.State)
}

func (s *ControllerSuite) TestLeaveNotFound() {
	err := s.controller.Leave(s.ctx, "nonexistent", "p1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Delete tests

func (s *ControllerSuite) TestDelete() {
	session, _, _ := s.controller.Create(s.ctx, "Alice")

	s.Require().NoError(s.controller.Delete(s.ctx, session.ID))

	_, err := s.controller.Get(s.ctx, session.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.Equal([]model.SessionID{session.ID}, s.notifier.deleted)
}

func (s *ControllerSuite) TestDeleteNotFound() {
	err := s.controller.Delete(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.Empty(s.notifier.deleted)
}

// Full match

func (s *ControllerSuite) TestThreeRoundMatch() {
	id, alice, bob := s.createPlaying()

	for round, idx := range []int{0, 1, 2} {
		s.startRound(id, idx)
		s.guess(id, alice, "TRUTH")
		s.guess(id, bob, "EAST")
		_, err := s.controller.Score(s.ctx, id)
		s.Require().NoError(err)

		stored, _ := s.controller.Get(s.ctx, id)
		s.Equal(round+1, stored.Round())
		s.NoError(stored.Validate())
	}

	stored, _ := s.controller.Get(s.ctx, id)
	s.Len(stored.Homes, 3)
	s.Equal(model.SessionStatePlaying, stored.State)
	s.Equal(3, s.notifier.last().Round())
}
