package memory

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/homeguess/internal/dependencies/mocks"
	"github.com/mcoot/homeguess/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func newSession() *model.Session {
	return &model.Session{
		ID:      "session-1",
		Players: []model.Player{{ID: "p1", Name: "Alice"}},
		State:   model.SessionStateWaiting,
		Guesses: map[model.PlayerID]string{},
	}
}

func (s *StorageSuite) TestSaveAndGetSession() {
	session := newSession()

	err := s.storage.SaveSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(session.ID, retrieved.ID)
	s.Equal("Alice", retrieved.Players[0].Name)
	s.Equal(model.SessionStateWaiting, retrieved.State)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSession() {
	_ = s.storage.SaveSession(s.ctx, newSession())

	err := s.storage.DeleteSession(s.ctx, "session-1")
	s.Require().NoError(err)

	_, err = s.storage.GetSession(s.ctx, "session-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.Equal(0, s.storage.Len())
}

func (s *StorageSuite) TestDeleteMissingSessionSucceeds() {
	s.NoError(s.storage.DeleteSession(s.ctx, "nonexistent"))
}

func (s *StorageSuite) TestSavedSessionIsCopied() {
	session := newSession()
	_ = s.storage.SaveSession(s.ctx, session)

	session.Players[0].Score = 500
	session.Guesses["p1"] = "10001"

	retrieved, err := s.storage.GetSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(0, retrieved.Players[0].Score)
	s.Empty(retrieved.Guesses)
}

func (s *StorageSuite) TestRetrievedSessionIsCopied() {
	_ = s.storage.SaveSession(s.ctx, newSession())

	first, _ := s.storage.GetSession(s.ctx, "session-1")
	first.Players[0].Name = "Mallory"

	second, _ := s.storage.GetSession(s.ctx, "session-1")
	s.Equal("Alice", second.Players[0].Name)
}

func (s *StorageSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.storage.GetSession(ctx, "session-1")
	s.ErrorIs(err, context.Canceled)
}

type LockerSuite struct {
	suite.Suite
	clock  *clockwork.FakeClock
	locker *Locker
	ctx    context.Context
}

func TestLockerSuite(t *testing.T) {
	suite.Run(t, new(LockerSuite))
}

func (s *LockerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(mocks.Epoch)
	s.locker = NewLocker(s.clock)
	s.ctx = context.Background()
}

func (s *LockerSuite) TestAcquireFreeLock() {
	lock, err := s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)
	s.Require().NoError(err)
	s.True(lock.Acquired())
	s.NotEmpty(lock.Token)
}

func (s *LockerSuite) TestAcquireHeldLock() {
	_, _ = s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)

	lock, err := s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)
	s.Require().NoError(err)
	s.False(lock.Acquired())
	s.Empty(lock.Token)
}

func (s *LockerSuite) TestLocksAreIndependentPerKey() {
	_, _ = s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)

	lock, err := s.locker.AcquireLock(s.ctx, "advance:s2", 2*time.Second)
	s.Require().NoError(err)
	s.True(lock.Acquired())
}

func (s *LockerSuite) TestReleaseFreesLock() {
	first, _ := s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)
	s.Require().NoError(s.locker.ReleaseLock(s.ctx, first))

	second, err := s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)
	s.Require().NoError(err)
	s.True(second.Acquired())
}

func (s *LockerSuite) TestLockExpires() {
	_, _ = s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)

	s.clock.Advance(2 * time.Second)

	lock, err := s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)
	s.Require().NoError(err)
	s.True(lock.Acquired())
}

func (s *LockerSuite) TestStaleReleaseKeepsNewHolder() {
	stale, _ := s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)
	s.clock.Advance(3 * time.Second)
	current, _ := s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)
	s.Require().True(current.Acquired())

	s.Require().NoError(s.locker.ReleaseLock(s.ctx, stale))

	again, err := s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)
	s.Require().NoError(err)
	s.False(again.Acquired())
}

func (s *LockerSuite) TestReleaseNotAcquiredIsNoop() {
	_, _ = s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)

	other, _ := s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)
	s.NoError(s.locker.ReleaseLock(s.ctx, other))

	again, _ := s.locker.AcquireLock(s.ctx, "advance:s1", 2*time.Second)
	s.False(again.Acquired())
}
