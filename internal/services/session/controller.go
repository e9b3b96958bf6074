package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/homeguess/internal/catalog"
	"github.com/mcoot/homeguess/internal/dependencies/clock"
	"github.com/mcoot/homeguess/internal/dependencies/random"
	"github.com/mcoot/homeguess/internal/model"
	"github.com/mcoot/homeguess/internal/services/scoring"
	"github.com/mcoot/homeguess/internal/storage"
)

// Config holds timing settings for the controller
type Config struct {
	// LockTTL bounds how long an advance can hold the per-session lock
	LockTTL time.Duration
	// StoreTimeout bounds every storage call
	StoreTimeout time.Duration
}

// DefaultConfig returns the default controller settings
func DefaultConfig() Config {
	return Config{
		LockTTL:      2 * time.Second,
		StoreTimeout: 3 * time.Second,
	}
}

// Notifier is told about every persisted session change
type Notifier interface {
	SessionUpdated(ctx context.Context, session *model.Session)
	SessionDeleted(ctx context.Context, id model.SessionID)
}

// ScoreResult is the outcome of scoring a round
type ScoreResult struct {
	Players []model.Player
	State   model.SessionState
	Loser   *model.Player
}

// Controller owns the session state machine
type Controller struct {
	storage  storage.Storage
	locker   storage.Locker
	catalog  *catalog.Catalog
	scoring  *scoring.Service
	notifier Notifier
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
	cfg      Config
}

// NewController creates a new SessionController
func NewController(
	storage storage.Storage,
	locker storage.Locker,
	catalog *catalog.Catalog,
	scoringService *scoring.Service,
	notifier Notifier,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	return &Controller{
		storage:  storage,
		locker:   locker,
		catalog:  catalog,
		scoring:  scoringService,
		notifier: notifier,
		clock:    clock,
		random:   random,
		logger:   logger.With(slog.String("component", "session")),
		cfg:      cfg,
	}
}

// Create starts a new session with the given player waiting for an opponent
func (c *Controller) Create(ctx context.Context, playerName string) (*model.Session, model.PlayerID, error) {
	now := c.clock.Now()
	playerID := model.PlayerID(c.random.NewID())

	session := &model.Session{
		ID:        model.SessionID(c.random.NewID()),
		Players:   []model.Player{{ID: playerID, Name: playerName}},
		State:     model.SessionStateWaiting,
		Homes:     []model.PropertyRecord{},
		Guesses:   map[model.PlayerID]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.save(ctx, session); err != nil {
		return nil, "", err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("player_id", string(playerID)),
	)
	c.notifier.SessionUpdated(ctx, session)
	return session, playerID, nil
}

// Get retrieves a session by ID
func (c *Controller) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.load(ctx, id)
}

// Join adds the second player and starts the match
func (c *Controller) Join(ctx context.Context, id model.SessionID, playerName string) (*model.Session, model.PlayerID, error) {
	session, err := c.load(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if session.IsFull() {
		return nil, "", model.ErrSessionFull
	}
	if session.IsFinished() {
		return nil, "", model.ErrSessionFinished
	}

	playerID := model.PlayerID(c.random.NewID())
	session.Players = append(session.Players, model.Player{ID: playerID, Name: playerName})
	if session.IsFull() {
		session.State = model.SessionStatePlaying
	}
	session.UpdatedAt = c.clock.Now()

	if err := c.save(ctx, session); err != nil {
		return nil, "", err
	}

	c.logger.Info("player joined",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(playerID)),
		slog.String("state", string(session.State)),
	)
	c.notifier.SessionUpdated(ctx, session)
	return session, playerID, nil
}

// Advance starts the next round if one is due and returns the current home.
// Concurrent calls for the same session draw at most one home per round;
// callers that lose the race get the current home back. The result is nil
// when no round has started.
func (c *Controller) Advance(ctx context.Context, id model.SessionID) (*model.PropertyRecord, error) {
	lockKey := storage.AdvanceLockKey(id)
	lock, err := c.locker.AcquireLock(ctx, lockKey, c.cfg.LockTTL)
	switch lock.Status {
	case storage.LockAcquired:
		defer c.release(ctx, lock)
	case storage.LockHeld:
		c.logger.Debug("advance lock held, returning current home", slog.String("session_id", string(id)))
		return c.currentHome(ctx, id)
	default:
		c.logger.Warn("advance lock unavailable, returning current home",
			slog.String("session_id", string(id)),
			slog.String("error", errString(err)),
		)
		return c.currentHome(ctx, id)
	}

	session, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.State != model.SessionStatePlaying || !session.NeedsNewRound() {
		return cloneHome(session.CurrentHome()), nil
	}

	home, err := c.catalog.Random(c.random)
	if err != nil {
		return nil, err
	}

	session.Homes = append(session.Homes, home)
	session.Guesses = map[model.PlayerID]string{}
	session.RoundScored = false
	session.UpdatedAt = c.clock.Now()

	if err := c.save(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("round started",
		slog.String("session_id", string(id)),
		slog.Int("round", session.Round()),
		slog.String("zipcode", home.Address.Zipcode),
	)
	c.notifier.SessionUpdated(ctx, session)
	return cloneHome(session.CurrentHome()), nil
}

// Guess records a player's zip code for the current round, replacing any
// earlier guess from that player
func (c *Controller) Guess(ctx context.Context, id model.SessionID, playerID model.PlayerID, zip string) error {
	session, err := c.load(ctx, id)
	if err != nil {
		return err
	}

	if session.IsFinished() {
		return model.ErrSessionFinished
	}
	if session.GetPlayer(playerID) == nil {
		return model.ErrPlayerNotInSession
	}
	if session.CurrentHome() == nil {
		return model.ErrNoActiveRound
	}
	if session.RoundScored {
		return model.ErrRoundScored
	}

	session.Guesses[playerID] = strings.TrimSpace(zip)
	session.UpdatedAt = c.clock.Now()

	if err := c.save(ctx, session); err != nil {
		return err
	}

	c.logger.Info("guess recorded",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(playerID)),
		slog.Int("round", session.Round()),
	)
	c.notifier.SessionUpdated(ctx, session)
	return nil
}

// Score applies distance penalties once both players have guessed. Scoring an
// already scored round returns the stored outcome without re-applying it.
func (c *Controller) Score(ctx context.Context, id model.SessionID) (*ScoreResult, error) {
	session, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !session.AllGuessed() {
		return nil, model.ErrNotAllGuessed
	}
	if session.RoundScored || session.IsFinished() {
		return resultOf(session), nil
	}

	penalties := c.scoring.ScoreRound(session)
	if loser := scoring.FindLoser(session.Players); loser != nil {
		session.State = model.SessionStateFinished
		session.LoserID = loser.ID
	}
	session.UpdatedAt = c.clock.Now()

	if err := c.save(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("round scored",
		slog.String("session_id", string(id)),
		slog.Int("round", session.Round()),
		slog.String("state", string(session.State)),
		slog.Any("penalties", penalties),
		slog.String("loser_id", string(session.LoserID)),
	)

	c.notifier.SessionUpdated(ctx, session)
	return resultOf(session), nil
}

// Leave removes a player from the session. Leaving twice, or leaving a
// finished session, succeeds without changing anything.
func (c *Controller) Leave(ctx context.Context, id model.SessionID, playerID model.PlayerID) error {
	session, err := c.load(ctx, id)
	if err != nil {
		return err
	}

	if session.IsFinished() || session.GetPlayer(playerID) == nil {
		return nil
	}

	remaining := make([]model.Player, 0, len(session.Players))
	for _, p := range session.Players {
		if p.ID != playerID {
			remaining = append(remaining, p)
		}
	}
	session.Players = remaining
	delete(session.Guesses, playerID)

	switch {
	case len(session.Players) == 0:
		session.State = model.SessionStateFinished
	case session.State == model.SessionStatePlaying:
		session.State = model.SessionStateWaiting
	}
	session.UpdatedAt = c.clock.Now()

	if err := c.save(ctx, session); err != nil {
		return err
	}

	c.logger.Info("player left",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(playerID)),
		slog.String("state", string(session.State)),
	)
	c.notifier.SessionUpdated(ctx, session)
	return nil
}

// Delete destroys a session
func (c *Controller) Delete(ctx context.Context, id model.SessionID) error {
	if _, err := c.load(ctx, id); err != nil {
		return err
	}

	storeCtx, cancel := c.storeContext(ctx)
	defer cancel()
	if err := c.storage.DeleteSession(storeCtx, id); err != nil {
		return c.storeError("delete session", id, err)
	}

	c.logger.Info("session deleted", slog.String("session_id", string(id)))
	c.notifier.SessionDeleted(ctx, id)
	return nil
}

func (c *Controller) currentHome(ctx context.Context, id model.SessionID) (*model.PropertyRecord, error) {
	session, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return cloneHome(session.CurrentHome()), nil
}

// release frees the advance lock even if the request context was cancelled
func (c *Controller) release(ctx context.Context, lock storage.LockResult) {
	releaseCtx, cancel := c.storeContext(context.WithoutCancel(ctx))
	defer cancel()
	if err := c.locker.ReleaseLock(releaseCtx, lock); err != nil {
		c.logger.Warn("failed to release lock",
			slog.String("lock", lock.Key),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Controller) load(ctx context.Context, id model.SessionID) (*model.Session, error) {
	storeCtx, cancel := c.storeContext(ctx)
	defer cancel()
	session, err := c.storage.GetSession(storeCtx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, err
		}
		return nil, c.storeError("load session", id, err)
	}
	return session, nil
}

func (c *Controller) save(ctx context.Context, session *model.Session) error {
	storeCtx, cancel := c.storeContext(ctx)
	defer cancel()
	if err := c.storage.SaveSession(storeCtx, session); err != nil {
		return c.storeError("save session", session.ID, err)
	}
	return nil
}

func (c *Controller) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.StoreTimeout)
}

func (c *Controller) storeError(op string, id model.SessionID, err error) error {
	c.logger.Error(op+" failed",
		slog.String("session_id", string(id)),
		slog.String("error", err.Error()),
	)
	return err
}

func resultOf(session *model.Session) *ScoreResult {
	players := make([]model.Player, len(session.Players))
	copy(players, session.Players)

	result := &ScoreResult{Players: players, State: session.State}
	if loser := session.GetLoser(); loser != nil {
		l := *loser
		result.Loser = &l
	}
	return result
}

func cloneHome(home *model.PropertyRecord) *model.PropertyRecord {
	if home == nil {
		return nil
	}
	h := home.Clone()
	return &h
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
