package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mcoot/homeguess/internal/model"
)

const (
	natsSubjectPrefix = "homeguess.sessions"
	natsPingTimeout   = 2 * time.Second
)

// NATSConfig holds connection settings for the NATS bus
type NATSConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns default NATS settings
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// NATS fans events out over core NATS subjects
type NATS struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewNATS connects to NATS
func NewNATS(cfg NATSConfig, logger *slog.Logger) (*NATS, error) {
	logger = logger.With(slog.String("component", "pubsub.nats"))
	opts := []nats.Option{
		nats.Name("homeguess"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATS{nc: nc, logger: logger}, nil
}

// Ensure NATS implements the interface
var _ Bus = (*NATS)(nil)

// natsSubject returns e.g. homeguess.sessions.<id>.updated
func natsSubject(id model.SessionID, kind EventKind) string {
	return fmt.Sprintf("%s.%s.%s", natsSubjectPrefix, id, kind)
}

func (b *NATS) Publish(ctx context.Context, event Event) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}
	if err := b.nc.Publish(natsSubject(event.SessionID, event.Kind), data); err != nil {
		return fmt.Errorf("publish %s: %w", event.SessionID, err)
	}
	return nil
}

func (b *NATS) Subscribe(ctx context.Context, handler Handler) error {
	sub, err := b.nc.Subscribe(natsSubjectPrefix+".>", func(msg *nats.Msg) {
		event, err := decodeEvent(msg.Data)
		if err != nil {
			b.logger.Warn("dropping malformed event",
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()),
			)
			return
		}
		handler(event)
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	if err := b.nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return fmt.Errorf("subscribe: %w", err)
	}

	<-ctx.Done()
	return sub.Unsubscribe()
}

// Ping checks the connection is up
func (b *NATS) Ping(ctx context.Context) error {
	if !b.nc.IsConnected() {
		return fmt.Errorf("nats: %s", b.nc.Status())
	}
	// FlushWithContext rejects contexts without a deadline
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, natsPingTimeout)
		defer cancel()
	}
	return b.nc.FlushWithContext(ctx)
}

func (b *NATS) Close() error {
	b.nc.Close()
	return nil
}
