package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/siplanskills/backend/internal/logger"
)

// RefreshBus is the progress refresh-generation counter: every
// successful completion or track write bumps the account's generation,
// and aggregate consumers re-fetch when they observe a new value. The
// signal is advisory; there is no ordering guarantee beyond
// "eventually, on next poll".
type RefreshBus interface {
	Bump(ctx context.Context, accountID string) (int64, error)
	Generation(ctx context.Context, accountID string) (int64, error)
	StartForwarder(ctx context.Context, onBump func(accountID string, generation int64)) error
	Close() error
}

type refreshBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRefreshBus(log *logger.Logger) (RefreshBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_REFRESH_CHANNEL"))
	if ch == "" {
		ch = "progress-refresh"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &refreshBus{
		log:     log.With("service", "RedisRefreshBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func genKey(accountID string) string {
	return "progress:gen:" + accountID
}

func (b *refreshBus) Bump(ctx context.Context, accountID string) (int64, error) {
	if b == nil || b.rdb == nil {
		return 0, fmt.Errorf("refresh bus not initialized")
	}
	gen, err := b.rdb.Incr(ctx, genKey(accountID)).Result()
	if err != nil {
		return 0, err
	}
	payload := fmt.Sprintf("%s:%d", accountID, gen)
	if pubErr := b.rdb.Publish(ctx, b.channel, payload).Err(); pubErr != nil {
		// Counter bump already landed; fanout is best effort.
		b.log.Warn("Refresh fanout publish failed", "error", pubErr)
	}
	return gen, nil
}

func (b *refreshBus) Generation(ctx context.Context, accountID string) (int64, error) {
	if b == nil || b.rdb == nil {
		return 0, fmt.Errorf("refresh bus not initialized")
	}
	gen, err := b.rdb.Get(ctx, genKey(accountID)).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return gen, nil
}

func (b *refreshBus) StartForwarder(ctx context.Context, onBump func(accountID string, generation int64)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("refresh bus not initialized")
	}
	if onBump == nil {
		return fmt.Errorf("onBump callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer func() { _ = sub.Close() }()
		chMsgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-chMsgs:
				if !ok {
					return
				}
				accountID, gen := parseBumpPayload(msg.Payload)
				if accountID == "" {
					continue
				}
				onBump(accountID, gen)
			}
		}
	}()
	return nil
}

func parseBumpPayload(payload string) (string, int64) {
	idx := strings.LastIndex(payload, ":")
	if idx <= 0 {
		return "", 0
	}
	var gen int64
	if _, err := fmt.Sscanf(payload[idx+1:], "%d", &gen); err != nil {
		return "", 0
	}
	return payload[:idx], gen
}

func (b *refreshBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
