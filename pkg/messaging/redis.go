// Package messaging은 여러 인스턴스 사이에 이벤트를 전달하는 Redis Pub/Sub 클라이언트를 제공합니다.
package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDialTimeout = 5 * time.Second

// RedisClient는 패턴 구독과 발행만 노출합니다
type RedisClient interface {
	// Publish는 payload를 그대로 channel에 발행합니다. 직렬화는 호출자 책임입니다.
	Publish(ctx context.Context, channel string, payload []byte) error
	// PSubscribe는 pattern(예: "pxvpay:notifications:*")에 매칭되는 메시지를 전달합니다.
	// ctx가 취소되거나 연결이 닫히면 반환된 채널이 닫힙니다.
	PSubscribe(ctx context.Context, pattern string) (<-chan Message, error)
	Ping(ctx context.Context) error
	Close() error
}

// Message는 수신한 Pub/Sub 메시지입니다
type Message struct {
	Pattern string
	Channel string
	Payload []byte
}

// Options Redis 연결 옵션. Addr에 redis:// 또는 rediss:// URL을 주면 URL 설정이 우선합니다.
type Options struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

func (o Options) redisOptions() (*redis.Options, error) {
	if strings.HasPrefix(o.Addr, "redis://") || strings.HasPrefix(o.Addr, "rediss://") {
		parsed, err := redis.ParseURL(o.Addr)
		if err != nil {
			return nil, fmt.Errorf("잘못된 Redis URL: %w", err)
		}
		return parsed, nil
	}
	dial := o.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}
	return &redis.Options{
		Addr:        o.Addr,
		Password:    o.Password,
		DB:          o.DB,
		DialTimeout: dial,
	}, nil
}

type pubSubClient struct {
	rdb *redis.Client
}

// NewRedisClient는 클라이언트를 만들고 PING으로 연결을 확인합니다.
func NewRedisClient(opts Options) (RedisClient, error) {
	ro, err := opts.redisOptions()
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(ro)

	ctx, cancel := context.WithTimeout(context.Background(), ro.DialTimeout+time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 연결 실패 (%s): %w", ro.Addr, err)
	}
	return &pubSubClient{rdb: rdb}, nil
}

func (c *pubSubClient) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.rdb.Publish(ctx, channel, payload).Err()
}

func (c *pubSubClient) PSubscribe(ctx context.Context, pattern string) (<-chan Message, error) {
	ps := c.rdb.PSubscribe(ctx, pattern)
	// 첫 응답은 구독 확인 메시지입니다
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("패턴 구독 실패 (%s): %w", pattern, err)
	}

	out := make(chan Message)
	go forward(ctx, ps, out)
	return out, nil
}

func forward(ctx context.Context, ps *redis.PubSub, out chan<- Message) {
	defer close(out)
	defer ps.Close()

	in := ps.Channel()
	for {
		var msg *redis.Message
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				return
			}
			msg = m
		}

		select {
		case out <- Message{Pattern: msg.Pattern, Channel: msg.Channel, Payload: []byte(msg.Payload)}:
		case <-ctx.Done():
			return
		}
	}
}

func (c *pubSubClient) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *pubSubClient) Close() error {
	return c.rdb.Close()
}
