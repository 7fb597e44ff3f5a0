package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyStore has the same layout as RedisStore but talks to Valkey
// through its native client.
type ValkeyStore struct {
	client valkey.Client
	ttl    time.Duration
}

func NewValkeyStore(addr string, ttl time.Duration) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}

	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &ValkeyStore{client: client, ttl: ttl}, nil
}

var _ Store = (*ValkeyStore)(nil)

func (s *ValkeyStore) set(ctx context.Context, k Key, value string) error {
	cmds := valkey.Commands{
		s.client.B().Hset().Key(k.Bucket()).FieldValue().FieldValue(k.Field(), value).Build(),
		s.client.B().Expire().Key(k.Bucket()).Seconds(int64(s.ttl / time.Second)).Build(),
	}
	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("valkey set: %w", err)
		}
	}
	return nil
}

func (s *ValkeyStore) MarkSeeded(ctx context.Context, k Key) error {
	return s.set(ctx, k, encodeStatus(StatusSeeded, ""))
}

func (s *ValkeyStore) MarkFailed(ctx context.Context, k Key, reason string) error {
	return s.set(ctx, k, encodeStatus(StatusFailed, reason))
}

func (s *ValkeyStore) IsSeeded(ctx context.Context, k Key) (bool, error) {
	v, err := s.client.Do(ctx, s.client.B().Hget().Key(k.Bucket()).Field(k.Field()).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("valkey get: %w", err)
	}
	return decodeStatus(v) == StatusSeeded, nil
}

func (s *ValkeyStore) Stats(ctx context.Context, layer string, zoom int) (Stats, error) {
	values, err := s.client.Do(ctx, s.client.B().Hvals().Key(Key{Layer: layer, Zoom: zoom}.Bucket()).Build()).AsStrSlice()
	if err != nil {
		return Stats{}, fmt.Errorf("valkey stats: %w", err)
	}
	return countStatuses(values), nil
}

func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}
