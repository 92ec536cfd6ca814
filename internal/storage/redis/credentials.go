package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// CredentialStore keeps the token pair under "<namespace>:<name>" with no TTL.
type CredentialStore struct {
	client    *redis.Client
	namespace string
}

func NewCredentialStore(client *redis.Client, namespace string) *CredentialStore {
	return &CredentialStore{client: client, namespace: namespace}
}

func (s *CredentialStore) Get(ctx context.Context, name string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *CredentialStore) Set(ctx context.Context, name, value string) error {
	return s.client.Set(ctx, s.key(name), value, 0).Err()
}

func (s *CredentialStore) Clear(ctx context.Context, name string) error {
	return s.client.Del(ctx, s.key(name)).Err()
}

func (s *CredentialStore) key(name string) string {
	return s.namespace + ":" + name
}
