package repository

import (
	"context"
	"strconv"
	"time"

	redisapp "imager/internal/storage/redis"
)

// RedisTokenRepo keeps the set of outstanding activation tokens.
type RedisTokenRepo struct {
	Client *redisapp.Client
}

func NewRedisTokenRepo(client *redisapp.Client) *RedisTokenRepo {
	return &RedisTokenRepo{Client: client}
}

func (r *RedisTokenRepo) SaveActivationToken(ctx context.Context, userID int64, token string, exp time.Duration) error {
	return r.Client.Set(ctx, activationTokenKey(userID, token), "1", exp).Err()
}

// ConsumeActivationToken deletes the token and reports whether it was still
// outstanding. Only one of several concurrent callers gets true.
func (r *RedisTokenRepo) ConsumeActivationToken(ctx context.Context, userID int64, token string) (bool, error) {
	n, err := r.Client.Del(ctx, activationTokenKey(userID, token)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func activationTokenKey(userID int64, token string) string {
	return "activation:" + strconv.FormatInt(userID, 10) + ":" + token
}
