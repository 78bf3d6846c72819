package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/short-url/internal/entity"
)

const (
	urlKeyPrefix      = "short-url:url:"
	originalKeyPrefix = "short-url:original:"
)

// saveScript creates the record hash only when the token is free and indexes it
// by original URL in the same step.
var saveScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1],
	'id', ARGV[1],
	'short_token', ARGV[2],
	'original_url', ARGV[3],
	'visit_count', ARGV[4],
	'created_at', ARGV[5])
redis.call('SADD', KEYS[2], ARGV[2])
return 1
`)

// incrementScript never creates a hash for an unknown token.
var incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
return redis.call('HINCRBY', KEYS[1], 'visit_count', 1)
`)

func urlKey(shortToken string) string {
	return urlKeyPrefix + shortToken
}

func originalKey(originalURL string) string {
	return originalKeyPrefix + originalURL
}

func toEntity(fields map[string]string) (*entity.URL, error) {
	visitCount, err := strconv.ParseInt(fields["visit_count"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid visit_count %q: %w", fields["visit_count"], err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", fields["created_at"], err)
	}

	return &entity.URL{
		ID:          fields["id"],
		ShortToken:  fields["short_token"],
		OriginalURL: fields["original_url"],
		URLStats: entity.URLStats{
			VisitCount: visitCount,
		},
		CreatedAt: createdAt,
	}, nil
}

type URLRepository struct {
	client redis.UniversalClient
}

func NewURLRepository(client redis.UniversalClient) *URLRepository {
	return &URLRepository{client: client}
}

func (r *URLRepository) Save(ctx context.Context, url *entity.URL) error {
	const op = "adapter.repository.redis.URLRepository.Save"

	keys := []string{urlKey(url.ShortToken), originalKey(url.OriginalURL)}
	args := []any{
		url.ID,
		url.ShortToken,
		url.OriginalURL,
		url.VisitCount,
		url.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	created, err := saveScript.Run(ctx, r.client, keys, args...).Int64()
	if err != nil {
		return fmt.Errorf("%s: failed to save url hash: %w", op, err)
	}

	if created == 0 {
		return fmt.Errorf("%s: %w", op, entity.ErrShortTokenExists)
	}

	return nil
}

func (r *URLRepository) FindByShortToken(ctx context.Context, shortToken string) (*entity.URL, error) {
	const op = "adapter.repository.redis.URLRepository.FindByShortToken"

	fields, err := r.client.HGetAll(ctx, urlKey(shortToken)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url hash: %w", op, err)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	url, err := toEntity(fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return url, nil
}

func (r *URLRepository) FindByOriginalURL(ctx context.Context, originalURL string) ([]*entity.URL, error) {
	const op = "adapter.repository.redis.URLRepository.FindByOriginalURL"

	shortTokens, err := r.client.SMembers(ctx, originalKey(originalURL)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get short tokens set: %w", op, err)
	}

	if len(shortTokens) == 0 {
		return []*entity.URL{}, nil
	}

	cmds, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, shortToken := range shortTokens {
			pipe.HGetAll(ctx, urlKey(shortToken))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: failed to get url hashes: %w", op, err)
	}

	urls := make([]*entity.URL, 0, len(cmds))
	for _, cmd := range cmds {
		fields, err := cmd.(*redis.MapStringStringCmd).Result()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to get url hash: %w", op, err)
		}

		if len(fields) == 0 {
			continue
		}

		url, err := toEntity(fields)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		urls = append(urls, url)
	}

	return urls, nil
}

func (r *URLRepository) IncrementVisitCount(ctx context.Context, shortToken string) (int64, error) {
	const op = "adapter.repository.redis.URLRepository.IncrementVisitCount"

	visitCount, err := incrementScript.Run(ctx, r.client, []string{urlKey(shortToken)}).Int64()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to increment visit count: %w", op, err)
	}

	if visitCount < 0 {
		return 0, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return visitCount, nil
}

func (r *URLRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *URLRepository) Close() error {
	return r.client.Close()
}
