// Package memory provides an in-process URL repository. Records live for the
// lifetime of the process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vadimbarashkov/short-url/internal/entity"
)

type URLRepository struct {
	mu         sync.RWMutex
	byToken    map[string]*entity.URL
	byOriginal map[string][]string
}

func NewURLRepository() *URLRepository {
	return &URLRepository{
		byToken:    make(map[string]*entity.URL),
		byOriginal: make(map[string][]string),
	}
}

func (r *URLRepository) Save(_ context.Context, url *entity.URL) error {
	const op = "adapter.repository.memory.URLRepository.Save"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byToken[url.ShortToken]; ok {
		return fmt.Errorf("%s: %w", op, entity.ErrShortTokenExists)
	}

	rec := *url
	r.byToken[rec.ShortToken] = &rec
	r.byOriginal[rec.OriginalURL] = append(r.byOriginal[rec.OriginalURL], rec.ShortToken)

	return nil
}

func (r *URLRepository) FindByShortToken(_ context.Context, shortToken string) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.FindByShortToken"

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byToken[shortToken]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	url := *rec
	return &url, nil
}

func (r *URLRepository) FindByOriginalURL(_ context.Context, originalURL string) ([]*entity.URL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shortTokens := r.byOriginal[originalURL]
	urls := make([]*entity.URL, 0, len(shortTokens))

	for _, shortToken := range shortTokens {
		url := *r.byToken[shortToken]
		urls = append(urls, &url)
	}

	return urls, nil
}

// IncrementVisitCount adds one visit under the write lock, so concurrent
// calls never lose an update.
func (r *URLRepository) IncrementVisitCount(_ context.Context, shortToken string) (int64, error) {
	const op = "adapter.repository.memory.URLRepository.IncrementVisitCount"

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byToken[shortToken]
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	rec.VisitCount++

	return rec.VisitCount, nil
}

func (r *URLRepository) Ping(_ context.Context) error {
	return nil
}

func (r *URLRepository) Close() error {
	return nil
}
