package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vadimbarashkov/short-url/internal/entity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultShortTokenLength = 8
	DefaultMaxAttempts      = 10
)

// ErrMaxAttemptsExceeded is returned when every generated short token collided with an existing one.
var ErrMaxAttemptsExceeded = errors.New("maximum attempts exceeded for generating short token")

type urlRepository interface {
	FindByShortToken(ctx context.Context, shortToken string) (*entity.URL, error)
	FindByOriginalURL(ctx context.Context, originalURL string) ([]*entity.URL, error)
	Save(ctx context.Context, url *entity.URL) error
	IncrementVisitCount(ctx context.Context, shortToken string) (int64, error)
}

// Option configures a URLUseCase.
type Option func(*URLUseCase)

// WithShortTokenLength sets the length of generated short tokens.
func WithShortTokenLength(n int) Option {
	return func(uc *URLUseCase) {
		uc.shortTokenLength = n
	}
}

// WithMaxAttempts sets how many short tokens are generated before ShortenURL gives up.
func WithMaxAttempts(n int) Option {
	return func(uc *URLUseCase) {
		uc.maxAttempts = n
	}
}

// URLUseCase allocates short tokens and resolves them back to original URLs.
// It keeps no mutable state between calls and is safe for concurrent use.
type URLUseCase struct {
	shortTokenLength int
	maxAttempts      int
	urlRepo          urlRepository
}

func New(urlRepo urlRepository, opts ...Option) *URLUseCase {
	uc := &URLUseCase{
		shortTokenLength: DefaultShortTokenLength,
		maxAttempts:      DefaultMaxAttempts,
		urlRepo:          urlRepo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ShortenURL stores originalURL under a freshly generated short token.
//
// A candidate that is already taken, either by the lookup or by the repository
// rejecting the insert, is discarded and a new one is generated.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	if originalURL == "" {
		return nil, fmt.Errorf("%s: original url is required: %w", op, entity.ErrInvalidInput)
	}

	for i := 0; i < uc.maxAttempts; i++ {
		shortToken, err := gonanoid.New(uc.shortTokenLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short token: %w: %w", op, entity.ErrInternal, err)
		}

		_, err = uc.urlRepo.FindByShortToken(ctx, shortToken)
		if err == nil {
			continue
		}
		if !errors.Is(err, entity.ErrURLNotFound) {
			return nil, fmt.Errorf("%s: failed to check short token: %w: %w", op, entity.ErrInternal, err)
		}

		url := &entity.URL{
			ID:          uuid.NewString(),
			ShortToken:  shortToken,
			OriginalURL: originalURL,
			CreatedAt:   time.Now().UTC(),
		}

		if err := uc.urlRepo.Save(ctx, url); err != nil {
			if errors.Is(err, entity.ErrShortTokenExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w: %w", op, entity.ErrInternal, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w: %w", op, entity.ErrInternal, ErrMaxAttemptsExceeded)
}

// ResolveShortToken returns the original URL behind shortToken and counts the visit.
func (uc *URLUseCase) ResolveShortToken(ctx context.Context, shortToken string) (string, error) {
	const op = "usecase.URLUseCase.ResolveShortToken"

	url, err := uc.findByShortToken(ctx, op, shortToken)
	if err != nil {
		return "", err
	}

	if _, err := uc.urlRepo.IncrementVisitCount(ctx, shortToken); err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			return "", fmt.Errorf("%s: %w: %s", op, entity.ErrURLNotFound, shortToken)
		}

		return "", fmt.Errorf("%s: failed to count visit: %w: %w", op, entity.ErrInternal, err)
	}

	return url.OriginalURL, nil
}

// ListShortTokens returns every short token issued for originalURL, in no particular order.
func (uc *URLUseCase) ListShortTokens(ctx context.Context, originalURL string) ([]string, error) {
	const op = "usecase.URLUseCase.ListShortTokens"

	if originalURL == "" {
		return nil, fmt.Errorf("%s: original url is required: %w", op, entity.ErrInvalidInput)
	}

	urls, err := uc.urlRepo.FindByOriginalURL(ctx, originalURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list short tokens: %w: %w", op, entity.ErrInternal, err)
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("%s: %w: %s", op, entity.ErrURLNotFound, originalURL)
	}

	shortTokens := make([]string, 0, len(urls))
	for _, url := range urls {
		shortTokens = append(shortTokens, url.ShortToken)
	}

	return shortTokens, nil
}

func (uc *URLUseCase) GetVisitCount(ctx context.Context, shortToken string) (int64, error) {
	const op = "usecase.URLUseCase.GetVisitCount"

	url, err := uc.findByShortToken(ctx, op, shortToken)
	if err != nil {
		return 0, err
	}

	return url.VisitCount, nil
}

func (uc *URLUseCase) GetURLDetails(ctx context.Context, shortToken string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.GetURLDetails"

	return uc.findByShortToken(ctx, op, shortToken)
}

func (uc *URLUseCase) findByShortToken(ctx context.Context, op, shortToken string) (*entity.URL, error) {
	url, err := uc.urlRepo.FindByShortToken(ctx, shortToken)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			return nil, fmt.Errorf("%s: %w: %s", op, entity.ErrURLNotFound, shortToken)
		}

		return nil, fmt.Errorf("%s: failed to find url: %w: %w", op, entity.ErrInternal, err)
	}

	return url, nil
}
