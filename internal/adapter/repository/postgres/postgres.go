package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/short-url/internal/entity"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

type urlDB struct {
	ID          string    `db:"id"`
	ShortToken  string    `db:"short_token"`
	OriginalURL string    `db:"original_url"`
	VisitCount  int64     `db:"visit_count"`
	CreatedAt   time.Time `db:"created_at"`
}

func (u *urlDB) toEntity() *entity.URL {
	return &entity.URL{
		ID:          u.ID,
		ShortToken:  u.ShortToken,
		OriginalURL: u.OriginalURL,
		URLStats: entity.URLStats{
			VisitCount: u.VisitCount,
		},
		CreatedAt: u.CreatedAt,
	}
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

// Save inserts url. The unique constraint on short_token makes the insert the
// authoritative uniqueness check.
func (r *URLRepository) Save(ctx context.Context, url *entity.URL) error {
	const op = "adapter.repository.postgres.URLRepository.Save"
	const query = `INSERT INTO urls(id, short_token, original_url, visit_count, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, url.ID, url.ShortToken, url.OriginalURL, url.VisitCount, url.CreatedAt)
	if err != nil {
		if isUniqueViolationError(err) {
			return fmt.Errorf("%s: %w", op, entity.ErrShortTokenExists)
		}

		return fmt.Errorf("%s: failed to insert into urls table: %w", op, err)
	}

	return nil
}

func (r *URLRepository) FindByShortToken(ctx context.Context, shortToken string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.FindByShortToken"
	const query = `SELECT id, short_token, original_url, visit_count, created_at FROM urls WHERE short_token = $1`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, shortToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return url.toEntity(), nil
}

func (r *URLRepository) FindByOriginalURL(ctx context.Context, originalURL string) ([]*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.FindByOriginalURL"
	const query = `SELECT id, short_token, original_url, visit_count, created_at FROM urls WHERE original_url = $1`

	var rows []urlDB

	if err := r.db.SelectContext(ctx, &rows, query, originalURL); err != nil {
		return nil, fmt.Errorf("%s: failed to select rows from urls table: %w", op, err)
	}

	urls := make([]*entity.URL, 0, len(rows))
	for i := range rows {
		urls = append(urls, rows[i].toEntity())
	}

	return urls, nil
}

func (r *URLRepository) IncrementVisitCount(ctx context.Context, shortToken string) (int64, error) {
	const op = "adapter.repository.postgres.URLRepository.IncrementVisitCount"
	const query = `UPDATE urls SET visit_count = visit_count + 1 WHERE short_token = $1 RETURNING visit_count`

	var visitCount int64

	if err := r.db.GetContext(ctx, &visitCount, query, shortToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return 0, fmt.Errorf("%s: failed to update urls table row: %w", op, err)
	}

	return visitCount, nil
}

func (r *URLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *URLRepository) Close() error {
	return r.db.Close()
}
