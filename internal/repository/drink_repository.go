package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/coffee-shop/internal/domain"
)

var (
	// ErrNotFound reports that no drink has the requested id.
	ErrNotFound = errors.New("drink not found")
	// ErrDuplicateTitle reports a violation of the unique title constraint.
	ErrDuplicateTitle = errors.New("drink title already exists")
)

// DrinkRepository encapsulates drink persistence.
type DrinkRepository interface {
	List(ctx context.Context) ([]domain.Drink, error)
	GetByID(ctx context.Context, id int64) (*domain.Drink, error)
	Create(ctx context.Context, drink *domain.Drink) error
	Update(ctx context.Context, id int64, patch domain.DrinkPatch) (*domain.Drink, error)
	Delete(ctx context.Context, id int64) error
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
}

type rowScanner interface {
	Scan(dest ...any) error
}

type pgDrinkRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresDrinkRepository instantiates the PostgreSQL repository.
func NewPostgresDrinkRepository(pool *pgxpool.Pool) DrinkRepository {
	return &pgDrinkRepository{pool: pool}
}

func (r *pgDrinkRepository) List(ctx context.Context) ([]domain.Drink, error) {
	const query = `
        SELECT id, title, recipe, created_at, updated_at
        FROM drinks ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Drink{}
	for rows.Next() {
		drink, err := scanPgDrink(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *drink)
	}
	return result, rows.Err()
}

func (r *pgDrinkRepository) GetByID(ctx context.Context, id int64) (*domain.Drink, error) {
	const query = `
        SELECT id, title, recipe, created_at, updated_at
        FROM drinks WHERE id=$1`
	drink, err := scanPgDrink(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return drink, nil
}

func (r *pgDrinkRepository) Create(ctx context.Context, drink *domain.Drink) error {
	recipe, err := domain.EncodeRecipe(drink.Recipe)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO drinks (title, recipe)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	err = r.pool.QueryRow(ctx, query, drink.Title, recipe).Scan(&drink.ID, &drink.CreatedAt, &drink.UpdatedAt)
	return mapPgError(err)
}

func (r *pgDrinkRepository) Update(ctx context.Context, id int64, patch domain.DrinkPatch) (*domain.Drink, error) {
	var title, recipe any
	if patch.Title != nil {
		title = *patch.Title
	}
	if patch.Recipe != nil {
		encoded, err := domain.EncodeRecipe(*patch.Recipe)
		if err != nil {
			return nil, err
		}
		recipe = encoded
	}
	const query = `
        UPDATE drinks SET title=COALESCE($1::varchar, title), recipe=COALESCE($2::jsonb, recipe), updated_at=NOW()
        WHERE id=$3
        RETURNING id, title, recipe, created_at, updated_at`
	drink, err := scanPgDrink(r.pool.QueryRow(ctx, query, title, recipe, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return drink, nil
}

func (r *pgDrinkRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM drinks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgDrinkRepository) Reset(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `TRUNCATE drinks RESTART IDENTITY`)
	return err
}

func (r *pgDrinkRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanPgDrink(row rowScanner) (*domain.Drink, error) {
	var (
		drink  domain.Drink
		recipe []byte
	)
	if err := row.Scan(&drink.ID, &drink.Title, &recipe, &drink.CreatedAt, &drink.UpdatedAt); err != nil {
		return nil, err
	}
	decoded, err := domain.DecodeRecipe(recipe)
	if err != nil {
		return nil, fmt.Errorf("drink %d: %w", drink.ID, err)
	}
	drink.Recipe = decoded
	return &drink, nil
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrDuplicateTitle, pgErr.Detail)
		case "22001":
			return &domain.ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", domain.MaxTitleLength)}
		case "23514":
			return &domain.ValidationError{Field: "recipe", Message: "recipe must be a list of ingredients"}
		}
	}
	return err
}
