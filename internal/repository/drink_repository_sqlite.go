package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/spec-kit/coffee-shop/internal/domain"
)

type sqliteDrinkRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteDrinkRepository instantiates the SQLite repository.
func NewSQLiteDrinkRepository(db *sql.DB) DrinkRepository {
	return &sqliteDrinkRepository{db: db, now: time.Now}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func (r *sqliteDrinkRepository) List(ctx context.Context) ([]domain.Drink, error) {
	const query = `
        SELECT id, title, recipe, created_at, updated_at
        FROM drinks ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Drink{}
	for rows.Next() {
		drink, err := scanSQLiteDrink(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *drink)
	}
	return result, rows.Err()
}

func (r *sqliteDrinkRepository) GetByID(ctx context.Context, id int64) (*domain.Drink, error) {
	const query = `
        SELECT id, title, recipe, created_at, updated_at
        FROM drinks WHERE id=?`
	drink, err := scanSQLiteDrink(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return drink, nil
}

func (r *sqliteDrinkRepository) Create(ctx context.Context, drink *domain.Drink) error {
	recipe, err := domain.EncodeRecipe(drink.Recipe)
	if err != nil {
		return err
	}
	now := toMillis(r.now())
	const query = `
        INSERT INTO drinks (title, recipe, created_at, updated_at)
        VALUES (?,?,?,?)
        RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, drink.Title, string(recipe), now, now).Scan(&drink.ID); err != nil {
		return mapSQLiteError(err)
	}
	drink.CreatedAt = fromMillis(now)
	drink.UpdatedAt = fromMillis(now)
	return nil
}

func (r *sqliteDrinkRepository) Update(ctx context.Context, id int64, patch domain.DrinkPatch) (*domain.Drink, error) {
	var title, recipe any
	if patch.Title != nil {
		title = *patch.Title
	}
	if patch.Recipe != nil {
		encoded, err := domain.EncodeRecipe(*patch.Recipe)
		if err != nil {
			return nil, err
		}
		recipe = string(encoded)
	}
	const query = `
        UPDATE drinks SET title=COALESCE(?, title), recipe=COALESCE(?, recipe), updated_at=?
        WHERE id=?
        RETURNING id, title, recipe, created_at, updated_at`
	drink, err := scanSQLiteDrink(r.db.QueryRowContext(ctx, query, title, recipe, toMillis(r.now()), id))
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return drink, nil
}

func (r *sqliteDrinkRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drinks WHERE id=?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteDrinkRepository) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM drinks`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name='drinks'`); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *sqliteDrinkRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanSQLiteDrink(row rowScanner) (*domain.Drink, error) {
	var (
		drink            domain.Drink
		recipe           string
		created, updated int64
	)
	if err := row.Scan(&drink.ID, &drink.Title, &recipe, &created, &updated); err != nil {
		return nil, err
	}
	decoded, err := domain.DecodeRecipe([]byte(recipe))
	if err != nil {
		return nil, fmt.Errorf("drink %d: %w", drink.ID, err)
	}
	drink.Recipe = decoded
	drink.CreatedAt = fromMillis(created)
	drink.UpdatedAt = fromMillis(updated)
	return &drink, nil
}

func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", ErrDuplicateTitle, sqliteErr.Error())
		case sqlite3lib.SQLITE_CONSTRAINT_CHECK:
			return &domain.ValidationError{Field: "drink", Message: "drink violates storage constraints"}
		}
	}
	return err
}
