// Package repository содержит реализацию хранения корзины в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/shopping-cart/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var retryDelays = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

// PostgresRepository предоставляет доступ к таблице корзины в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for i := 0; i <= len(retryDelays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if !isRetryable(err) || i == len(retryDelays) {
			break
		}

		timer := time.NewTimer(retryDelays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// AddItem сохраняет позицию корзины.
func (r *PostgresRepository) AddItem(ctx context.Context, item model.Item) error {
	return r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO cart (item_id, quantity, price, name, category, user_type) VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ItemID, item.Quantity, item.Price, item.Name, item.Category, item.UserType,
		)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		return nil
	})
}

// RemoveItem удаляет все позиции с указанным идентификатором товара.
func (r *PostgresRepository) RemoveItem(ctx context.Context, itemID int64) error {
	return r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM cart WHERE item_id = $1`, itemID)
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return nil
	})
}

// UpdateItemQuantity обновляет количество у всех позиций товара.
func (r *PostgresRepository) UpdateItemQuantity(ctx context.Context, itemID, quantity int64) error {
	return r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE cart SET quantity = $2 WHERE item_id = $1`,
			itemID, quantity,
		)
		if err != nil {
			return fmt.Errorf("update quantity: %w", err)
		}
		return nil
	})
}

// EmptyCart удаляет все позиции корзины.
func (r *PostgresRepository) EmptyCart(ctx context.Context) error {
	return r.withRetry(ctx, func() error {
		if _, err := r.pool.Exec(ctx, `DELETE FROM cart`); err != nil {
			return fmt.Errorf("empty cart: %w", err)
		}
		return nil
	})
}

// SaveItems заменяет содержимое таблицы текущими позициями корзины в одной транзакции.
func (r *PostgresRepository) SaveItems(ctx context.Context, items []model.Item) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, `DELETE FROM cart`); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		batch := &pgx.Batch{}
		for _, it := range items {
			batch.Queue(
				`INSERT INTO cart (item_id, quantity, price, name, category, user_type) VALUES ($1, $2, $3, $4, $5, $6)`,
				it.ItemID, it.Quantity, it.Price, it.Name, it.Category, it.UserType,
			)
		}

		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("insert items: %w", err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

// SavePaymentStatus записывает статус оплаты во все позиции корзины.
func (r *PostgresRepository) SavePaymentStatus(ctx context.Context, status string) error {
	return r.withRetry(ctx, func() error {
		if _, err := r.pool.Exec(ctx, `UPDATE cart SET payment_status = $1`, status); err != nil {
			return fmt.Errorf("update payment status: %w", err)
		}
		return nil
	})
}

// LoadItems возвращает сохранённые позиции корзины в порядке добавления.
func (r *PostgresRepository) LoadItems(ctx context.Context) ([]model.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT item_id, quantity, price, name, category, user_type
		 FROM cart
		 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ItemID, &it.Quantity, &it.Price, &it.Name, &it.Category, &it.UserType); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}
