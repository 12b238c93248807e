// Package repository содержит реализацию доступа к каталогу в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRepository читает каталог товаров и промокодов из PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	delays []time.Duration
}

// NewPostgresRepository создаёт репозиторий и применяет миграции, создающие и заполняющие каталог.
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

	r := &PostgresRepository{
		pool:   pool,
		delays: []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
	}

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

	for i := 0; i <= len(r.delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if !isRetryable(err) || i == len(r.delays) {
			break
		}

		timer := time.NewTimer(r.delays[i])
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
		return pgErr.Code == pgerrcode.SerializationFailure ||
			pgErr.Code == pgerrcode.DeadlockDetected ||
			pgerrcode.IsConnectionException(pgErr.Code)
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

// Ping проверяет доступность БД.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// LoadProducts возвращает товары каталога в порядке отображения.
func (r *PostgresRepository) LoadProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product

	err := r.withRetry(ctx, func() error {
		products = products[:0]

		rows, err := r.pool.Query(ctx,
			`SELECT id, name, price::text, old_price::text, discount, image, category
			 FROM products
			 ORDER BY position, id`,
		)
		if err != nil {
			return fmt.Errorf("select products: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var row productRow
			if err := rows.Scan(&row.id, &row.name, &row.price, &row.oldPrice, &row.discount, &row.image, &row.category); err != nil {
				return fmt.Errorf("scan product: %w", err)
			}

			p, err := row.toModel()
			if err != nil {
				return err
			}
			products = append(products, p)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return products, nil
}

// LoadPromoCodes возвращает таблицу промокодов.
func (r *PostgresRepository) LoadPromoCodes(ctx context.Context) ([]model.PromoCode, error) {
	var promos []model.PromoCode

	err := r.withRetry(ctx, func() error {
		promos = promos[:0]

		rows, err := r.pool.Query(ctx,
			`SELECT code, discount, description
			 FROM promo_codes
			 ORDER BY position, code`,
		)
		if err != nil {
			return fmt.Errorf("select promo codes: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var p model.PromoCode
			if err := rows.Scan(&p.Code, &p.Discount, &p.Description); err != nil {
				return fmt.Errorf("scan promo code: %w", err)
			}
			promos = append(promos, p)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return promos, nil
}

type productRow struct {
	id       int64
	name     string
	price    string
	oldPrice *string
	discount *int32
	image    string
	category string
}

func (row productRow) toModel() (model.Product, error) {
	price, err := decimal.NewFromString(row.price)
	if err != nil {
		return model.Product{}, fmt.Errorf("parse price of product %d: %w", row.id, err)
	}

	p := model.Product{
		ID:       row.id,
		Name:     row.name,
		Price:    price,
		Image:    row.image,
		Category: row.category,
	}

	if row.oldPrice != nil {
		old, err := decimal.NewFromString(*row.oldPrice)
		if err != nil {
			return model.Product{}, fmt.Errorf("parse old price of product %d: %w", row.id, err)
		}
		p.OldPrice = &old
	}

	if row.discount != nil {
		d := int(*row.discount)
		p.Discount = &d
	}

	return p, nil
}
