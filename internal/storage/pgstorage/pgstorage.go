package pgstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	// Postgres driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/andymarkow/zapbank/internal/domain/users"
	"github.com/andymarkow/zapbank/internal/storage"
	"github.com/andymarkow/zapbank/internal/storage/dbmodels"
)

var _ storage.Storage = (*Storage)(nil)

type Storage struct {
	db *sql.DB
}

type Config struct {
	maxOpenConns    int
	maxIdleConns    int
	connMaxIdleTime time.Duration
	connMaxLifetime time.Duration
}

type Option func(s *Config)

func WithMaxOpenConns(conns int) Option {
	return func(c *Config) {
		c.maxOpenConns = conns
	}
}

func WithMaxIdleConns(conns int) Option {
	return func(c *Config) {
		c.maxIdleConns = conns
	}
}

func WithConnMaxIdleTime(idleTime time.Duration) Option {
	return func(c *Config) {
		c.connMaxIdleTime = idleTime
	}
}

func WithConnMaxLifetime(lifetime time.Duration) Option {
	return func(c *Config) {
		c.connMaxLifetime = lifetime
	}
}

func NewStorage(connStr string, opts ...Option) (*Storage, error) {
	cfg := &Config{
		maxOpenConns:    10,
		maxIdleConns:    5,
		connMaxIdleTime: 180 * time.Second,
		connMaxLifetime: 3600 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	db.SetMaxOpenConns(cfg.maxOpenConns)
	db.SetMaxIdleConns(cfg.maxIdleConns)
	db.SetConnMaxIdleTime(cfg.connMaxIdleTime)
	db.SetConnMaxLifetime(cfg.connMaxLifetime)

	return &Storage{
		db: db,
	}, nil
}

// Bootstrap applies pending schema migrations.
func (s *Storage) Bootstrap(ctx context.Context) error {
	provider, err := goose.NewProvider(
		goose.DialectPostgres,
		s.db,
		os.DirFS("internal/storage/pgstorage/migrations"),
	)
	if err != nil {
		return fmt.Errorf("goose.NewProvider: %w", err)
	}

	_, err = provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("provider.Up: %w", err)
	}

	return nil
}

func (s *Storage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("db.Close: %w", err)
	}

	return nil
}

// isRetryableError checks if error is retryable.
func isRetryableError(err error) bool {
	// Connection refused error
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsConnectionException(pgErr.Code) {
		return true
	}

	return false
}

// WithRetry retries operations in case of retryable errors.
func WithRetry(operation func() error) error {
	// Retry count
	retryCount := 3

	// Initial retry wait time
	var retryWaitTime time.Duration

	// Define the interval between retries
	retryWaitInterval := 2

	var err error

	for i := 0; i < retryCount; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if isRetryableError(err) {
			retryWaitTime = time.Duration((i*retryWaitInterval + 1)) * time.Second // 1s, 3s, 5s, etc.

			time.Sleep(retryWaitTime)
		} else {
			return fmt.Errorf("%w", err)
		}
	}

	return fmt.Errorf("retry attempts exceeded: %w", err)
}

func (s *Storage) Ping(ctx context.Context) error {
	err := WithRetry(func() error {
		if err := s.db.PingContext(ctx); err != nil {
			return fmt.Errorf("db.PingContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) CreateUser(ctx context.Context, usr *users.User) (*users.User, error) {
	var id string

	err := WithRetry(func() error {
		query := `INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id`

		row := s.db.QueryRowContext(ctx, query, usr.Login(), usr.PasswordHash())

		if err := row.Scan(&id); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
				return storage.ErrUserAlreadyExists
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := users.NewUser(id, usr.Login(), usr.PasswordHash(), 0)
	if err != nil {
		return nil, fmt.Errorf("users.NewUser: %w", err)
	}

	return created, nil
}

func (s *Storage) GetUserByLogin(ctx context.Context, login string) (*users.User, error) {
	dbUser := new(dbmodels.User)

	err := WithRetry(func() error {
		query := `SELECT id, login, password_hash, zaps FROM users WHERE login = $1`

		row := s.db.QueryRowContext(ctx, query, login)

		if err := row.Scan(&dbUser.ID, &dbUser.Login, &dbUser.PasswordHash, &dbUser.Zaps); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrUserNotFound
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	user, err := users.NewUser(dbUser.ID, dbUser.Login, dbUser.PasswordHash, dbUser.Zaps)
	if err != nil {
		return nil, fmt.Errorf("users.NewUser: %w", err)
	}

	return user, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	dbUser := new(dbmodels.User)

	err := WithRetry(func() error {
		query := `SELECT id, login, password_hash, zaps FROM users WHERE id = $1`

		row := s.db.QueryRowContext(ctx, query, id)

		if err := row.Scan(&dbUser.ID, &dbUser.Login, &dbUser.PasswordHash, &dbUser.Zaps); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrUserNotFound
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	user, err := users.NewUser(dbUser.ID, dbUser.Login, dbUser.PasswordHash, dbUser.Zaps)
	if err != nil {
		return nil, fmt.Errorf("users.NewUser: %w", err)
	}

	return user, nil
}

// IncrementBalance applies the delta in a single UPDATE so that
// concurrent donations to the same login serialize inside Postgres
// and no update is lost.
func (s *Storage) IncrementBalance(ctx context.Context, login string, delta int64) (*users.User, error) {
	dbUser := new(dbmodels.User)

	err := WithRetry(func() error {
		query := `UPDATE users SET zaps = zaps + $2 WHERE login = $1` +
			` RETURNING id, login, password_hash, zaps`

		row := s.db.QueryRowContext(ctx, query, login, delta)

		if err := row.Scan(&dbUser.ID, &dbUser.Login, &dbUser.PasswordHash, &dbUser.Zaps); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrUserNotFound
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	user, err := users.NewUser(dbUser.ID, dbUser.Login, dbUser.PasswordHash, dbUser.Zaps)
	if err != nil {
		return nil, fmt.Errorf("users.NewUser: %w", err)
	}

	return user, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*users.User, error) {
	var dbUsers []*dbmodels.User

	err := WithRetry(func() error {
		// Start over on retry so a failure mid-scan leaves no
		// partial rows behind.
		dbUsers = dbUsers[:0]

		query := `SELECT id, login, password_hash, zaps FROM users ORDER BY login`

		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			dbUser := new(dbmodels.User)

			if err := rows.Scan(&dbUser.ID, &dbUser.Login, &dbUser.PasswordHash, &dbUser.Zaps); err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			dbUsers = append(dbUsers, dbUser)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows.Err: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	list := make([]*users.User, 0, len(dbUsers))

	for _, dbUser := range dbUsers {
		user, err := users.NewUser(dbUser.ID, dbUser.Login, dbUser.PasswordHash, dbUser.Zaps)
		if err != nil {
			return nil, fmt.Errorf("users.NewUser: %w", err)
		}

		list = append(list, user)
	}

	return list, nil
}
