package storage

import (
	"context"
	"errors"

	"github.com/andymarkow/zapbank/internal/domain/users"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
)

type UserStorage interface {
	GetUserByLogin(ctx context.Context, login string) (*users.User, error)
	GetUserByID(ctx context.Context, id string) (*users.User, error)
	CreateUser(ctx context.Context, usr *users.User) (*users.User, error)
	ListUsers(ctx context.Context) ([]*users.User, error)
}

type BalanceStorage interface {
	// IncrementBalance applies delta to the account balance and returns
	// the post-mutation account in one indivisible store operation.
	// Concurrent calls against the same login must all be reflected in
	// the final balance.
	IncrementBalance(ctx context.Context, login string, delta int64) (*users.User, error)
}

type Storage interface {
	UserStorage
	BalanceStorage
	Close() error
	Ping(ctx context.Context) error
}

func NewStorage(store Storage) Storage {
	return store
}
