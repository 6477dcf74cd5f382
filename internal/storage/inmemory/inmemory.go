package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/andymarkow/zapbank/internal/domain/users"
	"github.com/andymarkow/zapbank/internal/storage"
)

var _ storage.Storage = (*Storage)(nil)

// Storage keeps accounts in process memory. Used by tests and local
// runs without a database.
type Storage struct {
	mu    sync.Mutex
	users map[string]*record
	byID  map[string]string
}

type record struct {
	id           string
	login        string
	passwordHash string
	zaps         int64
}

func NewStorage() *Storage {
	return &Storage{
		users: make(map[string]*record),
		byID:  make(map[string]string),
	}
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) Ping(_ context.Context) error {
	return nil
}

func (s *Storage) CreateUser(_ context.Context, usr *users.User) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[usr.Login()]; ok {
		return nil, storage.ErrUserAlreadyExists
	}

	rec := &record{
		id:           uuid.NewString(),
		login:        usr.Login(),
		passwordHash: usr.PasswordHash(),
	}

	s.users[rec.login] = rec
	s.byID[rec.id] = rec.login

	return rec.toUser()
}

func (s *Storage) GetUserByLogin(_ context.Context, login string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[login]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	return rec.toUser()
}

func (s *Storage) GetUserByID(_ context.Context, id string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	login, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	return s.users[login].toUser()
}

func (s *Storage) IncrementBalance(_ context.Context, login string, delta int64) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[login]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	rec.zaps += delta

	return rec.toUser()
}

func (s *Storage) ListUsers(_ context.Context) ([]*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*users.User, 0, len(s.users))

	for _, rec := range s.users {
		usr, err := rec.toUser()
		if err != nil {
			return nil, err
		}

		list = append(list, usr)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Login() < list[j].Login()
	})

	return list, nil
}

func (r *record) toUser() (*users.User, error) {
	return users.NewUser(r.id, r.login, r.passwordHash, r.zaps)
}
