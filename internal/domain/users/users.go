package users

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserLoginEmpty  = errors.New("user login is empty")
	ErrUserPasswdEmpty = errors.New("user password is empty")
)

// User is a ledger account. The zaps balance is owned by the storage
// layer and only ever changes through its atomic increment.
type User struct {
	id           string
	login        string
	passwordHash string
	zaps         int64
}

// CreateUser builds a new account from plaintext credentials. The
// password is bcrypt-hashed here and never stored in clear. The
// account id is assigned by the storage layer on insert.
func CreateUser(login, password string) (*User, error) {
	if err := ValidateLogin(login); err != nil {
		return nil, err
	}

	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := getPasswordHash(password)
	if err != nil {
		return nil, fmt.Errorf("getPasswordHash: %w", err)
	}

	return &User{
		login:        login,
		passwordHash: passwordHash,
	}, nil
}

// NewUser rehydrates an account from stored fields.
func NewUser(id, login, passwordHash string, zaps int64) (*User, error) {
	if err := ValidateLogin(login); err != nil {
		return nil, err
	}

	return &User{
		id:           id,
		login:        login,
		passwordHash: passwordHash,
		zaps:         zaps,
	}, nil
}

func (u *User) ID() string {
	return u.id
}

func (u *User) Login() string {
	return u.login
}

func (u *User) PasswordHash() string {
	return u.passwordHash
}

func (u *User) Zaps() int64 {
	return u.zaps
}

// SetID is used by the storage layer once the store assigns an id.
func (u *User) SetID(id string) {
	u.id = id
}

func getPasswordHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword: %w", err)
	}

	return string(hash), nil
}

func ValidateLogin(login string) error {
	if login == "" {
		return ErrUserLoginEmpty
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrUserPasswdEmpty
	}

	return nil
}
