package dbmodels

type User struct {
	ID           string
	Login        string
	PasswordHash string
	Zaps         int64
}
