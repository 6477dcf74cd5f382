package models

import "github.com/shopspring/decimal"

type UserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AdminLoginRequest struct {
	AdminKey string `json:"adminKey"`
}

// DonationRequest carries the admin donation payload. Amount is a
// pointer so a missing field is distinguishable from a zero donation.
type DonationRequest struct {
	Username string           `json:"username"`
	Amount   *decimal.Decimal `json:"amount"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Created bool   `json:"created"`
	Message string `json:"message,omitempty"`
}

type AdminLoginResponse struct {
	Token string `json:"token"`
}

type DonationResponse struct {
	Message string `json:"message"`
	Zaps    int64  `json:"zaps"`
}

type UserInfoResponse struct {
	Username string `json:"username"`
	Zaps     int64  `json:"zaps"`
}
