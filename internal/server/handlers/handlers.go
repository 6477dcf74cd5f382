package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/andymarkow/zapbank/internal/auth"
	"github.com/andymarkow/zapbank/internal/domain/users"
	"github.com/andymarkow/zapbank/internal/errmsg"
	"github.com/andymarkow/zapbank/internal/server/models"
	"github.com/andymarkow/zapbank/internal/storage"
)

type Handlers struct {
	storage   storage.Storage
	log       *slog.Logger
	userAuth  *auth.JWTAuth
	adminAuth *auth.JWTAuth
	adminKey  string
}

// NewHandlers returns a new Handlers instance.
func NewHandlers(store storage.Storage, opts ...Option) *Handlers {
	handlers := &Handlers{
		storage:   store,
		log:       slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		userAuth:  auth.NewJWTAuth([]byte("")),
		adminAuth: auth.NewJWTAuth([]byte("")),
	}

	// Apply options
	for _, opt := range opts {
		opt(handlers)
	}

	return handlers
}

// Option is a functional option for Handlers.
type Option func(h *Handlers)

// WithLogger is a option for Handlers that sets logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handlers) {
		h.log = logger
	}
}

// WithUserAuth sets the codec that issues account holder tokens.
func WithUserAuth(userAuth *auth.JWTAuth) Option {
	return func(h *Handlers) {
		h.userAuth = userAuth
	}
}

// WithAdminAuth sets the codec that issues admin tokens.
func WithAdminAuth(adminAuth *auth.JWTAuth) Option {
	return func(h *Handlers) {
		h.adminAuth = adminAuth
	}
}

// WithAdminKey sets the shared operational key that grants admin
// tokens.
func WithAdminKey(adminKey string) Option {
	return func(h *Handlers) {
		h.adminKey = adminKey
	}
}

type JSONResponse struct {
	Message any `json:"message,omitempty"`
	Error   any `json:"error,omitempty"`
}

func handleJSONResponse(w http.ResponseWriter, status int, resp any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func handleError(w http.ResponseWriter, err errmsg.HTTPError) {
	resp := &JSONResponse{
		Error: err.Error(),
	}

	w.Header().Set("content-type", "application/json")
	w.WriteHeader(err.Code)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Ping(r.Context()); err != nil {
		h.log.Error("storage.Ping", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, &JSONResponse{Message: "ok"})
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var userPayload models.UserRequest

	if err := json.NewDecoder(r.Body).Decode(&userPayload); err != nil {
		if errors.Is(err, io.EOF) {
			h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
			handleError(w, errmsg.ErrRequestPayloadEmpty)

			return
		}

		h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	defer r.Body.Close()

	user, err := users.CreateUser(userPayload.Username, userPayload.Password)
	if err != nil {
		if errors.Is(err, users.ErrUserLoginEmpty) || errors.Is(err, users.ErrUserPasswdEmpty) {
			h.log.Error("users.CreateUser()", slog.Any("error", err))
			handleError(w, errmsg.NewHTTPError(http.StatusBadRequest, err))

			return
		}

		h.log.Error("users.CreateUser()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	if _, err := h.storage.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.log.Error("storage.CreateUser()", slog.Any("error", err))
			handleError(w, errmsg.ErrUserAlreadyExists)

			return
		}

		h.log.Error("storage.CreateUser()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusCreated, &JSONResponse{Message: "account created"})
}

// Login authenticates an account holder. An unknown username is
// provisioned on the spot: login doubles as registration in that case
// and responds with created=true. This behavior is intentional and
// covered by tests.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var userPayload models.UserRequest

	if err := json.NewDecoder(r.Body).Decode(&userPayload); err != nil {
		if errors.Is(err, io.EOF) {
			h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
			handleError(w, errmsg.ErrRequestPayloadEmpty)

			return
		}

		h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	defer r.Body.Close()

	user, err := h.storage.GetUserByLogin(r.Context(), userPayload.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.provisionAndLogin(w, r, userPayload)

			return
		}

		h.log.Error("storage.GetUserByLogin()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(userPayload.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			h.log.Error("bcrypt.CompareHashAndPassword()", slog.Any("error", err))
			handleError(w, errmsg.ErrUserCredentialsInvalid)

			return
		}

		h.log.Error("bcrypt.CompareHashAndPassword()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	token, err := h.userAuth.CreateUserToken(user.ID(), user.Login())
	if err != nil {
		h.log.Error("userAuth.CreateUserToken()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, &models.LoginResponse{
		Token:   token,
		Created: false,
	})
}

func (h *Handlers) provisionAndLogin(w http.ResponseWriter, r *http.Request, userPayload models.UserRequest) {
	user, err := users.CreateUser(userPayload.Username, userPayload.Password)
	if err != nil {
		if errors.Is(err, users.ErrUserLoginEmpty) || errors.Is(err, users.ErrUserPasswdEmpty) {
			h.log.Error("users.CreateUser()", slog.Any("error", err))
			handleError(w, errmsg.NewHTTPError(http.StatusBadRequest, err))

			return
		}

		h.log.Error("users.CreateUser()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	created, err := h.storage.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.log.Error("storage.CreateUser()", slog.Any("error", err))
			handleError(w, errmsg.ErrUserAlreadyExists)

			return
		}

		h.log.Error("storage.CreateUser()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	token, err := h.userAuth.CreateUserToken(created.ID(), created.Login())
	if err != nil {
		h.log.Error("userAuth.CreateUserToken()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusCreated, &models.LoginResponse{
		Token:   token,
		Created: true,
		Message: "account created and logged in",
	})
}

func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var payload models.AdminLoginRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
			handleError(w, errmsg.ErrRequestPayloadEmpty)

			return
		}

		h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	defer r.Body.Close()

	if payload.AdminKey == "" || payload.AdminKey != h.adminKey {
		handleError(w, errmsg.ErrAdminKeyInvalid)

		return
	}

	token, err := h.adminAuth.CreateAdminToken()
	if err != nil {
		h.log.Error("adminAuth.CreateAdminToken()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, &models.AdminLoginResponse{Token: token})
}

func (h *Handlers) Donate(w http.ResponseWriter, r *http.Request) {
	var payload models.DonationRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
			handleError(w, errmsg.ErrRequestPayloadEmpty)

			return
		}

		h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	defer r.Body.Close()

	if payload.Username == "" || payload.Amount == nil {
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	// Zaps are whole units. Any sign is accepted.
	if !payload.Amount.IsInteger() {
		handleError(w, errmsg.ErrDonationAmountInvalid)

		return
	}

	user, err := h.storage.IncrementBalance(r.Context(), payload.Username, payload.Amount.IntPart())
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.log.Error("storage.IncrementBalance()", slog.Any("error", err))
			handleError(w, errmsg.ErrUserNotFound)

			return
		}

		h.log.Error("storage.IncrementBalance()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, &models.DonationResponse{
		Message: fmt.Sprintf("Success! %s now has %d Zaps.", user.Login(), user.Zaps()),
		Zaps:    user.Zaps(),
	})
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	userList, err := h.storage.ListUsers(r.Context())
	if err != nil {
		h.log.Error("storage.ListUsers()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	resp := make([]models.UserInfoResponse, 0, len(userList))
	for _, user := range userList {
		resp = append(resp, models.UserInfoResponse{
			Username: user.Login(),
			Zaps:     user.Zaps(),
		})
	}

	handleJSONResponse(w, http.StatusOK, resp)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		h.log.Error("jwtauth.FromContext()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	// Set account id from JWT uid claim field
	userID, ok := claims["uid"].(string)
	if !ok || userID == "" {
		handleError(w, errmsg.ErrCredentialInvalid)

		return
	}

	user, err := h.storage.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.log.Error("storage.GetUserByID()", slog.Any("error", err))
			handleError(w, errmsg.ErrUserNotFound)

			return
		}

		h.log.Error("storage.GetUserByID()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, &models.UserInfoResponse{
		Username: user.Login(),
		Zaps:     user.Zaps(),
	})
}
