package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"userhub/internal/auth"
	"userhub/internal/cache"
	"userhub/internal/config"
	"userhub/internal/domain/user"
	"userhub/internal/repo/postgres"
	"userhub/internal/security"
)

type UserWriter interface {
	Create(ctx context.Context, name, email, passwordHash string) (user.User, error)
}

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	hasher     *security.Hasher
	jwt        *auth.Manager
	cache      listCache
	log        *slog.Logger
}

func NewAuthHandler(users UserReader, userWriter UserWriter, hasher *security.Hasher, jwtManager *auth.Manager, c *cache.Cache, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		hasher:     hasher,
		jwt:        jwtManager,
		cache:      newListCache(c),
		log:        log,
	}
}

type RegisterRequest struct {
	Name            string `json:"name" binding:"required,min=2,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6,max=16"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,max=16,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=16"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := h.hasher.Hash(req.Password)

	if err != nil {
		h.log.Error("hash password", "err", err)
		RespondInternal(ctx, "Failed to Create User!")
		return
	}

	u, err := h.userWriter.Create(cctx, req.Name, req.Email, hash)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			RespondBadRequest(ctx, "Failed to Create User!", "email is already in use")
			return
		}

		h.log.Error("create user", "err", err)
		RespondInternal(ctx, "Failed to Create User!")
		return
	}

	h.cache.invalidate()

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User successfully created!",
		"user":    u,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found!")
			return
		}

		h.log.Error("lookup user", "err", err)
		RespondInternal(ctx, "Failed to log in!")
		return
	}

	err = h.hasher.Check(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnprocessable(ctx, "Failed to log in!", "wrong password")
		return
	}

	token, err := h.jwt.GenerateAccessToken(foundUser.ID, foundUser.Email)

	if err != nil {
		h.log.Error("sign token", "err", err)
		RespondInternal(ctx, "Failed to log in!")
		return
	}

	RespondOK(ctx, "Login successful!", gin.H{"token": token})
}
