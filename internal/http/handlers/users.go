package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"userhub/internal/cache"
	"userhub/internal/config"
	"userhub/internal/domain/user"
	"userhub/internal/repo/postgres"
)

type UsersStore interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id int64, name, email string) (user.User, error)
	Delete(ctx context.Context, id int64) error
}

type UsersHandler struct {
	repo  UsersStore
	cache listCache
	log   *slog.Logger
}

func NewUsersHandler(repo UsersStore, c *cache.Cache, log *slog.Logger) *UsersHandler {
	return &UsersHandler{
		repo:  repo,
		cache: newListCache(c),
		log:   log,
	}
}

type UpdateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// A missing user is not an error here: the response is a 200 with a null user,
// which the delete-then-read flow depends on.
func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	id, ok := userIDParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondOK(ctx, "User found!", gin.H{"user": nil})
			return
		}

		h.log.Error("get user", "id", id, "err", err)
		RespondInternal(ctx, "Failed to receive user!")
		return
	}

	RespondOK(ctx, "User found!", gin.H{"user": u})
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	if users, ok := h.cache.get(); ok {
		RespondOK(ctx, "Users successfully found!", gin.H{"users": users})
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	users, err := h.repo.List(cctx)

	if err != nil {
		h.log.Error("list users", "err", err)
		RespondInternal(ctx, "Failed to receive users!")
		return
	}

	h.cache.set(users)

	RespondOK(ctx, "Users successfully found!", gin.H{"users": users})
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)

	if !ok {
		return
	}

	var req UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.repo.Update(cctx, id, req.Name, req.Email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found!")
			return
		}

		if errors.Is(err, postgres.ErrEmailTaken) {
			RespondBadRequest(ctx, "Failed to update user!", "email is already in use")
			return
		}

		h.log.Error("update user", "id", id, "err", err)
		RespondInternal(ctx, "Failed to update user!")
		return
	}

	h.cache.invalidate()

	RespondOK(ctx, "User successfully updated!", gin.H{"user": u})
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found!")
			return
		}

		h.log.Error("delete user", "id", id, "err", err)
		RespondInternal(ctx, "Failed to delete user!")
		return
	}

	h.cache.invalidate()

	RespondOK(ctx, "User successfully deleted!", nil)
}

func userIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondBadRequest(ctx, "Invalid user id", "id must be an integer")
		return 0, false
	}

	return id, true
}
