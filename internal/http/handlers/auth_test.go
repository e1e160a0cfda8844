package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"userhub/internal/auth"
	"userhub/internal/cache"
	"userhub/internal/domain/user"
	"userhub/internal/http/handlers"
	"userhub/internal/repo/postgres"
	"userhub/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserStore struct {
	createFn     func(ctx context.Context, name, email, passwordHash string) (user.User, error)
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
}

func (f *fakeUserStore) Create(ctx context.Context, name, email, passwordHash string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, name, email, passwordHash)
	}
	return user.User{}, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, postgres.ErrUserNotFound
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthHandler(store *fakeUserStore) (*handlers.AuthHandler, *auth.Manager) {
	jwtManager := auth.NewManager("test-secret", time.Hour)
	hasher := security.NewHasher(bcrypt.MinCost)

	h := handlers.NewAuthHandler(store, store, hasher, jwtManager, cache.New(30*time.Second), discardLogger())

	return h, jwtManager
}

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func TestRegisterHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		body           string
		storeSetup     func(*fakeUserStore)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"name":"Ana","email":"ana@x.com","password":"secret1","confirmPassword":"secret1"}`,
			storeSetup: func(f *fakeUserStore) {
				f.createFn = func(ctx context.Context, name, email, passwordHash string) (user.User, error) {
					return user.User{
						ID:           1,
						Name:         name,
						Email:        email,
						PasswordHash: passwordHash,
						CreatedAt:    now,
						UpdatedAt:    now,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "password_mismatch",
			body: `{"name":"Ana","email":"ana@x.com","password":"secret1","confirmPassword":"secret2"}`,
			storeSetup: func(f *fakeUserStore) {
				f.createFn = func(ctx context.Context, name, email, passwordHash string) (user.User, error) {
					t.Fatal("store should not be called for an invalid payload")
					return user.User{}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "invalid_email",
			body: `{"name":"Ana","email":"not-an-email","password":"secret1","confirmPassword":"secret1"}`,
			storeSetup: func(f *fakeUserStore) {
				f.createFn = func(ctx context.Context, name, email, passwordHash string) (user.User, error) {
					t.Fatal("store should not be called for an invalid payload")
					return user.User{}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_email",
			body: `{"name":"Ana","email":"ana@x.com","password":"secret1","confirmPassword":"secret1"}`,
			storeSetup: func(f *fakeUserStore) {
				f.createFn = func(ctx context.Context, name, email, passwordHash string) (user.User, error) {
					return user.User{}, postgres.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "store_error",
			body: `{"name":"Ana","email":"ana@x.com","password":"secret1","confirmPassword":"secret1"}`,
			storeSetup: func(f *fakeUserStore) {
				f.createFn = func(ctx context.Context, name, email, passwordHash string) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h, _ := newAuthHandler(store)
			r := setupRouter(http.MethodPost, "/register", h.Register)

			w := postJSON(t, r, "/register", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRegisterHandler_NeverExposesPassword(t *testing.T) {
	store := &fakeUserStore{
		createFn: func(ctx context.Context, name, email, passwordHash string) (user.User, error) {
			return user.User{ID: 1, Name: name, Email: email, PasswordHash: passwordHash}, nil
		},
	}

	h, _ := newAuthHandler(store)
	r := setupRouter(http.MethodPost, "/register", h.Register)

	w := postJSON(t, r, "/register", `{"name":"Ana","email":"ana@x.com","password":"secret1","confirmPassword":"secret1"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		User map[string]any `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	for _, key := range []string{"password", "passwordHash", "password_hash"} {
		if _, ok := resp.User[key]; ok {
			t.Fatalf("response user must not contain %q: %s", key, w.Body.String())
		}
	}

	if resp.User["email"] != "ana@x.com" {
		t.Fatalf("unexpected user payload: %s", w.Body.String())
	}
}

func TestRegisterHandler_HashesPassword(t *testing.T) {
	var storedHash string

	store := &fakeUserStore{
		createFn: func(ctx context.Context, name, email, passwordHash string) (user.User, error) {
			storedHash = passwordHash
			return user.User{ID: 1, Name: name, Email: email, PasswordHash: passwordHash}, nil
		},
	}

	h, _ := newAuthHandler(store)
	r := setupRouter(http.MethodPost, "/register", h.Register)

	w := postJSON(t, r, "/register", `{"name":"Ana","email":"ana@x.com","password":"secret1","confirmPassword":"secret1"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if storedHash == "" || storedHash == "secret1" {
		t.Fatalf("password must be stored as a hash, got %q", storedHash)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not verify against the plaintext: %v", err)
	}
}

func TestLoginHandler(t *testing.T) {
	hasher := security.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("secret1")

	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}

	registered := user.User{
		ID:           7,
		Name:         "Ana",
		Email:        "ana@x.com",
		PasswordHash: hash,
	}

	tests := []struct {
		name           string
		body           string
		storeSetup     func(*fakeUserStore)
		wantStatusCode int
		wantToken      bool
	}{
		{
			name: "success",
			body: `{"email":"ana@x.com","password":"secret1"}`,
			storeSetup: func(f *fakeUserStore) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return registered, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantToken:      true,
		},
		{
			name: "unknown_email",
			body: `{"email":"ghost@x.com","password":"secret1"}`,
			storeSetup: func(f *fakeUserStore) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return user.User{}, postgres.ErrUserNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "wrong_password",
			body: `{"email":"ana@x.com","password":"nope-wrong"}`,
			storeSetup: func(f *fakeUserStore) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return registered, nil
				}
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "validation_error",
			body:           `{"email":"not-an-email","password":"secret1"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "store_error",
			body: `{"email":"ana@x.com","password":"secret1"}`,
			storeSetup: func(f *fakeUserStore) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h, jwtManager := newAuthHandler(store)
			r := setupRouter(http.MethodPost, "/auth/login", h.Login)

			w := postJSON(t, r, "/auth/login", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			var resp struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if !tt.wantToken {
				if resp.Token != "" {
					t.Fatalf("no token should be issued, body=%s", w.Body.String())
				}
				return
			}

			claims, err := jwtManager.VerifyAccessToken(resp.Token)

			if err != nil {
				t.Fatalf("issued token does not verify: %v", err)
			}

			if claims.UserID != registered.ID {
				t.Fatalf("token resolves to user %d, want %d", claims.UserID, registered.ID)
			}
		})
	}
}
