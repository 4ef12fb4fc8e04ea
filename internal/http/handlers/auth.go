package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type TokenIssuer interface {
	GenerateToken(username string) (string, error)
}

type AuthHandler struct {
	users UserStore
	jwt   TokenIssuer
}

func NewAuthHandler(users UserStore, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwt,
	}
}

func authResponse(token string, u user.User) user.AuthResponse {
	return user.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
	}
}

// Register creates an account and logs it in, in one step. Username
// uniqueness is checked before email uniqueness.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)

	defer cancel()

	taken, err := h.users.ExistsByUsername(cctx, req.Username)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	if taken {
		RespondConflict(ctx, "Username is already taken")
		return
	}

	taken, err = h.users.ExistsByEmail(cctx, req.Email)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	if taken {
		RespondConflict(ctx, "Email is already registered")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, req.Username, req.Email, hash)

	if err != nil {
		// the unique index catches registrations racing past the checks above
		if errors.Is(err, user.ErrUsernameTaken) {
			RespondConflict(ctx, "Username is already taken")
			return
		}
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "Email is already registered")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	token, err := h.jwt.GenerateToken(u.Username)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusCreated, authResponse(token, u))
}

// Login verifies credentials and mints a fresh token. Unknown username and
// wrong password are deliberately indistinguishable to the caller.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	foundUser, err := h.users.GetByUsername(cctx, req.Username)
	if err != nil {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(foundUser.Username)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, authResponse(token, foundUser))
}
