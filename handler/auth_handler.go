package handler

import (
	"encoding/json"
	"errors"
	"mercury-api/common"
	"mercury-api/logger"
	"mercury-api/model"
	"mercury-api/service"
	"net/http"

	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates an account and returns the user plus an access/refresh token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        registration body model.RegisterRequest true "New account details"
// @Success      201  {object}  model.AuthResponse
// @Failure      400  {object}  common.AppError "Missing fields or email/username already taken"
// @Failure      500  {object}  common.AppError "Internal server error"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	log := logger.Log.WithFields(logrus.Fields{
		"email":    req.Email,
		"username": req.Username,
	})
	log.Info("Register request received")

	user, tokens, err := h.service.Register(&req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			return common.NewConflictError("User with this email or username already exists", err)
		}
		return common.NewInternalError("Could not create user", err)
	}

	writeJSON(w, http.StatusCreated, &model.AuthResponse{
		Success: true,
		Data:    &model.AuthData{User: user, Tokens: tokens},
	})
	return nil
}

// Login godoc
// @Summary      Log in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body model.LoginRequest true "Login credentials"
// @Success      200  {object}  model.AuthResponse
// @Failure      400  {object}  common.AppError "Missing email or password"
// @Failure      401  {object}  common.AppError "Invalid credentials"
// @Failure      404  {object}  common.AppError "User not found"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, tokens, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return common.NewNotFoundError("User not found", err)
		case errors.Is(err, service.ErrInvalidCredentials):
			return common.NewAuthenticationError("Invalid credentials", err)
		default:
			return common.NewInternalError("Could not log in", err)
		}
	}

	writeJSON(w, http.StatusOK, &model.AuthResponse{
		Success: true,
		Data:    &model.AuthData{User: user, Tokens: tokens},
	})
	return nil
}

// Refresh godoc
// @Summary      Exchange a refresh token for a new token pair
// @Description  Rotates the stored refresh token; the presented token is single-use.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token body model.RefreshRequest true "Current refresh token"
// @Success      200  {object}  model.RefreshResponse
// @Failure      400  {object}  common.AppError "Refresh token is required"
// @Failure      401  {object}  common.AppError "Invalid, expired or superseded refresh token"
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return common.NewValidationError("Refresh token is required", appErr.Err)
	}

	tokens, err := h.service.Refresh(req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefreshToken):
			return common.NewAuthenticationError("Invalid or expired refresh token", err)
		case errors.Is(err, service.ErrRefreshTokenMismatch):
			return common.NewAuthenticationError("Invalid refresh token", err)
		default:
			return common.NewInternalError("Could not refresh tokens", err)
		}
	}

	writeJSON(w, http.StatusOK, &model.RefreshResponse{
		Success:      true,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
	return nil
}

// Logout godoc
// @Summary      Log out the current user
// @Description  Clears the server-side refresh token, revoking the session.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.MessageResponse
// @Failure      401  {object}  common.AppError "Unauthorized"
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAuthenticationError("Not authorized, no token", nil)
	}

	if err := h.service.Logout(user.ID); err != nil {
		return common.NewInternalError("Could not log out", err)
	}

	writeJSON(w, http.StatusOK, &model.MessageResponse{
		Success: true,
		Message: "Logged out successfully",
	})
	return nil
}
