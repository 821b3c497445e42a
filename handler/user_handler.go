package handler

import (
	"database/sql"
	"errors"
	"mercury-api/common"
	"mercury-api/model"
	"mercury-api/service"
	"net/http"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// Me godoc
// @Summary      Get the authenticated user's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.UserResponse
// @Failure      401  {object}  common.AppError "Unauthorized"
// @Router       /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAuthenticationError("Not authorized, no token", nil)
	}

	writeJSON(w, http.StatusOK, &model.UserResponse{Success: true, Data: user})
	return nil
}

// GetByUsername godoc
// @Summary      Get a public profile by username
// @Description  The email field is included only when the caller is the profile owner or an admin.
// @Tags         users
// @Produce      json
// @Param        username path string true "Username"
// @Success      200  {object}  model.UserResponse
// @Failure      404  {object}  common.AppError "User not found"
// @Router       /users/username/{username} [get]
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) *common.AppError {
	username := r.PathValue("username")
	if username == "" {
		return common.NewValidationError("Username is required", nil)
	}

	user, err := h.service.GetByUsername(username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NewNotFoundError("User not found", err)
		}
		return common.NewInternalError("Could not retrieve user", err)
	}

	// Personalized-if-possible: a caller viewing their own profile (or an
	// admin) sees the full record, everyone else the public subset.
	profile := user.PublicProfile()
	if caller, ok := UserFromContext(r.Context()); ok {
		if caller.ID == user.ID || caller.IsAdmin {
			profile = user
		}
	}

	writeJSON(w, http.StatusOK, &model.UserResponse{Success: true, Data: profile})
	return nil
}
