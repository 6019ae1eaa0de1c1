package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// UserHandler serves account endpoints
type UserHandler struct {
	users   *UserStore
	cache   *UserCache
	avatars *AvatarStore
}

// NewUserHandler creates a user handler
func NewUserHandler(users *UserStore, cache *UserCache, avatars *AvatarStore) *UserHandler {
	return &UserHandler{users: users, cache: cache, avatars: avatars}
}

// Me returns the authenticated user's profile
// Me godoc
// @Summary Current user
// @Description Get the authenticated user's profile. No more than 10 requests per minute.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} User "User profile"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 429 {object} map[string]string "Rate limit exceeded"
// @Router /users/me [get]

func (h *UserHandler) Me(c echo.Context) error {
	user := CurrentUser(c)
	if user == nil {
		return RespondError(c, ErrUnauthorized(""))
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateAvatar stores a new avatar for the current admin user
// UpdateAvatar godoc
// @Summary Update avatar
// @Description Upload a new avatar image for the current administrator. The image is cropped square and scaled down.
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Avatar image"
// @Success 200 {object} User "Updated user"
// @Failure 400 {object} map[string]string "Missing or invalid image"
// @Failure 403 {object} map[string]string "Admin role required"
// @Router /users/avatar [patch]

func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	user := CurrentUser(c)
	if user == nil {
		return RespondError(c, ErrUnauthorized(""))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return RespondError(c, ErrMissingParameter("file"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		LogError("Failed to open uploaded avatar", err, "user_id", user.ID)
		return RespondError(c, ErrInternal("Failed to read uploaded file"))
	}
	defer src.Close()

	data, err := ProcessAvatar(src)
	if err != nil {
		LogWarn("Avatar processing failed", "user_id", user.ID, "error", err)
		return RespondError(c, NewAPIError(ErrCodeInvalidImage, "Unsupported or corrupted image file"))
	}

	avatarURL, err := h.avatars.Put(data)
	if err != nil {
		LogError("Failed to store avatar", err, "user_id", user.ID)
		return RespondError(c, ErrInternal("Failed to store avatar"))
	}

	updated, err := h.users.UpdateAvatar(c.Request().Context(), user.Email, avatarURL)
	if err != nil || updated == nil {
		LogError("Failed to update avatar", err, "user_id", user.ID)
		return RespondError(c, ErrInternal("Failed to update avatar"))
	}
	h.cache.Invalidate(updated.Username)
	h.avatars.Remove(user.Avatar)

	LogInfo("Avatar updated", "username", updated.Username, "avatar", avatarURL)
	return c.JSON(http.StatusOK, updated)
}
