package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles registration, login and account lifecycle
type AuthHandler struct {
	users     *UserStore
	cache     *UserCache
	mailer    *Mailer
	accessTTL time.Duration
}

// NewAuthHandler creates the auth handler and installs the JWT signing secret
func NewAuthHandler(users *UserStore, cache *UserCache, mailer *Mailer, jwtSecret string, accessTTL time.Duration) *AuthHandler {
	if len(jwtSecret) < 32 {
		LogWarn("JWT_SECRET should be at least 32 characters for security")
	}
	sharedJWTSecret = []byte(jwtSecret)

	return &AuthHandler{
		users:     users,
		cache:     cache,
		mailer:    mailer,
		accessTTL: accessTTL,
	}
}

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// requestBaseURL rebuilds the public base URL of the request, with a
// trailing slash, for links placed in outgoing email
func requestBaseURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host + "/"
}

// RegisterRequest is the payload for creating an account
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// LoginRequest is the payload for logging in. The same fields are accepted
// as form values for OAuth2 style clients.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RequestEmailRequest asks for a new confirmation email
type RequestEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest asks for a password reset link carrying the new password
type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=128"`
}

// TokenResponse is returned after a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MessageResponse is a simple confirmation payload
type MessageResponse struct {
	Message string `json:"message"`
}

// Register creates a new account and emails a confirmation link
// Register godoc
// @Summary Register a new user
// @Description Create an account and send an email confirmation link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "New account data"
// @Success 201 {object} User "Created user"
// @Failure 409 {object} map[string]string "Email or username already taken"
// @Failure 422 {object} map[string]string "Validation failed"
// @Router /auth/register [post]

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	existing, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		LogError("Failed to check existing email", err)
		return RespondError(c, ErrInternal("Failed to create user"))
	}
	if existing != nil {
		return RespondError(c, ErrAlreadyExists("User with this email already exists"))
	}

	existing, err = h.users.GetByUsername(ctx, req.Username)
	if err != nil {
		LogError("Failed to check existing username", err)
		return RespondError(c, ErrInternal("Failed to create user"))
	}
	if existing != nil {
		return RespondError(c, ErrAlreadyExists("User with this username already exists"))
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		LogError("Failed to hash password", err)
		return RespondError(c, ErrInternal("Failed to create user"))
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}

	user, err := h.users.Create(ctx, req.Username, req.Email, hashed, role, GravatarURL(req.Email))
	if err != nil {
		LogError("Failed to create user", err, "username", req.Username)
		return RespondError(c, ErrInternal("Failed to create user"))
	}

	host := requestBaseURL(c)
	go h.mailer.SendVerification(user.Email, user.Username, host)

	observeRegistration()
	LogInfo("User registered", "username", user.Username, "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

// Login authenticates a user and returns a JWT access token
// Login godoc
// @Summary User login
// @Description Authenticate with username and password. Accepts JSON or form data.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} TokenResponse "Bearer token"
// @Failure 401 {object} map[string]string "Invalid credentials or unconfirmed email"
// @Failure 429 {object} map[string]string "Too many attempts"
// @Router /auth/login [post]

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	ip := c.RealIP()

	guard := GetLoginGuard()
	if guard != nil {
		allowed, reason, remaining := guard.CheckAttempt(ctx, ip, req.Username)
		if !allowed {
			observeLogin("blocked")
			LogWarn("Login blocked", "username", req.Username, "ip", ip, "reason", reason)
			return RespondError(c, NewAPIError(ErrCodeRateLimited, reason))
		}
		c.Response().Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	}

	user, err := h.users.GetByUsername(ctx, req.Username)
	if err != nil {
		LogError("Failed to look up user", err, "username", req.Username)
		return RespondError(c, ErrInternal("Login failed"))
	}

	if user == nil || !CheckPassword(req.Password, user.HashedPassword) {
		if guard != nil {
			guard.RecordFailedAttempt(ctx, ip, req.Username)
		}
		observeLogin("failed")
		LogWarn("Login failed", "username", req.Username, "ip", ip)
		return RespondError(c, ErrUnauthorized("Invalid username or password"))
	}

	if !user.Confirmed {
		return RespondError(c, ErrUnauthorized("Email address not confirmed"))
	}

	if guard != nil {
		guard.RecordSuccessfulLogin(ctx, ip, user.Username)
	}

	token, err := GenerateAccessToken(user, h.accessTTL)
	if err != nil {
		LogError("Failed to generate token", err)
		return RespondError(c, ErrInternal("Login failed"))
	}

	h.cache.Set(user.Username, user)

	observeLogin("success")
	LogInfo("User logged in", "username", user.Username, "ip", ip)
	return c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// ConfirmedEmail confirms an email address from an emailed token link
// ConfirmedEmail godoc
// @Summary Confirm email address
// @Tags auth
// @Produce json
// @Param token path string true "Confirmation token"
// @Success 200 {object} MessageResponse "Confirmation result"
// @Failure 400 {object} map[string]string "Verification error"
// @Failure 422 {object} map[string]string "Invalid token"
// @Router /auth/confirmed_email/{token} [get]

func (h *AuthHandler) ConfirmedEmail(c echo.Context) error {
	email, err := EmailFromToken(c.Param("token"), ScopeEmail)
	if err != nil {
		return RespondError(c, NewAPIError(ErrCodeValidationFailed, "Invalid token for email verification"))
	}

	ctx := c.Request().Context()
	user, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		LogError("Failed to look up user for confirmation", err)
		return RespondError(c, ErrInternal("Verification failed"))
	}
	if user == nil {
		return RespondError(c, ErrBadRequest("Verification error"))
	}

	if user.Confirmed {
		return c.JSON(http.StatusOK, MessageResponse{Message: "Your email address is already confirmed"})
	}

	if err := h.users.ConfirmEmail(ctx, email); err != nil {
		LogError("Failed to confirm email", err, "email", email)
		return RespondError(c, ErrInternal("Verification failed"))
	}
	h.cache.Invalidate(user.Username)

	LogInfo("Email confirmed", "username", user.Username)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Email successfully confirmed"})
}

// RequestEmail sends a fresh confirmation email for an unconfirmed account.
// The response does not reveal whether the address is registered.
// RequestEmail godoc
// @Summary Request a confirmation email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RequestEmailRequest true "Account email"
// @Success 200 {object} MessageResponse "Request accepted"
// @Failure 422 {object} map[string]string "Validation failed"
// @Router /auth/request_email [post]

func (h *AuthHandler) RequestEmail(c echo.Context) error {
	var req RequestEmailRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		LogError("Failed to look up user for confirmation request", err)
		return RespondError(c, ErrInternal("Request failed"))
	}

	if user != nil && user.Confirmed {
		return c.JSON(http.StatusOK, MessageResponse{Message: "Your email address is already confirmed"})
	}

	if user != nil {
		host := requestBaseURL(c)
		go h.mailer.SendVerification(user.Email, user.Username, host)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Check your email for confirmation instructions"})
}

// ResetPassword hashes the requested new password and emails a link that
// confirms the change. Nothing is stored until the link is followed.
// ResetPassword godoc
// @Summary Request a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Account email and new password"
// @Success 200 {object} MessageResponse "Request accepted"
// @Failure 400 {object} map[string]string "Email not confirmed"
// @Failure 422 {object} map[string]string "Validation failed"
// @Router /auth/reset_password [post]

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		LogError("Failed to look up user for password reset", err)
		return RespondError(c, ErrInternal("Request failed"))
	}
	if user == nil {
		return c.JSON(http.StatusOK, MessageResponse{Message: "Check your email for password reset instructions"})
	}
	if !user.Confirmed {
		return RespondError(c, ErrBadRequest("Your email address is not confirmed"))
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		LogError("Failed to hash password", err)
		return RespondError(c, ErrInternal("Request failed"))
	}

	host := requestBaseURL(c)
	go h.mailer.SendPasswordReset(user.Email, user.Username, host, hashed)

	return c.JSON(http.StatusOK, MessageResponse{Message: "Check your email for password reset instructions"})
}

// ConfirmResetPassword installs the password carried by a reset token
// ConfirmResetPassword godoc
// @Summary Confirm a password reset
// @Tags auth
// @Produce json
// @Param token path string true "Reset token"
// @Success 200 {object} MessageResponse "Password changed"
// @Failure 400 {object} map[string]string "Invalid or expired token"
// @Failure 404 {object} map[string]string "User not found"
// @Router /auth/confirm_reset_password/{token} [get]

func (h *AuthHandler) ConfirmResetPassword(c echo.Context) error {
	claims, err := ParseToken(c.Param("token"))
	if err != nil {
		return RespondError(c, NewAPIError(ErrCodeValidationFailed, "Invalid token for email verification"))
	}
	if claims.Scope != ScopeReset || claims.Subject == "" || claims.Password == "" {
		return RespondError(c, ErrBadRequest("Invalid or expired token"))
	}

	ctx := c.Request().Context()
	user, err := h.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		LogError("Failed to look up user for password reset", err)
		return RespondError(c, ErrInternal("Password reset failed"))
	}
	if user == nil {
		return RespondError(c, NewAPIError(ErrCodeNotFound, "User with this email was not found"))
	}

	if err := h.users.ResetPassword(ctx, user.ID, claims.Password); err != nil {
		LogError("Failed to reset password", err, "user_id", user.ID)
		return RespondError(c, ErrInternal("Password reset failed"))
	}
	h.cache.Invalidate(user.Username)

	LogInfo("Password changed", "username", user.Username)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Password has been successfully changed"})
}

// JWTMiddleware authenticates requests with a Bearer token and loads the
// account behind it into the request context
func (h *AuthHandler) JWTMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var tokenString string

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return RespondError(c, ErrUnauthorized("Not authenticated"))
		}

		claims, err := ParseToken(tokenString)
		if err != nil || claims.Scope != ScopeAccess || claims.Subject == "" {
			return RespondError(c, ErrInvalidToken(""))
		}

		user, ok := h.cache.Get(claims.Subject)
		if !ok {
			user, err = h.users.GetByUsername(c.Request().Context(), claims.Subject)
			if err != nil {
				LogError("Failed to load user for token", err, "username", claims.Subject)
				return RespondError(c, ErrInternal("Authentication failed"))
			}
			if user == nil {
				return RespondError(c, ErrInvalidToken(""))
			}
			h.cache.Set(user.Username, user)
		}

		// The stored record wins over token claims
		claims.UserID = user.ID
		claims.Username = user.Username
		claims.Role = user.Role

		// Set user in context
		c.Set("user", claims)
		c.Set("currentUser", user)

		return next(c)
	}
}

// AdminMiddleware ensures the user has the admin role
func (h *AuthHandler) AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := GetClaims(c)
		if claims == nil {
			return RespondError(c, ErrUnauthorized(""))
		}
		if claims.Role != RoleAdmin {
			return RespondError(c, ErrForbidden("Permission denied"))
		}
		return next(c)
	}
}

// CurrentUser returns the account loaded by JWTMiddleware
func CurrentUser(c echo.Context) *User {
	user, ok := c.Get("currentUser").(*User)
	if !ok {
		return nil
	}
	return user
}
