package docs

// Common response models for Swagger documentation

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error string `json:"error" example:"Error message"`
	Code  string `json:"code" example:"BAD_REQUEST"`
}

// ValidationErrorResponse represents a failed request validation
type ValidationErrorResponse struct {
	Error   string            `json:"error" example:"Validation failed"`
	Code    string            `json:"code" example:"VALIDATION_FAILED"`
	Details map[string]string `json:"details"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message" example:"Email successfully confirmed"`
}

// RegisterRequest represents new account data
type RegisterRequest struct {
	Username string `json:"username" example:"deadpool"`
	Email    string `json:"email" example:"deadpool@example.com"`
	Password string `json:"password" example:"12345678"`
	Role     string `json:"role,omitempty" example:"user" enums:"user,admin"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" example:"deadpool"`
	Password string `json:"password" example:"12345678"`
}

// TokenResponse represents successful login response
type TokenResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIs..."`
	TokenType   string `json:"token_type" example:"bearer"`
}

// RequestEmailRequest asks for a new confirmation email
type RequestEmailRequest struct {
	Email string `json:"email" example:"deadpool@example.com"`
}

// ResetPasswordRequest asks for a password reset email
type ResetPasswordRequest struct {
	Email    string `json:"email" example:"deadpool@example.com"`
	Password string `json:"password" example:"new-password"`
}

// User represents a user object
type User struct {
	ID       int    `json:"id" example:"1"`
	Username string `json:"username" example:"deadpool"`
	Email    string `json:"email" example:"deadpool@example.com"`
	Avatar   string `json:"avatar" example:"https://www.gravatar.com/avatar/1a79a4d60de6718e8e5b326e338ae533"`
	Role     string `json:"role" example:"user"`
}

// ContactRequest represents contact create/update data
type ContactRequest struct {
	Name     string `json:"name" example:"Wade"`
	Surname  string `json:"surname" example:"Wilson"`
	Email    string `json:"email" example:"wade.wilson@example.com"`
	Phone    string `json:"phone" example:"+380501234567"`
	Birthday string `json:"birthday" example:"1991-02-04"`
	Info     string `json:"info,omitempty" example:"Met at the conference"`
}

// Contact represents a stored contact
type Contact struct {
	ID        int    `json:"id" example:"1"`
	Name      string `json:"name" example:"Wade"`
	Surname   string `json:"surname" example:"Wilson"`
	Email     string `json:"email" example:"wade.wilson@example.com"`
	Phone     string `json:"phone" example:"+380501234567"`
	Birthday  string `json:"birthday" example:"1991-02-04"`
	Info      string `json:"info,omitempty" example:"Met at the conference"`
	CreatedAt string `json:"created_at" example:"2024-01-01T00:00:00Z"`
	UpdatedAt string `json:"updated_at" example:"2024-01-01T00:00:00Z"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	Database  string `json:"database" example:"connected"`
}
