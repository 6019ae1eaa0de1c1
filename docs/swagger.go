// Package docs provides auto-generated Swagger documentation for ContactHatch API.
//
//	@title						ContactHatch API
//	@version					1.0
//	@description				Contact management API with JWT authentication.
//	@description				ContactHatch stores personal contacts per user and tracks upcoming birthdays.
//
//	@contact.name				API Support
//	@contact.email				support@contacthatch.io
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8000
//	@BasePath					/api
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: "Bearer {token}"
//
//	@tag.name					auth
//	@tag.description			Registration, login, email verification and password reset endpoints
//
//	@tag.name					contacts
//	@tag.description			Per-user contact management and birthday lookup endpoints
//
//	@tag.name					users
//	@tag.description			User profile and avatar endpoints
//
//	@tag.name					utils
//	@tag.description			Health check endpoints
package docs
