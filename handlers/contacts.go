package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// ContactHandler serves the per-user contacts API
type ContactHandler struct {
	store *ContactStore
}

// NewContactHandler creates a contact handler
func NewContactHandler(store *ContactStore) *ContactHandler {
	return &ContactHandler{store: store}
}

// ContactRequest is the payload for creating or updating a contact
type ContactRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=50"`
	Surname  string  `json:"surname" validate:"required,min=2,max=50"`
	Email    string  `json:"email" validate:"required,email,max=100"`
	Phone    string  `json:"phone" validate:"required,min=7,max=20"`
	Birthday string  `json:"birthday" validate:"required,datetime=2006-01-02"`
	Info     *string `json:"info" validate:"omitempty,max=500"`
}

func (r *ContactRequest) data(birthday time.Time) ContactData {
	return ContactData{
		Name:     r.Name,
		Surname:  r.Surname,
		Email:    r.Email,
		Phone:    r.Phone,
		Birthday: birthday,
		Info:     r.Info,
	}
}

// parseBirthday converts the validated birthday string
func (r *ContactRequest) parseBirthday(c echo.Context) (time.Time, error) {
	birthday, err := time.Parse(dateLayout, r.Birthday)
	if err != nil {
		return time.Time{}, RespondError(c, ErrValidation([]ValidationError{
			{Field: "birthday", Message: "must be a valid date in YYYY-MM-DD format"},
		}))
	}
	return birthday, nil
}

// queryInt reads an integer query parameter with a default
func queryInt(c echo.Context, name string, def, min int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return 0, RespondError(c, ErrValidation([]ValidationError{
			{Field: name, Message: fmt.Sprintf("must be an integer greater than or equal to %d", min)},
		}))
	}
	return n, nil
}

// List returns the user's contacts, filterable by name, surname and email
// List godoc
// @Summary List contacts
// @Description List the authenticated user's contacts with optional case-insensitive filters
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param name query string false "Filter by name substring"
// @Param surname query string false "Filter by surname substring"
// @Param email query string false "Filter by email substring"
// @Param skip query int false "Records to skip" default(0)
// @Param limit query int false "Maximum records" default(100)
// @Success 200 {array} Contact "Contacts"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /contacts [get]

func (h *ContactHandler) List(c echo.Context) error {
	claims, err := RequireClaims(c)
	if err != nil {
		return err
	}

	skip, err := queryInt(c, "skip", 0, 0)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", 100, 1)
	if err != nil {
		return err
	}

	filter := ContactFilter{
		Name:    c.QueryParam("name"),
		Surname: c.QueryParam("surname"),
		Email:   c.QueryParam("email"),
		Skip:    skip,
		Limit:   limit,
	}

	contacts, err := h.store.List(c.Request().Context(), claims.UserID, filter)
	if err != nil {
		LogError("Failed to list contacts", err, "user_id", claims.UserID)
		return RespondError(c, ErrInternal("Failed to list contacts"))
	}
	return c.JSON(http.StatusOK, contacts)
}

// UpcomingBirthdays returns contacts with a birthday in the next days
// UpcomingBirthdays godoc
// @Summary Upcoming birthdays
// @Description List contacts whose birthday falls within the coming days
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param days query int false "Days to look ahead, at least 1" default(7)
// @Success 200 {array} Contact "Contacts"
// @Failure 422 {object} map[string]string "Invalid days value"
// @Router /contacts/birthdays [get]

func (h *ContactHandler) UpcomingBirthdays(c echo.Context) error {
	claims, err := RequireClaims(c)
	if err != nil {
		return err
	}

	days, err := queryInt(c, "days", 7, 1)
	if err != nil {
		return err
	}

	contacts, err := h.store.UpcomingBirthdays(c.Request().Context(), claims.UserID, days)
	if err != nil {
		LogError("Failed to query birthdays", err, "user_id", claims.UserID)
		return RespondError(c, ErrInternal("Failed to query birthdays"))
	}
	return c.JSON(http.StatusOK, contacts)
}

// Get returns a single contact by ID
// Get godoc
// @Summary Get a contact
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 200 {object} Contact "Contact"
// @Failure 404 {object} map[string]string "Contact not found"
// @Router /contacts/{id} [get]

func (h *ContactHandler) Get(c echo.Context) error {
	claims, err := RequireClaims(c)
	if err != nil {
		return err
	}

	id, convErr := strconv.Atoi(c.Param("id"))
	if convErr != nil {
		return RespondError(c, ErrValidation([]ValidationError{
			{Field: "contact_id", Message: "must be an integer"},
		}))
	}

	contact, err := h.store.GetByID(c.Request().Context(), claims.UserID, id)
	if err != nil {
		LogError("Failed to get contact", err, "user_id", claims.UserID, "contact_id", id)
		return RespondError(c, ErrInternal("Failed to get contact"))
	}
	if contact == nil {
		return RespondError(c, ErrNotFound("Contact"))
	}
	return c.JSON(http.StatusOK, contact)
}

// Create adds a contact for the user
// Create godoc
// @Summary Create a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ContactRequest true "Contact data"
// @Success 201 {object} Contact "Created contact"
// @Failure 400 {object} map[string]string "Duplicate email or phone"
// @Failure 422 {object} map[string]string "Validation failed"
// @Router /contacts [post]

func (h *ContactHandler) Create(c echo.Context) error {
	claims, err := RequireClaims(c)
	if err != nil {
		return err
	}

	var req ContactRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	birthday, err := req.parseBirthday(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	exists, err := h.store.Exists(ctx, claims.UserID, req.Email, req.Phone)
	if err != nil {
		LogError("Failed to check contact uniqueness", err, "user_id", claims.UserID)
		return RespondError(c, ErrInternal("Failed to create contact"))
	}
	if exists {
		return RespondError(c, ErrBadRequest(fmt.Sprintf(
			"Contact with '%s' email or '%s' phone number already exists.", req.Email, req.Phone)))
	}

	contact, err := h.store.Create(ctx, claims.UserID, req.data(birthday))
	if err != nil {
		LogError("Failed to create contact", err, "user_id", claims.UserID)
		return RespondError(c, ErrInternal("Failed to create contact"))
	}

	LogInfo("Contact created", "user_id", claims.UserID, "contact_id", contact.ID)
	return c.JSON(http.StatusCreated, contact)
}

// Update replaces a contact's fields and returns the updated record
// Update godoc
// @Summary Update a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Param request body ContactRequest true "Contact data"
// @Success 200 {object} Contact "Updated contact"
// @Failure 404 {object} map[string]string "Contact not found"
// @Failure 422 {object} map[string]string "Validation failed"
// @Router /contacts/{id} [put]

func (h *ContactHandler) Update(c echo.Context) error {
	claims, err := RequireClaims(c)
	if err != nil {
		return err
	}

	id, convErr := strconv.Atoi(c.Param("id"))
	if convErr != nil {
		return RespondError(c, ErrValidation([]ValidationError{
			{Field: "contact_id", Message: "must be an integer"},
		}))
	}

	var req ContactRequest
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	birthday, err := req.parseBirthday(c)
	if err != nil {
		return err
	}

	contact, err := h.store.Update(c.Request().Context(), claims.UserID, id, req.data(birthday))
	if err != nil {
		LogError("Failed to update contact", err, "user_id", claims.UserID, "contact_id", id)
		return RespondError(c, ErrInternal("Failed to update contact"))
	}
	if contact == nil {
		return RespondError(c, ErrNotFound("Contact"))
	}

	LogInfo("Contact updated", "user_id", claims.UserID, "contact_id", contact.ID)
	return c.JSON(http.StatusOK, contact)
}

// Delete removes a contact and returns the removed record
// Delete godoc
// @Summary Delete a contact
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contact ID"
// @Success 200 {object} Contact "Deleted contact"
// @Failure 404 {object} map[string]string "Contact not found"
// @Router /contacts/{id} [delete]

func (h *ContactHandler) Delete(c echo.Context) error {
	claims, err := RequireClaims(c)
	if err != nil {
		return err
	}

	id, convErr := strconv.Atoi(c.Param("id"))
	if convErr != nil {
		return RespondError(c, ErrValidation([]ValidationError{
			{Field: "contact_id", Message: "must be an integer"},
		}))
	}

	contact, err := h.store.Delete(c.Request().Context(), claims.UserID, id)
	if err != nil {
		LogError("Failed to delete contact", err, "user_id", claims.UserID, "contact_id", id)
		return RespondError(c, ErrInternal("Failed to delete contact"))
	}
	if contact == nil {
		return RespondError(c, ErrNotFound("Contact"))
	}

	LogInfo("Contact deleted", "user_id", claims.UserID, "contact_id", contact.ID)
	return c.JSON(http.StatusOK, contact)
}
