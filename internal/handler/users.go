package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/staffdesk/staff-console/internal/domain"
	"github.com/staffdesk/staff-console/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// ListUsers returns every active account, newest first. Soft-deleted records
// never appear here.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListActiveUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, users)
}

// UpdateUser patches the mutable fields of one account. Fields absent from
// the body are left unchanged; updated_at always advances.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role       *string `json:"role" validate:"omitempty,oneof=admin member owner"`
		Department *string `json:"department" validate:"omitempty,oneof=Engineering Marketing Sales Operations"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	target := r.Context().Value(TargetUserCtx).(*domain.User)

	patch := &domain.UserPatch{}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		patch.Role = &role
	}
	if req.Department != nil {
		department := domain.Department(*req.Department)
		patch.Department = &department
	}

	if _, err := h.store.PatchUser(target.ID, patch); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// deleted between the loader middleware and the update
			h.errorResponse(w, r, http.StatusNotFound, "user not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Email      string `json:"email" validate:"required,email"`
		Role       string `json:"role" validate:"required,oneof=admin member owner"`
		Department string `json:"department" validate:"omitempty,oneof=Engineering Marketing Sales Operations"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	exists, err := h.store.CheckEmailIfExists(req.Email)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if exists {
		h.errorResponse(w, r, http.StatusConflict, "email already exists")
		return
	}

	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         domain.Role(req.Role),
		Department:   domain.Department(req.Department),
	}

	if err := h.store.CreateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		// a concurrent insert can still slip past the pre-check
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_key":
			h.errorResponse(w, r, http.StatusConflict, "email already exists")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	mailMessage := &domain.MailMessage{
		Type: "invite",
		To:   user.Email,
		Data: domain.InviteMailData{
			Name:     user.Name,
			Email:    user.Email,
			Password: password,
		},
	}

	if err := h.mailQueue.PublishMail(r.Context(), mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	target := r.Context().Value(TargetUserCtx).(*domain.User)

	if err := h.store.SoftDeleteUser(target.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusNotFound, "user not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r)
}
