package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/redis/go-redis/v9"
	"github.com/staffdesk/staff-console/internal/config"
	"github.com/staffdesk/staff-console/internal/domain"
)

// UserStore is the persistence surface of the user directory. The repository
// package provides the Postgres implementation; tests substitute an in-memory
// one.
type UserStore interface {
	ListActiveUsers() ([]*domain.User, error)
	GetUserByID(id int64) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	CreateUser(user *domain.User) error
	PatchUser(id int64, patch *domain.UserPatch) (*domain.User, error)
	UpdateUserPassword(id int64, passwordHash string) error
	SoftDeleteUser(id int64) error
	CheckEmailIfExists(email string) (bool, error)
}

// MailPublisher hands mail messages off to the delivery worker.
type MailPublisher interface {
	PublishMail(ctx context.Context, msg *domain.MailMessage) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	store       UserStore
	translator  ut.Translator
	mailQueue   MailPublisher
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, store UserStore, mailQueue MailPublisher, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		store:       store,
		translator:  trans,
		mailQueue:   mailQueue,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Route("/reset-password", func(r chi.Router) {
				r.Post("/require", h.RequireResetPassword)
				r.Post("/confirm", h.ConfirmResetPassword)
			})
			r.Group(func(r chi.Router) {
				r.Use(h.auth)
				r.Get("/me", h.GetCurrentUser)
				r.Patch("/me/password", h.UpdateMyPassword)
			})
		})

		r.Route("/users", func(r chi.Router) {
			// the listing itself is readable without a session; the surface
			// decides what to render based on the resolved principal
			r.Get("/", h.ListUsers)

			// every mutation requires an authenticated admin, regardless of
			// what the caller renders
			r.Group(func(r chi.Router) {
				r.Use(h.auth)
				r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
				r.Post("/", h.CreateUser)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.targetUser)
					r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
					r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
				})
			})
		})
	})
}
