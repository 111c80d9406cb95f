package handler

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/staffdesk/staff-console/internal/config"
	"github.com/staffdesk/staff-console/internal/domain"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory UserStore with the same visible semantics as the
// Postgres repository: soft-deleted rows are invisible, listings come back
// newest first and every patch advances updated_at.
type memStore struct {
	mu      sync.Mutex
	users   map[int64]*domain.User
	nextID  int64
	listErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.DeletedAt != nil {
		deletedAt := *u.DeletedAt
		clone.DeletedAt = &deletedAt
	}
	return &clone
}

// add seeds a record as-is, keeping the given id and timestamps.
func (s *memStore) add(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = cloneUser(u)
	if u.ID >= s.nextID {
		s.nextID = u.ID + 1
	}
}

func (s *memStore) get(id int64) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.users[id])
}

func (s *memStore) ListActiveUsers() ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}

	users := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		if u.DeletedAt == nil {
			users = append(users, cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	return users, nil
}

func (s *memStore) GetUserByID(id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	return cloneUser(u), nil
}

func (s *memStore) GetUserByEmail(email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email && u.DeletedAt == nil {
			return cloneUser(u), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memStore) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Department == "" {
		user.Department = domain.DefaultDepartment
	}
	user.ID = s.nextID
	s.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = cloneUser(user)

	return nil
}

func (s *memStore) PatchUser(id int64, patch *domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}

	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Department != nil {
		u.Department = *patch.Department
	}

	now := time.Now()
	if !now.After(u.UpdatedAt) {
		now = u.UpdatedAt.Add(time.Millisecond)
	}
	u.UpdatedAt = now

	return cloneUser(u), nil
}

func (s *memStore) UpdateUserPassword(id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()

	return nil
}

func (s *memStore) SoftDeleteUser(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return sql.ErrNoRows
	}
	now := time.Now()
	u.DeletedAt = &now
	u.UpdatedAt = now

	return nil
}

func (s *memStore) CheckEmailIfExists(email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email && u.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

type stubMailQueue struct {
	mu       sync.Mutex
	messages []*domain.MailMessage
}

func (q *stubMailQueue) PublishMail(_ context.Context, msg *domain.MailMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, msg)
	return nil
}

func (q *stubMailQueue) sent() []*domain.MailMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*domain.MailMessage{}, q.messages...)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Environment = "test"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 3600
	cfg.InitialAdmin.Email = "root@staffdesk.example"
	cfg.NewUser.PasswordLength = 12
	return cfg
}

func newTestHandler(t *testing.T, store UserStore) (*Handler, *stubMailQueue) {
	t.Helper()

	mailQueue := &stubMailQueue{}
	h, err := NewHandler(testConfig(), store, mailQueue, nil)
	require.NoError(t, err)
	h.RegisterRoutes()

	return h, mailQueue
}

func authCookie(t *testing.T, h *Handler, id int64, role domain.Role) *http.Cookie {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Subject:   strconv.FormatInt(id, 10),
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	require.NoError(t, err)

	return &http.Cookie{Name: authCookieName, Value: ss}
}

// seedDirectory inserts an admin, two members and one soft-deleted record
// with distinct creation times.
func seedDirectory(store *memStore) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	deletedAt := base.Add(72 * time.Hour)

	store.add(&domain.User{
		ID: 1, Name: "Ada Admin", Email: "ada@staffdesk.example",
		Role: domain.RoleAdmin, Department: domain.DepartmentEngineering,
		CreatedAt: base, UpdatedAt: base,
	})
	store.add(&domain.User{
		ID: 42, Name: "Max Member", Email: "max@staffdesk.example",
		Role: domain.RoleMember, Department: domain.DepartmentSales,
		CreatedAt: base.Add(24 * time.Hour), UpdatedAt: base.Add(24 * time.Hour),
	})
	store.add(&domain.User{
		ID: 7, Name: "Olive Owner", Email: "olive@staffdesk.example",
		Role: domain.RoleOwner, Department: domain.DepartmentMarketing,
		CreatedAt: base.Add(48 * time.Hour), UpdatedAt: base.Add(48 * time.Hour),
	})
	store.add(&domain.User{
		ID: 99, Name: "Gone Ghost", Email: "ghost@staffdesk.example",
		Role: domain.RoleMember, Department: domain.DepartmentOperations,
		CreatedAt: base.Add(72 * time.Hour), UpdatedAt: base.Add(72 * time.Hour),
		DeletedAt: &deletedAt,
	})
}
