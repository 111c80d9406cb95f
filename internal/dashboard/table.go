package dashboard

import (
	"context"
	"sync"

	"github.com/staffdesk/staff-console/internal/domain"
)

type pendingKey struct {
	userID int64
	field  Field
}

// UsersTable holds the local, possibly stale, copy of the directory that the
// view renders. The directory service stays the sole writer of the records;
// the table only patches its copy after a confirmed write.
type UsersTable struct {
	client   *Client
	notifier Notifier

	mu        sync.Mutex
	loading   bool
	users     []domain.User
	principal *domain.Principal
	pending   map[pendingKey]bool
}

func NewUsersTable(client *Client, notifier Notifier) *UsersTable {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &UsersTable{
		client:   client,
		notifier: notifier,
		loading:  true,
		pending:  make(map[pendingKey]bool),
	}
}

// Load issues the principal and listing fetches concurrently. The two may
// resolve in either order and fail independently; failure of one never
// invalidates the other.
func (t *UsersTable) Load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		t.loadUsers(ctx)
	}()
	go func() {
		defer wg.Done()
		t.loadCurrentUser(ctx)
	}()

	wg.Wait()
}

func (t *UsersTable) loadUsers(ctx context.Context) {
	users, err := t.client.ListUsers(ctx)
	if err != nil {
		t.notifier.Error("Failed to fetch users")
		return
	}

	t.mu.Lock()
	t.users = users
	t.loading = false
	t.mu.Unlock()
}

func (t *UsersTable) loadCurrentUser(ctx context.Context) {
	principal, err := t.client.CurrentUser(ctx)
	if err != nil {
		// no principal; the table still renders, read-only
		t.notifier.Error("Failed to fetch current user")
		return
	}

	t.mu.Lock()
	t.principal = principal
	t.mu.Unlock()
}

func (t *UsersTable) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// IsAdmin reports whether the resolved principal may edit. This gate is UX
// only; the directory service enforces the same rule on every mutation.
func (t *UsersTable) IsAdmin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isAdminLocked()
}

func (t *UsersTable) isAdminLocked() bool {
	return t.principal != nil && t.principal.Role == domain.RoleAdmin
}

func (t *UsersTable) ChangeRole(ctx context.Context, userID int64, role domain.Role) {
	if !role.Valid() {
		t.notifier.Error("Failed to update user role")
		return
	}
	t.changeField(ctx, userID, FieldRole, string(role))
}

func (t *UsersTable) ChangeDepartment(ctx context.Context, userID int64, department domain.Department) {
	if !department.Valid() {
		t.notifier.Error("Failed to update user department")
		return
	}
	t.changeField(ctx, userID, FieldDepartment, string(department))
}

func (t *UsersTable) changeField(ctx context.Context, userID int64, field Field, value string) {
	key := pendingKey{userID: userID, field: field}

	t.mu.Lock()
	// handlers no-op for non-admins even though the controls are not
	// rendered for them, and while this exact (user, field) is in flight
	if !t.isAdminLocked() || t.pending[key] {
		t.mu.Unlock()
		return
	}
	t.pending[key] = true
	t.mu.Unlock()

	err := t.client.UpdateUserField(ctx, userID, field, value)

	t.mu.Lock()
	delete(t.pending, key)
	if err == nil {
		// reconcile the local copy only after the write is confirmed
		for i := range t.users {
			if t.users[i].ID == userID {
				switch field {
				case FieldRole:
					t.users[i].Role = domain.Role(value)
				case FieldDepartment:
					t.users[i].Department = domain.Department(value)
				}
				break
			}
		}
	}
	t.mu.Unlock()

	switch {
	case err != nil:
		t.notifier.Error("Failed to update user " + string(field))
	default:
		t.notifier.Success("User " + string(field) + " updated successfully")
	}
}

// Cell describes one rendered table cell. A pending cell keeps its control
// disabled and shows a busy indicator for that field only.
type Cell struct {
	Value    string
	Editable bool
	Options  []string
	Pending  bool
}

type Row struct {
	ID         int64
	Name       string
	Email      string
	Role       Cell
	Department Cell
}

// Rows renders the current local state. Role and department become editable
// selectors only when the principal is an admin; name and email are always
// read-only text.
func (t *UsersTable) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	isAdmin := t.isAdminLocked()

	rows := make([]Row, 0, len(t.users))
	for _, user := range t.users {
		name := user.Name
		if name == "" {
			name = "N/A"
		}

		department := user.Department
		if department == "" {
			department = domain.DefaultDepartment
		}

		row := Row{
			ID:    user.ID,
			Name:  name,
			Email: user.Email,
			Role: Cell{
				Value:   string(user.Role),
				Pending: t.pending[pendingKey{userID: user.ID, field: FieldRole}],
			},
			Department: Cell{
				Value:   string(department),
				Pending: t.pending[pendingKey{userID: user.ID, field: FieldDepartment}],
			},
		}

		if isAdmin {
			row.Role.Editable = true
			row.Role.Options = roleOptions()
			row.Department.Editable = true
			row.Department.Options = departmentOptions()
		}

		rows = append(rows, row)
	}

	return rows
}

func roleOptions() []string {
	roles := domain.Roles()
	options := make([]string, len(roles))
	for i, role := range roles {
		options[i] = string(role)
	}
	return options
}

func departmentOptions() []string {
	departments := domain.Departments()
	options := make([]string, len(departments))
	for i, department := range departments {
		options[i] = string(department)
	}
	return options
}
