package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleOwner  Role = "owner"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleOwner:
		return true
	}
	return false
}

func Roles() []Role {
	return []Role{RoleAdmin, RoleMember, RoleOwner}
}

type Department string

const (
	DepartmentEngineering Department = "Engineering"
	DepartmentMarketing   Department = "Marketing"
	DepartmentSales       Department = "Sales"
	DepartmentOperations  Department = "Operations"
)

// DefaultDepartment is assumed whenever a record carries no department.
const DefaultDepartment = DepartmentEngineering

func (d Department) Valid() bool {
	switch d {
	case DepartmentEngineering, DepartmentMarketing, DepartmentSales, DepartmentOperations:
		return true
	}
	return false
}

func Departments() []Department {
	return []Department{DepartmentEngineering, DepartmentMarketing, DepartmentSales, DepartmentOperations}
}

type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name,omitempty"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Department   Department `json:"department"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// Principal is the identity projection attached to a request. It is resolved
// fresh on every call and never cached beyond it.
type Principal struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// UserPatch carries the mutable fields of a user. Nil fields are left
// unchanged by the update.
type UserPatch struct {
	Role       *Role
	Department *Department
}
