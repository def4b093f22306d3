package model

import (
	"fmt"
	"slices"
	"strings"
)

// Role is the permission level of a user.
type Role string

const (
	// RoleProjectManager (GP) plans tasks and decides quality gates.
	RoleProjectManager Role = "GP"
	// RoleFieldExecutor executes tasks on site.
	RoleFieldExecutor Role = "EXECUTOR"
	// RoleClient follows the project progress, read only.
	RoleClient Role = "CLIENT"
)

var roleAliases = map[string]Role{
	"project-manager": RoleProjectManager,
	"field-executor":  RoleFieldExecutor,
	"client":          RoleClient,
}

// ParseRole parses a role from its value or its slug.
func ParseRole(s string) (Role, error) {
	return parseEnum(s, []Role{RoleProjectManager, RoleFieldExecutor, RoleClient}, roleAliases, "role")
}

// Action is an operation gated by role.
type Action string

const (
	ActionCreateTask   Action = "create tasks"
	ActionEditTask     Action = "edit tasks"
	ActionChangeStatus Action = "change task status"
	ActionManagePhotos Action = "manage photos"
	ActionManageChecks Action = "manage subtasks"
	ActionDecideGate   Action = "decide quality gates"
	ActionEditGate     Action = "edit quality gate notes"
)

var rolePermissions = map[Role][]Action{
	RoleProjectManager: {
		ActionCreateTask,
		ActionEditTask,
		ActionChangeStatus,
		ActionManagePhotos,
		ActionManageChecks,
		ActionDecideGate,
		ActionEditGate,
	},
	RoleFieldExecutor: {
		ActionCreateTask,
		ActionEditTask,
		ActionChangeStatus,
		ActionManagePhotos,
		ActionManageChecks,
	},
	RoleClient: {},
}

// User is an actor of the system.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Can returns true if the user role allows the action.
func (u User) Can(a Action) bool {
	return slices.Contains(rolePermissions[u.Role], a)
}

// Authorize returns a PermissionError when the user can't perform the action.
func (u User) Authorize(a Action) error {
	if !u.Can(a) {
		return &PermissionError{Role: u.Role, Action: a}
	}
	return nil
}

// Validate validates the user.
func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required: %w", ErrNotValid)
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("user name is required: %w", ErrNotValid)
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return err
	}
	return nil
}

// DefaultUsers is the user directory used when none is configured.
var DefaultUsers = []User{
	{ID: "u1", Name: "Eng. Carlos (GP)", Role: RoleProjectManager},
	{ID: "u2", Name: "Mestre João (Executor)", Role: RoleFieldExecutor},
	{ID: "u3", Name: "Cliente Ana", Role: RoleClient},
}

// FindUser returns the user with the id from the directory.
func FindUser(users []User, id string) (User, error) {
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
}
