package role

import (
	"errors"
	"fmt"
)

// Permission is an atomic capability key, registered once at startup.
type Permission struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Role is a named bundle of Permissions, registered once at startup.
type Role struct {
	Key         string       `json:"key"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
}

var (
	// ErrAlreadyRegistered marks duplicate Permission or Role keys, a
	// deployment configuration bug caught at startup.
	ErrAlreadyRegistered = errors.New("key already registered")

	// ErrUnregistered marks lookups of unknown keys. A stored grant
	// referencing an unregistered Role fails loudly with this.
	ErrUnregistered = errors.New("key not registered")
)

var (
	registeredPermissions = map[string]Permission{}
	registeredRoles       = map[string]Role{}
)

// Register adds Permissions and Roles to the process-wide registry. The
// registry is write-once per key: any collision fails and should abort
// bootstrap. Not safe for concurrent use; call before serving requests.
func Register(permissions []Permission, roles []Role) error {
	for _, p := range permissions {
		if _, found := registeredPermissions[p.Key]; found {
			return fmt.Errorf("permission %s: %w", p.Key, ErrAlreadyRegistered)
		}
		registeredPermissions[p.Key] = p
	}
	for _, r := range roles {
		if _, found := registeredRoles[r.Key]; found {
			return fmt.Errorf("role %s: %w", r.Key, ErrAlreadyRegistered)
		}
		registeredRoles[r.Key] = r
	}
	return nil
}

// Reset clears the registry. Test isolation only.
func Reset() {
	registeredPermissions = map[string]Permission{}
	registeredRoles = map[string]Role{}
}

func FindPermission(key string) (Permission, bool) {
	p, found := registeredPermissions[key]
	return p, found
}

func GetPermission(key string) (Permission, error) {
	p, found := registeredPermissions[key]
	if !found {
		return Permission{}, fmt.Errorf("permission %s: %w", key, ErrUnregistered)
	}
	return p, nil
}

func FindRole(key string) (Role, bool) {
	r, found := registeredRoles[key]
	return r, found
}

func GetRole(key string) (Role, error) {
	r, found := registeredRoles[key]
	if !found {
		return Role{}, fmt.Errorf("role %s: %w", key, ErrUnregistered)
	}
	return r, nil
}
