package domain

import "time"

// Role is the closed set of system-level roles.
type Role string

const (
	RoleUser       Role = "SYSTEM_USER"
	RoleAdmin      Role = "SYSTEM_ADMIN"
	RoleResearcher Role = "SYSTEM_RESEARCHER"
)

// Valid reports whether the role is a member of the closed enum.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleResearcher:
		return true
	}
	return false
}

// Capability names a discrete permission granted to a role.
type Capability string

const (
	CapabilityProjectManage Capability = "project:manage"
	CapabilityTicketManage  Capability = "ticket:manage"
	CapabilityExport        Capability = "admin:export"
	CapabilityGenerate      Capability = "admin:generate"
)

// roleCapabilities is the static role→capability table. Resolved at
// compile time; there is no dynamic permission registration.
var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleUser: {
		CapabilityProjectManage: {},
		CapabilityTicketManage:  {},
	},
	RoleResearcher: {
		CapabilityProjectManage: {},
		CapabilityTicketManage:  {},
	},
	RoleAdmin: {
		CapabilityProjectManage: {},
		CapabilityTicketManage:  {},
		CapabilityExport:        {},
		CapabilityGenerate:      {},
	},
}

// Can reports whether the role grants the capability. Unknown roles
// grant nothing.
func (r Role) Can(c Capability) bool {
	caps, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	_, ok = caps[c]
	return ok
}

// User is an account able to own projects and author tickets.
type User struct {
	ID                string
	Username          string
	Email             string
	Name              string
	Surname           string
	PasswordHash      string
	Role              Role
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
}

// Principal is the authenticated caller's identity as passed to services.
// It is a plain value; services never reach back into the transport layer.
type Principal struct {
	UserID   string
	Username string
	Role     Role
}
