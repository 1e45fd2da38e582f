package domain

// Actor identifies who is performing a mutating call. It is derived from the
// authenticated session and carried through to the audit recorder; it is never
// persisted on its own.
type Actor struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Role represents the access tier of an authenticated user.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleStaff  Role = "STAFF"
	RoleClient Role = "CLIENT"
)

// Capability is a single permitted action. Staff and admin are both elevated,
// but staff is denied the admin-only capabilities, so permissions are modeled
// as a capability set rather than a binary flag.
type Capability string

const (
	CapChangeOrderStatus    Capability = "order:change_status"
	CapDeleteOrder          Capability = "order:delete"
	CapViewAuditLog         Capability = "audit:view"
	CapManageUsers          Capability = "user:manage"
	CapDeleteUser           Capability = "user:delete"
	CapChangeUserRole       Capability = "user:change_role"
	CapUpdateRequestStatus  Capability = "request:update_status"
	CapManageSubscriptions  Capability = "subscription:manage"
	CapManageInvoices       Capability = "invoice:manage"
	CapManageBillingConfig  Capability = "billing:manage"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapChangeOrderStatus:   true,
		CapDeleteOrder:         true,
		CapViewAuditLog:        true,
		CapManageUsers:         true,
		CapDeleteUser:          true,
		CapChangeUserRole:      true,
		CapUpdateRequestStatus: true,
		CapManageSubscriptions: true,
		CapManageInvoices:      true,
		CapManageBillingConfig: true,
	},
	RoleStaff: {
		CapChangeOrderStatus:   true,
		CapDeleteOrder:         true,
		CapViewAuditLog:        true,
		CapManageUsers:         true,
		CapUpdateRequestStatus: true,
		CapManageSubscriptions: true,
		CapManageInvoices:      true,
	},
	RoleClient: {},
}

// Can reports whether the role holds the given capability.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// Elevated reports whether the role belongs to the staff/admin tier.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleStaff
}

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Owns reports whether the actor is the client identified by email. Client
// usernames are their email addresses.
func (a Actor) Owns(email string) bool {
	return a.Username != "" && a.Username == email
}
