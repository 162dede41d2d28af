package models

// Role determines which operations a user may perform.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
	RoleChef    Role = "chef"
)

// ParseRole maps a raw string onto one of the known roles.
// Unknown values are rejected rather than stored.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleStudent, RoleChef:
		return Role(s), true
	}
	return "", false
}

// Capabilities enumerates the operations a role may perform. Every
// access-control check in the handlers goes through this table; roles
// are never compared as raw strings at call sites.
type Capabilities struct {
	PlaceOrders       bool // build a cart and materialize it into an order
	ManageCatalog     bool // create/update/delete dishes and categories
	ManageUsers       bool // list users and change roles
	ViewAllOrders     bool // read any order, not just own
	ViewKitchenQueue  bool // list orders currently in preparation
	SetAnyOrderStatus bool // move an order to any enumerated status
}

var roleCapabilities = map[Role]Capabilities{
	RoleAdmin: {
		PlaceOrders:       true,
		ManageCatalog:     true,
		ManageUsers:       true,
		ViewAllOrders:     true,
		ViewKitchenQueue:  true,
		SetAnyOrderStatus: true,
	},
	RoleStudent: {
		PlaceOrders: true,
	},
	RoleChef: {
		ViewKitchenQueue: true,
	},
}

// Capabilities returns the capability set for the role. Unknown roles
// get the zero set, which permits nothing.
func (r Role) Capabilities() Capabilities {
	return roleCapabilities[r]
}
