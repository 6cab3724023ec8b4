// Package authz holds the static role to capability table. Capability checks
// are a pure lookup and run before any storage access; resource-level
// membership checks live on the models themselves.
package authz

const (
	CanManageProjects = "manage-projects"
	CanManageTickets  = "manage-tickets"
)

var roleCapabilities = map[string]map[string]bool{
	"admin": {
		CanManageProjects: true,
		CanManageTickets:  true,
	},
	"manager": {
		CanManageProjects: true,
		CanManageTickets:  true,
	},
	"developer": {
		CanManageTickets: true,
	},
	"viewer": {},
}

// HasCapability reports whether the role grants the named capability.
// Unknown roles grant nothing.
func HasCapability(role, capability string) bool {
	capabilities, ok := roleCapabilities[role]

	if !ok {
		return false
	}

	return capabilities[capability]
}
