package ragdoll

import "fmt"

// Role identifies a body segment of the ragdoll
type Role int

// Roles in setup order. Observations traverse segments in this order.
const (
	Hips Role = iota
	Spine
	Head
	ThighL
	ShinL
	FootL
	ThighR
	ShinR
	FootR
	ArmL
	ForearmL
	ArmR
	ForearmR

	NumRoles int = iota
)

// Root is the segment which the orientation frame and relative
// positions are computed from. It has no joint drive.
const Root = Hips

var roleNames = [NumRoles]string{
	"hips",
	"spine",
	"head",
	"thighL",
	"shinL",
	"footL",
	"thighR",
	"shinR",
	"footR",
	"armL",
	"forearmL",
	"armR",
	"forearmR",
}

func (r Role) String() string {
	if r < 0 || int(r) >= NumRoles {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// Valid returns whether r names a segment
func (r Role) Valid() bool {
	return r >= 0 && int(r) < NumRoles
}

// ParseRole returns the Role with the given name
func ParseRole(name string) (Role, error) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), nil
		}
	}
	return -1, fmt.Errorf("parseRole: no such role %q", name)
}

// Roles returns all roles in setup order
func Roles() []Role {
	roles := make([]Role, NumRoles)
	for i := range roles {
		roles[i] = Role(i)
	}
	return roles
}
