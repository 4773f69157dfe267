package domain

// Role is a member's tier inside a group room. Resolution is first match
// in priority order, so a user holds exactly one effective tier even if
// the underlying id lists overlap.
type Role int

const (
	RoleNone Role = iota
	RoleMember
	RoleAdmin
	RoleSubOwner
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleSubOwner:
		return "subowner"
	case RoleAdmin:
		return "admin"
	case RoleMember:
		return "member"
	default:
		return "none"
	}
}

// ParseRole maps a wire-level role name to its tier. The owner tier is
// intentionally not parseable: it is assigned once, at room creation.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "subowner":
		return RoleSubOwner, true
	case "admin":
		return RoleAdmin, true
	default:
		return RoleNone, false
	}
}

// Action is a group administration operation.
type Action int

const (
	ActionSetNickname Action = iota
	ActionSetAnnouncement
	ActionSetRole
	ActionMute
	ActionKick
)

var actionNames = map[string]Action{
	"set_nickname":     ActionSetNickname,
	"set_announcement": ActionSetAnnouncement,
	"set_role":         ActionSetRole,
	"mute":             ActionMute,
	"kick":             ActionKick,
}

func ParseAction(s string) (Action, bool) {
	a, ok := actionNames[s]
	return a, ok
}

// permissions is the fixed role -> allowed action set table. Members hold
// no administrative permissions at all.
var permissions = map[Role]map[Action]struct{}{
	RoleOwner: {
		ActionSetNickname:     {},
		ActionSetAnnouncement: {},
		ActionSetRole:         {},
		ActionMute:            {},
		ActionKick:            {},
	},
	RoleSubOwner: {
		ActionSetNickname:     {},
		ActionSetAnnouncement: {},
		ActionMute:            {},
		ActionKick:            {},
	},
	RoleAdmin: {
		ActionSetNickname: {},
		ActionMute:        {},
		ActionKick:        {},
	},
	RoleMember: {},
}

// Can reports whether the role may perform the action. set_role carries an
// extra owner-only restriction enforced here on top of the table.
func (r Role) Can(a Action) bool {
	if a == ActionSetRole && r != RoleOwner {
		return false
	}
	allowed, ok := permissions[r]
	if !ok {
		return false
	}
	_, ok = allowed[a]
	return ok
}
