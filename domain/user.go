package domain

import "github.com/samber/lo"

// AccountRole is the platform-wide role of an account, distinct from the
// per-room Role tiers.
type AccountRole string

const (
	AccountUser       AccountRole = "user"
	AccountAdmin      AccountRole = "admin"
	AccountSuperAdmin AccountRole = "super_admin"
)

// User is the durable account record. The relay only reads and writes the
// fields relevant to friendship, room membership and ban checks; everything
// else is owned by external surfaces.
type User struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Role      AccountRole `json:"role"`
	CreatedAt int64       `json:"createdAt"`
	IsBanned  bool        `json:"isBanned,omitempty"`
	Friends   []string    `json:"friends"`
	Groups    []string    `json:"groups"`
}

func (u *User) HasFriend(id string) bool {
	return lo.Contains(u.Friends, id)
}

// AddFriend appends the id to the friend set. Returns false when the id
// was already present.
func (u *User) AddFriend(id string) bool {
	if u.HasFriend(id) {
		return false
	}
	u.Friends = append(u.Friends, id)
	return true
}

// AddGroup records a group room id on the user. Returns false when the id
// was already present.
func (u *User) AddGroup(roomID string) bool {
	if lo.Contains(u.Groups, roomID) {
		return false
	}
	u.Groups = append(u.Groups, roomID)
	return true
}

func (u *User) RemoveGroup(roomID string) {
	u.Groups = lo.Without(u.Groups, roomID)
}

// Public returns the profile shared with other users.
type PublicProfile struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Role      AccountRole `json:"role"`
	CreatedAt int64       `json:"createdAt"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
