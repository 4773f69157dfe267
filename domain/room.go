package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type RoomKind string

const (
	RoomPrivate RoomKind = "private"
	RoomGroup   RoomKind = "group"
)

// GroupSettings is always present on a room, with explicit empty states.
// MutedMembers maps a user id to the epoch-millisecond instant at which
// the send restriction lifts.
type GroupSettings struct {
	Announcement string           `json:"announcement,omitempty"`
	MutedMembers map[string]int64 `json:"mutedMembers"`
}

// Room is a private (exactly two members) or group (role-structured)
// conversation container.
//
// Invariant for group rooms: Members ⊇ {OwnerID} ∪ SubOwnerIDs ∪ AdminIDs.
type Room struct {
	ID              string            `json:"id"`
	Kind            RoomKind          `json:"type"`
	Name            string            `json:"name"`
	Members         []string          `json:"members"`
	CreatedAt       int64             `json:"createdAt"`
	LastMessage     *Message          `json:"lastMessage,omitempty"`
	OwnerID         string            `json:"ownerId,omitempty"`
	SubOwnerIDs     []string          `json:"subOwnerIds,omitempty"`
	AdminIDs        []string          `json:"adminIds,omitempty"`
	MemberNicknames map[string]string `json:"memberNicknames,omitempty"`
	Settings        GroupSettings     `json:"settings"`
}

// NewPrivateRoom builds the two-member room backing a friendship.
func NewPrivateRoom(a, b string) *Room {
	return &Room{
		ID:        uuid.NewString(),
		Kind:      RoomPrivate,
		Members:   []string{a, b},
		CreatedAt: time.Now().UTC().UnixMilli(),
		Settings:  GroupSettings{MutedMembers: map[string]int64{}},
	}
}

// NewGroupRoom builds a group room owned by the creator. The membership
// set is {creator} ∪ memberIDs, deduplicated while keeping order.
func NewGroupRoom(creatorID, name string, memberIDs []string) *Room {
	members := lo.Uniq(append([]string{creatorID}, memberIDs...))
	return &Room{
		ID:              uuid.NewString(),
		Kind:            RoomGroup,
		Name:            name,
		Members:         members,
		CreatedAt:       time.Now().UTC().UnixMilli(),
		OwnerID:         creatorID,
		MemberNicknames: map[string]string{},
		Settings:        GroupSettings{MutedMembers: map[string]int64{}},
	}
}

func (r *Room) HasMember(userID string) bool {
	return lo.Contains(r.Members, userID)
}

// RoleOf resolves the effective tier of a user, first match in priority
// order owner > subowner > admin > member. A non-member has no role.
func (r *Room) RoleOf(userID string) Role {
	if !r.HasMember(userID) {
		return RoleNone
	}
	switch {
	case r.OwnerID == userID:
		return RoleOwner
	case lo.Contains(r.SubOwnerIDs, userID):
		return RoleSubOwner
	case lo.Contains(r.AdminIDs, userID):
		return RoleAdmin
	default:
		return RoleMember
	}
}

// IsMuted reports whether a mute-until instant exists for the user and is
// strictly in the future relative to now.
func (r *Room) IsMuted(userID string, now time.Time) bool {
	until, ok := r.Settings.MutedMembers[userID]
	return ok && until > now.UnixMilli()
}

func (r *Room) Mute(userID string, until int64) {
	if r.Settings.MutedMembers == nil {
		r.Settings.MutedMembers = map[string]int64{}
	}
	r.Settings.MutedMembers[userID] = until
}

func (r *Room) SetNickname(userID, nickname string) {
	if r.MemberNicknames == nil {
		r.MemberNicknames = map[string]string{}
	}
	r.MemberNicknames[userID] = nickname
}

// Grant places the user in the requested tier. Granting a tier clears the
// other grantable tier so the id lists stay disjoint.
func (r *Room) Grant(userID string, role Role) {
	r.SubOwnerIDs = lo.Without(r.SubOwnerIDs, userID)
	r.AdminIDs = lo.Without(r.AdminIDs, userID)
	switch role {
	case RoleSubOwner:
		r.SubOwnerIDs = append(r.SubOwnerIDs, userID)
	case RoleAdmin:
		r.AdminIDs = append(r.AdminIDs, userID)
	}
}

// RemoveMember strips the user from the membership set, all tiers, the
// nickname overrides and the mute map.
func (r *Room) RemoveMember(userID string) {
	r.Members = lo.Without(r.Members, userID)
	r.SubOwnerIDs = lo.Without(r.SubOwnerIDs, userID)
	r.AdminIDs = lo.Without(r.AdminIDs, userID)
	delete(r.MemberNicknames, userID)
	delete(r.Settings.MutedMembers, userID)
}
