package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_RoleOf_Resolves_First_Matching_Tier(t *testing.T) {
	req := require.New(t)

	room := NewGroupRoom("owner", "team", []string{"sub", "adm", "plain"})
	room.SubOwnerIDs = []string{"sub"}
	room.AdminIDs = []string{"adm", "sub"} // overlap: subowner wins by priority

	req.Equal(RoleOwner, room.RoleOf("owner"))
	req.Equal(RoleSubOwner, room.RoleOf("sub"))
	req.Equal(RoleAdmin, room.RoleOf("adm"))
	req.Equal(RoleMember, room.RoleOf("plain"))
	req.Equal(RoleNone, room.RoleOf("stranger"))
}

func Test_Group_Membership_Contains_All_Tiers(t *testing.T) {
	req := require.New(t)

	room := NewGroupRoom("owner", "team", []string{"a", "b", "owner"})
	req.Equal([]string{"owner", "a", "b"}, room.Members)
	req.Equal("owner", room.OwnerID)
	req.True(room.HasMember(room.OwnerID))
}

func Test_Permission_Table(t *testing.T) {
	req := require.New(t)

	req.True(RoleOwner.Can(ActionSetRole))
	req.True(RoleOwner.Can(ActionKick))
	req.True(RoleSubOwner.Can(ActionSetAnnouncement))
	req.False(RoleSubOwner.Can(ActionSetRole))
	req.True(RoleAdmin.Can(ActionMute))
	req.False(RoleAdmin.Can(ActionSetAnnouncement))
	req.False(RoleAdmin.Can(ActionSetRole))

	// a plain member can never mutate a room
	for _, a := range []Action{ActionSetNickname, ActionSetAnnouncement, ActionSetRole, ActionMute, ActionKick} {
		req.False(RoleMember.Can(a))
		req.False(RoleNone.Can(a))
	}
}

func Test_IsMuted_Uses_Strict_Comparison(t *testing.T) {
	req := require.New(t)

	now := time.Now().UTC()
	room := NewGroupRoom("owner", "team", []string{"bob"})

	req.False(room.IsMuted("bob", now))

	room.Mute("bob", now.UnixMilli())
	req.False(room.IsMuted("bob", now), "mute-until equal to now has already lifted")

	room.Mute("bob", now.Add(time.Minute).UnixMilli())
	req.True(room.IsMuted("bob", now))
	req.False(room.IsMuted("bob", now.Add(2*time.Minute)))
}

func Test_Grant_Keeps_Tier_Lists_Disjoint(t *testing.T) {
	req := require.New(t)

	room := NewGroupRoom("owner", "team", []string{"bob"})
	room.Grant("bob", RoleAdmin)
	room.Grant("bob", RoleSubOwner)

	req.Equal(RoleSubOwner, room.RoleOf("bob"))
	req.NotContains(room.AdminIDs, "bob")
}

func Test_RemoveMember_Clears_All_Traces(t *testing.T) {
	req := require.New(t)

	room := NewGroupRoom("owner", "team", []string{"bob"})
	room.Grant("bob", RoleAdmin)
	room.SetNickname("bob", "bobby")
	room.Mute("bob", time.Now().Add(time.Hour).UnixMilli())

	room.RemoveMember("bob")

	req.False(room.HasMember("bob"))
	req.Equal(RoleNone, room.RoleOf("bob"))
	req.NotContains(room.AdminIDs, "bob")
	req.NotContains(room.MemberNicknames, "bob")
	req.NotContains(room.Settings.MutedMembers, "bob")
}

func Test_ParseRole_Never_Yields_Owner(t *testing.T) {
	req := require.New(t)

	_, ok := ParseRole("owner")
	req.False(ok)

	role, ok := ParseRole("subowner")
	req.True(ok)
	req.Equal(RoleSubOwner, role)
}

func Test_Private_Room_Has_Exactly_Two_Members(t *testing.T) {
	req := require.New(t)

	room := NewPrivateRoom("a", "b")
	req.Equal(RoomPrivate, room.Kind)
	req.Equal([]string{"a", "b"}, room.Members)
	req.NotNil(room.Settings.MutedMembers)
}
