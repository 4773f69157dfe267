// Package event defines the wire envelopes exchanged over a client
// connection. Every frame, inbound or outbound, is a JSON object with a
// type discriminator and a type-specific data payload.
package event

import (
	"encoding/json"

	"chat-relay/domain"
)

// Inbound event types.
const (
	TypeChatMessage = "chat_message"
	TypeAddFriend   = "add_friend"
	TypeCreateGroup = "create_group"
	TypeGroupAction = "group_action"
)

// Outbound event types.
const (
	TypeNewMessage   = "new_message"
	TypeFriendAdded  = "friend_added"
	TypeGroupCreated = "group_created"
	TypeGroupUpdated = "group_updated"
	TypeError        = "error"
)

// Envelope is the inbound frame. Data stays raw until the type is known.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type ChatMessage struct {
	RoomID   string `json:"roomId" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Content  string `json:"content" validate:"required"`
	FileName string `json:"fileName,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`
}

type AddFriend struct {
	FriendID string `json:"friendId" validate:"required"`
}

type CreateGroup struct {
	Name      string   `json:"name" validate:"required"`
	MemberIDs []string `json:"memberIds" validate:"required,min=1"`
}

// GroupAction carries one administration operation. Value is decoded per
// action: a string for set_nickname, set_announcement and set_role, a
// millisecond duration for mute.
type GroupAction struct {
	RoomID   string          `json:"roomId" validate:"required"`
	Action   string          `json:"action" validate:"required"`
	TargetID string          `json:"targetId,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// Outbound is the server-to-client frame.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type FriendAddedData struct {
	Room   *domain.Room         `json:"room"`
	Friend domain.PublicProfile `json:"friend"`
}

type RoomData struct {
	Room *domain.Room `json:"room"`
}

type ErrorData struct {
	Message string `json:"message"`
}

func NewMessage(msg domain.Message) Outbound {
	return Outbound{Type: TypeNewMessage, Data: msg}
}

func FriendAdded(room *domain.Room, friend domain.PublicProfile) Outbound {
	return Outbound{Type: TypeFriendAdded, Data: FriendAddedData{Room: room, Friend: friend}}
}

func GroupCreated(room *domain.Room) Outbound {
	return Outbound{Type: TypeGroupCreated, Data: RoomData{Room: room}}
}

func GroupUpdated(room *domain.Room) Outbound {
	return Outbound{Type: TypeGroupUpdated, Data: RoomData{Room: room}}
}

func Error(message string) Outbound {
	return Outbound{Type: TypeError, Data: ErrorData{Message: message}}
}
