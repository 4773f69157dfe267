package runtime

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	apperrors "chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/repositories"
)

const processingFailed = "message processing failed"

// clientFacing are the violations whose message may travel back to the
// originating connection. Anything else is reported generically so
// internal failures never leak detail.
var clientFacing = []error{
	apperrors.ErrNotAMember,
	apperrors.ErrForbidden,
	apperrors.ErrUserNotFound,
	apperrors.ErrRoomNotFound,
	apperrors.ErrTargetBanned,
	apperrors.ErrMuted,
	apperrors.ErrMalformedEvent,
}

// Router validates each inbound event against the room model and the
// registry, persists the result, and fans out to members. One router
// instance serves every connection; cross-entity mutations serialize on
// keyed locks so no concurrent read observes a half-updated pair.
type Router struct {
	log       *slog.Logger
	registry  contract.Registry
	users     repositories.IUserRepository
	rooms     repositories.IRoomRepository
	messages  repositories.IMessageRepository
	moderator *moderation.Moderator
	validate  *validator.Validate
	locks     keyedMutex
}

// NewRouter wires the router. moderator may be nil to disable censoring.
func NewRouter(
	log *slog.Logger,
	registry contract.Registry,
	users repositories.IUserRepository,
	rooms repositories.IRoomRepository,
	messages repositories.IMessageRepository,
	moderator *moderation.Moderator,
) *Router {
	return &Router{
		log:       log,
		registry:  registry,
		users:     users,
		rooms:     rooms,
		messages:  messages,
		moderator: moderator,
		validate:  validator.New(),
	}
}

// HandleEvent processes one inbound frame from a connection. Violations
// are reported to the sender only, as an `error` event; the connection
// itself always survives. Unrecognized event types are ignored for
// forward compatibility.
func (r *Router) HandleEvent(ctx context.Context, senderID string, raw []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("event handler panic",
				"user_id", senderID,
				"panic", rec)
			r.registry.Send(senderID, event.Error(processingFailed))
		}
	}()

	var envelope event.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		r.registry.Send(senderID, event.Error(apperrors.ErrMalformedEvent.Error()))
		return
	}

	var err error
	switch envelope.Type {
	case event.TypeChatMessage:
		err = r.handleChatMessage(senderID, envelope.Data)
	case event.TypeAddFriend:
		err = r.handleAddFriend(senderID, envelope.Data)
	case event.TypeCreateGroup:
		err = r.handleCreateGroup(senderID, envelope.Data)
	case event.TypeGroupAction:
		err = r.handleGroupAction(senderID, envelope.Data)
	default:
		r.log.Debug("ignoring unknown event type", "type", envelope.Type)
		return
	}
	if err != nil {
		r.log.Warn("event rejected",
			"type", envelope.Type,
			"user_id", senderID,
			"error", err)
		r.registry.Send(senderID, event.Error(errorMessage(err)))
	}
}

func (r *Router) handleChatMessage(senderID string, data json.RawMessage) error {
	var payload event.ChatMessage
	if err := r.decode(data, &payload); err != nil {
		return err
	}
	msgType := domain.MessageType(payload.Type)
	if !msgType.Valid() {
		return apperrors.ErrMalformedEvent
	}

	unlock := r.locks.Lock(roomLockKey(payload.RoomID))
	defer unlock()

	room, err := r.rooms.Get(payload.RoomID)
	if stderrors.Is(err, apperrors.ErrRoomNotFound) {
		return apperrors.ErrNotAMember
	}
	if err != nil {
		return err
	}
	if !room.HasMember(senderID) {
		return apperrors.ErrNotAMember
	}
	// the mute check uses the processing instant, not queueing time
	if room.Kind == domain.RoomGroup && room.IsMuted(senderID, time.Now().UTC()) {
		return apperrors.ErrMuted
	}

	content := payload.Content
	if msgType == domain.MessageText && r.moderator != nil {
		content = r.moderator.Censor(content)
	}

	message := domain.Message{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		Type:      msgType,
		Content:   content,
		Sender:    senderID,
		Timestamp: time.Now().UTC().UnixMilli(),
		FileName:  payload.FileName,
		FileSize:  payload.FileSize,
	}
	if err := r.messages.Store(message); err != nil {
		return err
	}
	room.LastMessage = &message
	if err := r.rooms.Put(room); err != nil {
		return err
	}

	// offline members simply miss it, there is no backlog or replay
	r.registry.SendAll(room.Members, event.NewMessage(message))
	return nil
}

func (r *Router) handleAddFriend(senderID string, data json.RawMessage) error {
	var payload event.AddFriend
	if err := r.decode(data, &payload); err != nil {
		return err
	}

	unlock := r.locks.Lock(pairLockKey(senderID, payload.FriendID))
	defer unlock()

	friend, err := r.users.Get(payload.FriendID)
	if err != nil {
		return err
	}
	if friend.IsBanned {
		return apperrors.ErrTargetBanned
	}
	sender, err := r.users.Get(senderID)
	if err != nil {
		return err
	}

	// re-adding an existing pair reuses the room, keeping "exactly one
	// private room per pair" true across re-invocations
	room, err := r.rooms.FindPrivateByMembers(senderID, friend.ID)
	if err != nil {
		return err
	}
	if room == nil {
		room = domain.NewPrivateRoom(senderID, friend.ID)
	}

	sender.AddFriend(friend.ID)
	friend.AddFriend(sender.ID)
	if err := r.users.Put(sender); err != nil {
		return err
	}
	if err := r.users.Put(friend); err != nil {
		return err
	}
	if err := r.rooms.Put(room); err != nil {
		return err
	}

	// both parties learn about the new room, each with the counterpart's
	// public profile
	r.registry.Send(sender.ID, event.FriendAdded(room, friend.Public()))
	r.registry.Send(friend.ID, event.FriendAdded(room, sender.Public()))
	return nil
}

func (r *Router) handleCreateGroup(senderID string, data json.RawMessage) error {
	var payload event.CreateGroup
	if err := r.decode(data, &payload); err != nil {
		return err
	}

	room := domain.NewGroupRoom(senderID, payload.Name, payload.MemberIDs)
	if err := r.rooms.Put(room); err != nil {
		return err
	}

	for _, memberID := range room.Members {
		member, err := r.users.Get(memberID)
		if err != nil {
			// invited ids may not resolve to accounts; the room keeps
			// them, their user record just has nothing to update
			continue
		}
		if member.AddGroup(room.ID) {
			if err := r.users.Put(member); err != nil {
				return err
			}
		}
	}

	r.registry.SendAll(room.Members, event.GroupCreated(room))
	return nil
}

func (r *Router) handleGroupAction(senderID string, data json.RawMessage) error {
	var payload event.GroupAction
	if err := r.decode(data, &payload); err != nil {
		return err
	}
	action, known := domain.ParseAction(payload.Action)
	if !known {
		return apperrors.ErrForbidden
	}

	unlock := r.locks.Lock(roomLockKey(payload.RoomID))
	defer unlock()

	room, err := r.rooms.Get(payload.RoomID)
	if err != nil {
		return err
	}
	if room.Kind != domain.RoomGroup {
		return apperrors.ErrRoomNotFound
	}
	role := room.RoleOf(senderID)
	if role == domain.RoleNone {
		return apperrors.ErrNotAMember
	}
	if !role.Can(action) {
		return apperrors.ErrForbidden
	}

	var kicked string
	switch action {
	case domain.ActionSetNickname:
		nickname, err := stringValue(payload.Value)
		if err != nil {
			return err
		}
		room.SetNickname(payload.TargetID, nickname)
	case domain.ActionSetAnnouncement:
		announcement, err := stringValue(payload.Value)
		if err != nil {
			return err
		}
		room.Settings.Announcement = announcement
	case domain.ActionSetRole:
		roleName, err := stringValue(payload.Value)
		if err != nil {
			return err
		}
		// the owner tier can neither be granted nor reassigned
		granted, ok := domain.ParseRole(roleName)
		if !ok || payload.TargetID == room.OwnerID {
			return apperrors.ErrForbidden
		}
		room.Grant(payload.TargetID, granted)
	case domain.ActionMute:
		duration, err := int64Value(payload.Value)
		if err != nil {
			return err
		}
		room.Mute(payload.TargetID, time.Now().UTC().UnixMilli()+duration)
	case domain.ActionKick:
		if payload.TargetID == room.OwnerID {
			return apperrors.ErrForbidden
		}
		if !room.HasMember(payload.TargetID) {
			return apperrors.ErrUserNotFound
		}
		room.RemoveMember(payload.TargetID)
		kicked = payload.TargetID
		if target, err := r.users.Get(kicked); err == nil {
			target.RemoveGroup(room.ID)
			if err := r.users.Put(target); err != nil {
				return err
			}
		}
	}

	if err := r.rooms.Put(room); err != nil {
		return err
	}

	recipients := room.Members
	if kicked != "" {
		// the kicked member still learns why the room disappeared
		recipients = append(append([]string(nil), room.Members...), kicked)
	}
	r.registry.SendAll(recipients, event.GroupUpdated(room))
	return nil
}

// decode unmarshals and validates an event payload, folding both failure
// modes into the malformed-event violation.
func (r *Router) decode(data json.RawMessage, payload any) error {
	if err := json.Unmarshal(data, payload); err != nil {
		return apperrors.ErrMalformedEvent
	}
	if err := r.validate.Struct(payload); err != nil {
		return apperrors.ErrMalformedEvent
	}
	return nil
}

func stringValue(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", apperrors.ErrMalformedEvent
	}
	return s, nil
}

func int64Value(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, apperrors.ErrMalformedEvent
		}
		return int64(f), nil
	}
	return n, nil
}

func errorMessage(err error) string {
	for _, sentinel := range clientFacing {
		if stderrors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return processingFailed
}
