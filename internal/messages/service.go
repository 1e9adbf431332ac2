package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"

	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	pkgerrors "github.com/agriportal/agriportal-backend/pkg/errors"
	"github.com/agriportal/agriportal-backend/pkg/logger"
	"github.com/agriportal/agriportal-backend/pkg/pagination"
	"github.com/agriportal/agriportal-backend/pkg/redis"
)

type messageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListRoom(ctx context.Context, roomID string, page pagination.Params) ([]models.Message, error)
	MarkRead(ctx context.Context, roomID, reader string) (int64, error)
	CountUnread(ctx context.Context, reader string) (int64, error)
}

// roomBus fans room events out to every connected gateway.
type roomBus interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
	Subscribe(ctx context.Context, channel string) (*redis.Subscription, error)
	RoomChannel(roomID string) string
}

// RoomEnvelope is the payload broadcast on a room channel.
type RoomEnvelope struct {
	Event   enums.RoomEvent `json:"event"`
	Message models.Message  `json:"message"`
}

// SendInput is the sender-supplied message body.
type SendInput struct {
	To       string
	Text     string
	ImageURL string
	Type     string
}

// SendResult reports whether the persisted message reached the room channel.
type SendResult struct {
	Message   *models.Message
	Broadcast bool
}

// Service exposes chat persistence and room fan-out.
type Service interface {
	Send(ctx context.Context, from string, input SendInput) (*SendResult, error)
	Conversation(ctx context.Context, reader, other string, page pagination.Params) (*pagination.Page[models.Message], error)
	MarkConversationRead(ctx context.Context, reader, other string) (int64, error)
	UnreadCount(ctx context.Context, reader string) (int64, error)
	Subscribe(ctx context.Context, a, b string) (*redis.Subscription, error)
}

type service struct {
	store messageStore
	bus   roomBus
	logg  *logger.Logger
}

// NewService wires message persistence and the room bus.
func NewService(store messageStore, bus roomBus, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("message store required")
	}
	if bus == nil {
		return nil, fmt.Errorf("room bus required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: store, bus: bus, logg: logg}, nil
}

// Send persists the message and then broadcasts it to the room. The stored
// message is the source of truth: a failed broadcast is logged and reported
// through Broadcast, never rolled back.
func (s *service) Send(ctx context.Context, from string, input SendInput) (*SendResult, error) {
	sender, err := participant(from)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sender email required")
	}
	recipient, err := participant(input.To)
	if err != nil {
		return nil, pkgerrors.InvalidInput("to must be a valid email")
	}
	if sender == recipient {
		return nil, pkgerrors.InvalidInput("cannot message yourself")
	}

	msg, err := buildMessage(sender, recipient, input)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store message")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"room_id": msg.RoomID, "message_id": msg.ID.String()})
	result := &SendResult{Message: msg}
	payload, err := json.Marshal(RoomEnvelope{Event: msg.Type.EventFor(), Message: *msg})
	if err != nil {
		s.logg.Error(ctx, "message.encode_failed", err)
		return result, nil
	}
	if _, err := s.bus.Publish(ctx, s.bus.RoomChannel(msg.RoomID), payload); err != nil {
		s.logg.Error(ctx, "message.broadcast_failed", err)
		return result, nil
	}
	result.Broadcast = true
	return result, nil
}

func (s *service) Conversation(ctx context.Context, reader, other string, page pagination.Params) (*pagination.Page[models.Message], error) {
	roomID, err := roomFor(reader, other)
	if err != nil {
		return nil, err
	}
	if _, err := pagination.ParseCursor(page.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.store.ListRoom(ctx, roomID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	out := pagination.Finish(rows, page.Limit, func(m models.Message) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.Timestamp, ID: m.ID}
	})
	return &out, nil
}

func (s *service) MarkConversationRead(ctx context.Context, reader, other string) (int64, error) {
	roomID, err := roomFor(reader, other)
	if err != nil {
		return 0, err
	}
	me, _ := participant(reader)
	count, err := s.store.MarkRead(ctx, roomID, me)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark messages read")
	}
	return count, nil
}

func (s *service) UnreadCount(ctx context.Context, reader string) (int64, error) {
	me, err := participant(reader)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "reader email required")
	}
	count, err := s.store.CountUnread(ctx, me)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread messages")
	}
	return count, nil
}

// Subscribe opens the room feed shared by a and b for a socket gateway.
func (s *service) Subscribe(ctx context.Context, a, b string) (*redis.Subscription, error) {
	roomID, err := roomFor(a, b)
	if err != nil {
		return nil, err
	}
	sub, err := s.bus.Subscribe(ctx, s.bus.RoomChannel(roomID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe room")
	}
	return sub, nil
}

func roomFor(reader, other string) (string, error) {
	me, err := participant(reader)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "reader email required")
	}
	them, err := participant(other)
	if err != nil {
		return "", pkgerrors.InvalidInput("with must be a valid email")
	}
	return RoomID(me, them), nil
}

func participant(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

func buildMessage(from, to string, input SendInput) (*models.Message, error) {
	text := strings.TrimSpace(input.Text)
	image := strings.TrimSpace(input.ImageURL)
	if (text == "") == (image == "") {
		return nil, pkgerrors.InvalidInput("exactly one of text or image_url is required")
	}

	msgType := enums.MessageTypeText
	if image != "" {
		msgType = enums.MessageTypeImage
	}
	if strings.TrimSpace(input.Type) != "" {
		declared, err := enums.ParseMessageType(input.Type)
		if err != nil || declared != msgType {
			return nil, pkgerrors.InvalidInput("type does not match message content")
		}
	}

	msg := &models.Message{
		RoomID: RoomID(from, to),
		From:   from,
		To:     to,
		Type:   msgType,
	}
	if text != "" {
		msg.Text = &text
	} else {
		msg.ImageURL = &image
	}
	return msg, nil
}
