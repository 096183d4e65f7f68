package domain

import (
	"errors"
	"time"
)

var (
	ErrMessageBodyEmpty      = errors.New("message body is required")
	ErrMessageChannelInvalid = errors.New("message channel must be email or sms")
)

// MessageChannel is the delivery channel for a communication.
type MessageChannel string

const (
	ChannelEmail MessageChannel = "email"
	ChannelSMS   MessageChannel = "sms"
)

// MessageKind selects the template used when AI drafting is unavailable.
type MessageKind string

const (
	KindPaymentReminder MessageKind = "payment_reminder"
	KindWelcome         MessageKind = "welcome"
	KindGeneral         MessageKind = "general"
)

// MessageStatus records the delivery outcome.
type MessageStatus string

const (
	MessageStatusSent   MessageStatus = "sent"
	MessageStatusFailed MessageStatus = "failed"
)

// MessageLog is a record of an outbound communication to a parent.
type MessageLog struct {
	ID        int32          `json:"id"`
	ProgramID int32          `json:"programId"`
	ParentID  int32          `json:"parentId"`
	Channel   MessageChannel `json:"channel"`
	Subject   *string        `json:"subject,omitempty"`
	Body      string         `json:"body"`
	Status    MessageStatus  `json:"status"`
	AIDrafted bool           `json:"aiDrafted"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (m *MessageLog) Validate() error {
	if m.Body == "" {
		return ErrMessageBodyEmpty
	}
	switch m.Channel {
	case ChannelEmail, ChannelSMS:
	default:
		return ErrMessageChannelInvalid
	}
	return nil
}

type MessageRepository interface {
	Create(msg *MessageLog) (*MessageLog, error)
	GetByParent(programID int32, parentID int32) ([]*MessageLog, error)
}
