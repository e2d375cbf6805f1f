// Package gateway defines the chat-platform boundary. The core never talks
// to Discord directly; it depends on this interface so the classification
// and export flows stay testable without a live session.
package gateway

import "context"

// ControlStyle selects the visual style of an interactive button.
type ControlStyle int

const (
	StylePrimary ControlStyle = iota
	StyleSecondary
	StyleSuccess
	StyleDanger
)

// Control is one interactive button attached to a message.
type Control struct {
	ID       string
	Label    string
	Style    ControlStyle
	Disabled bool
}

// Attachment is a file attached to an outbound message.
type Attachment struct {
	Name    string
	Content []byte
}

// EmbedField is one name/value pair inside an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich summary card attached to a message.
type Embed struct {
	Title       string
	Description string
	Fields      []EmbedField
}

// SendOptions carries the optional pieces of an outbound message.
type SendOptions struct {
	Controls    []Control
	Attachments []Attachment
	Embed       *Embed
}

// Message is the fetched view of a posted message.
type Message struct {
	ID        string
	ChannelID string
	Content   string
}

// Gateway exposes the platform operations the core needs. Every call may
// fail with a transport or permission error; callers treat those as
// best-effort at their own step boundary.
type Gateway interface {
	SendMessage(ctx context.Context, channelID, content string, opts *SendOptions) (messageID string, err error)
	EditMessage(ctx context.Context, channelID, messageID, content string, controls []Control) error
	FetchMessage(ctx context.Context, channelID, messageID string) (*Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	PinMessage(ctx context.Context, channelID, messageID string) error
}
