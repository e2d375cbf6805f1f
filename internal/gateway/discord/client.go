package discord

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/report-bot/internal/gateway"
	apperrors "github.com/spec-kit/report-bot/pkg/util"
)

// Client adapts a discordgo session to the gateway.Gateway interface.
type Client struct {
	session *discordgo.Session
}

// NewClient wraps an established session.
func NewClient(session *discordgo.Session) *Client {
	return &Client{session: session}
}

var _ gateway.Gateway = (*Client)(nil)

// SendMessage posts a message with optional controls, attachments, and embed.
func (c *Client) SendMessage(ctx context.Context, channelID, content string, opts *gateway.SendOptions) (string, error) {
	send := &discordgo.MessageSend{Content: content}
	if opts != nil {
		if len(opts.Controls) > 0 {
			send.Components = componentRows(opts.Controls)
		}
		for _, attachment := range opts.Attachments {
			send.Files = append(send.Files, &discordgo.File{
				Name:        attachment.Name,
				ContentType: "text/plain",
				Reader:      bytes.NewReader(attachment.Content),
			})
		}
		if opts.Embed != nil {
			send.Embeds = []*discordgo.MessageEmbed{buildEmbed(opts.Embed)}
		}
	}

	message, err := c.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return "", wrapErr("send message", err)
	}
	return message.ID, nil
}

// EditMessage replaces a message's content and control set.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID, content string, controls []gateway.Control) error {
	edit := discordgo.NewMessageEdit(channelID, messageID)
	edit.SetContent(content)
	if controls != nil {
		rows := componentRows(controls)
		edit.Components = &rows
	}
	if _, err := c.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return wrapErr("edit message", err)
	}
	return nil
}

// FetchMessage retrieves a posted message.
func (c *Client) FetchMessage(ctx context.Context, channelID, messageID string) (*gateway.Message, error) {
	message, err := c.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapErr("fetch message", err)
	}
	return &gateway.Message{
		ID:        message.ID,
		ChannelID: message.ChannelID,
		Content:   message.Content,
	}, nil
}

// DeleteMessage removes a posted message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := c.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return wrapErr("delete message", err)
	}
	return nil
}

// PinMessage pins a posted message.
func (c *Client) PinMessage(ctx context.Context, channelID, messageID string) error {
	if err := c.session.ChannelMessagePin(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return wrapErr("pin message", err)
	}
	return nil
}

// componentRows lays controls out in action rows of at most five buttons.
func componentRows(controls []gateway.Control) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for start := 0; start < len(controls); start += 5 {
		end := start + 5
		if end > len(controls) {
			end = len(controls)
		}
		row := discordgo.ActionsRow{}
		for _, control := range controls[start:end] {
			row.Components = append(row.Components, discordgo.Button{
				Label:    control.Label,
				Style:    buttonStyle(control.Style),
				CustomID: control.ID,
				Disabled: control.Disabled,
			})
		}
		rows = append(rows, row)
	}
	return rows
}

func buttonStyle(style gateway.ControlStyle) discordgo.ButtonStyle {
	switch style {
	case gateway.StylePrimary:
		return discordgo.PrimaryButton
	case gateway.StyleSuccess:
		return discordgo.SuccessButton
	case gateway.StyleDanger:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}

func buildEmbed(embed *gateway.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		Color:       0x3498db,
	}
	for _, field := range embed.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}
	return out
}

// wrapErr maps a discordgo failure onto the domain error taxonomy so callers
// can distinguish missing permissions from plain transport trouble.
func wrapErr(op string, err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return apperrors.NewPermissionDenied(op, err)
	}
	return apperrors.NewTransportError(op, err)
}
