// Package discord is the chat-platform glue: session lifecycle, prefix
// commands, component interactions, and moderation. Everything stateful is
// delegated to the report service; this layer only translates Discord events
// into service calls and renders the results.
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/report-bot/internal/config"
	"github.com/spec-kit/report-bot/internal/domain"
	"github.com/spec-kit/report-bot/internal/gateway"
	"github.com/spec-kit/report-bot/internal/observability"
	"github.com/spec-kit/report-bot/internal/service"
)

// NewSession builds a discordgo session with the intents the bot needs.
// SyncEvents keeps event dispatch single-threaded, which is what the core's
// shared state assumes between await points.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent
	session.SyncEvents = true
	return session, nil
}

// Bot wires Discord events to the report service.
type Bot struct {
	session *discordgo.Session
	client  *Client
	svc     *service.ReportService
	runtime *observability.Runtime
	logger  *zap.Logger
	cfg     config.DiscordConfig
	banned  []string
}

// NewBot registers all event handlers on the session.
func NewBot(
	session *discordgo.Session,
	client *Client,
	svc *service.ReportService,
	runtime *observability.Runtime,
	logger *zap.Logger,
	cfg config.DiscordConfig,
	moderation config.ModerationConfig,
) *Bot {
	b := &Bot{
		session: session,
		client:  client,
		svc:     svc,
		runtime: runtime,
		logger:  logger,
		cfg:     cfg,
		banned:  moderation.BannedWords,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onDisconnect)
	session.AddHandler(b.onResumed)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)

	return b
}

// Open connects to the Discord gateway.
func (b *Bot) Open() error {
	return b.session.Open()
}

// Close disconnects from the Discord gateway.
func (b *Bot) Close() error {
	return b.session.Close()
}

// Latency returns the measured gateway heartbeat latency.
func (b *Bot) Latency() time.Duration {
	return b.session.HeartbeatLatency()
}

// GuildCount returns the number of connected guilds.
func (b *Bot) GuildCount() int {
	if b.session.State == nil {
		return 0
	}
	return len(b.session.State.Guilds)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.runtime.Heartbeat()
	b.logger.Info("bot online",
		zap.String("username", r.User.Username),
		zap.String("user_id", r.User.ID),
		zap.Int("guilds", len(r.Guilds)))
}

func (b *Bot) onDisconnect(s *discordgo.Session, d *discordgo.Disconnect) {
	b.runtime.RecordDisconnect()
	b.logger.Warn("gateway disconnected")
}

func (b *Bot) onResumed(s *discordgo.Session, r *discordgo.Resumed) {
	b.runtime.RecordReconnect()
	b.logger.Info("gateway resumed")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	ctx := context.Background()
	isCommand := strings.HasPrefix(m.Content, b.cfg.CommandPrefix)

	// Commands are restricted to a single channel.
	if isCommand && b.cfg.CommandChannelID != "" && m.ChannelID != b.cfg.CommandChannelID {
		notice := fmt.Sprintf("❌ <@%s> Bot commands are only allowed in <#%s>", m.Author.ID, b.cfg.CommandChannelID)
		if _, err := b.client.SendMessage(ctx, m.ChannelID, notice, nil); err != nil {
			b.logger.Warn("command gate notice failed", zap.Error(err))
		}
		return
	}

	b.moderate(ctx, m)

	if !isCommand {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(m.Content, b.cfg.CommandPrefix))
	if len(fields) == 0 {
		return
	}
	switch strings.ToLower(fields[0]) {
	case "bug":
		b.handleIntakeCommand(ctx, m, domain.KindBug,
			"Please, can you be more precise? Please select the category")
	case "crash":
		b.handleIntakeCommand(ctx, m, domain.KindCrash,
			"Oh no, that's terrible! Please, can you be more precise? Please select the category")
	case "todo":
		b.handleIntakeCommand(ctx, m, domain.KindTodo,
			"📝 Let's add a TODO. Please select the category.")
	case "status":
		b.handleStatusCommand(ctx, m)
	}
}

// moderate deletes messages containing a banned word, with a softer notice
// when the bot lacks the permission to delete.
func (b *Bot) moderate(ctx context.Context, m *discordgo.MessageCreate) {
	lower := strings.ToLower(m.Content)
	for _, word := range b.banned {
		if !strings.Contains(lower, word) {
			continue
		}
		if err := b.client.DeleteMessage(ctx, m.ChannelID, m.ID); err != nil {
			b.logger.Warn("moderation delete failed", zap.Error(err))
			fallback := fmt.Sprintf("<@%s> please avoid using inappropriate language.", m.Author.ID)
			if _, err := b.client.SendMessage(ctx, m.ChannelID, fallback, nil); err != nil {
				b.logger.Warn("moderation fallback notice failed", zap.Error(err))
			}
			return
		}
		notice := fmt.Sprintf("<@%s> don't use that word", m.Author.ID)
		if _, err := b.client.SendMessage(ctx, m.ChannelID, notice, nil); err != nil {
			b.logger.Warn("moderation notice failed", zap.Error(err))
		}
		b.logger.Info("message moderated",
			zap.String("author_id", m.Author.ID),
			zap.String("channel_id", m.ChannelID))
		return
	}
}

func (b *Bot) handleIntakeCommand(ctx context.Context, m *discordgo.MessageCreate, kind domain.ReportKind, ack string) {
	b.runtime.RecordCommand()

	if _, err := b.client.SendMessage(ctx, m.ChannelID, ack, nil); err != nil {
		b.logger.Warn("intake ack failed", zap.Error(err))
	}

	reportID := b.svc.StartIntake(m.Author.ID, kind, displayName(m), m.ChannelID, m.Timestamp)

	var prompt string
	var controls []gateway.Control
	if kind.RequiresVersion() {
		prompt = fmt.Sprintf("<@%s> Select the **version** used (ID: #%d):", m.Author.ID, reportID)
		controls = versionControls(m.Author.ID)
	} else {
		prompt = fmt.Sprintf("<@%s> Select the **category** for TODO (ID: #%d):", m.Author.ID, reportID)
		controls = categoryControls(m.Author.ID)
	}

	if _, err := b.client.SendMessage(ctx, m.ChannelID, prompt, &gateway.SendOptions{Controls: controls}); err != nil {
		b.logger.Error("intake prompt failed", zap.Int("report_id", reportID), zap.Error(err))
	}
}

func (b *Bot) handleStatusCommand(ctx context.Context, m *discordgo.MessageCreate) {
	b.runtime.RecordCommand()
	stats := b.runtime.Stats()

	days := int(stats.Uptime.Hours()) / 24
	hours := int(stats.Uptime.Hours()) % 24
	minutes := int(stats.Uptime.Minutes()) % 60
	seconds := int(stats.Uptime.Seconds()) % 60

	embed := &gateway.Embed{
		Title: "📊 Bot Status",
		Fields: []gateway.EmbedField{
			{Name: "⏱️ Uptime", Value: fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds), Inline: true},
			{Name: "🏓 Latency", Value: fmt.Sprintf("%dms", b.Latency().Milliseconds()), Inline: true},
			{Name: "🌐 Servers", Value: fmt.Sprintf("%d", b.GuildCount()), Inline: true},
			{Name: "📈 Statistics", Value: fmt.Sprintf("Disconnections: %d\nReconnections: %d", stats.Disconnections, stats.Reconnections)},
		},
	}

	if _, err := b.client.SendMessage(ctx, m.ChannelID, "", &gateway.SendOptions{Embed: embed}); err != nil {
		b.logger.Warn("status reply failed", zap.Error(err))
	}
}

// displayName prefers the guild nickname, then the global name, then the
// plain username.
func displayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
