package export

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/report-bot/internal/domain"
	"github.com/spec-kit/report-bot/internal/gateway"
	"github.com/spec-kit/report-bot/internal/repository"
	apperrors "github.com/spec-kit/report-bot/pkg/util"
)

// Publisher keeps exactly one published export message current. Every
// publish supersedes the previous message: the old one is deleted (best
// effort) before the new one is sent and pinned.
type Publisher struct {
	gw        gateway.Gateway
	store     *repository.ClassificationStore
	logger    *zap.Logger
	channelID string
	now       func() time.Time

	mu        sync.Mutex
	currentID string
}

// NewPublisher creates a publisher targeting the export channel.
func NewPublisher(gw gateway.Gateway, store *repository.ClassificationStore, logger *zap.Logger, channelID string) *Publisher {
	return &Publisher{
		gw:        gw,
		store:     store,
		logger:    logger,
		channelID: channelID,
		now:       time.Now,
	}
}

// CurrentMessageID returns the id of the currently published export message.
func (p *Publisher) CurrentMessageID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentID
}

// Publish regenerates the export from the store and replaces the published
// copy. Failure to delete the previous message is swallowed; failure to pin
// the new one is logged and non-fatal.
func (p *Publisher) Publish(ctx context.Context) error {
	now := p.now()
	document, stats := Generate(p.store.Snapshot(), now)

	p.mu.Lock()
	previousID := p.currentID
	p.mu.Unlock()

	if previousID != "" {
		if _, err := p.gw.FetchMessage(ctx, p.channelID, previousID); err != nil {
			p.logger.Warn("previous export message not found",
				zap.String("message_id", previousID), zap.Error(err))
		} else if err := p.gw.DeleteMessage(ctx, p.channelID, previousID); err != nil {
			message := "failed to delete previous export message"
			if apperrors.IsPermissionDenied(err) {
				message = "missing permission to delete previous export message"
			}
			p.logger.Warn(message,
				zap.String("message_id", previousID), zap.Error(err))
		}
	}

	opts := &gateway.SendOptions{
		Embed: summaryEmbed(p.store.Len(), stats, now),
		Attachments: []gateway.Attachment{{
			Name:    fmt.Sprintf("reports_export_%s.txt", now.Format("20060102_150405")),
			Content: []byte(document),
		}},
	}

	messageID, err := p.gw.SendMessage(ctx, p.channelID, "", opts)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.currentID = messageID
	p.mu.Unlock()

	if err := p.gw.PinMessage(ctx, p.channelID, messageID); err != nil {
		message := "failed to pin export message"
		if apperrors.IsPermissionDenied(err) {
			message = "missing permission to pin export message"
		}
		p.logger.Warn(message,
			zap.String("message_id", messageID), zap.Error(err))
	}

	p.logger.Info("export message published",
		zap.String("message_id", messageID), zap.Int("total_reports", p.store.Len()))
	return nil
}

func summaryEmbed(total int, stats Stats, now time.Time) *gateway.Embed {
	embed := &gateway.Embed{
		Title: "📊 Reports",
		Description: fmt.Sprintf("**Total reports**: %d\n**Last update**: %s",
			total, now.Format(timestampLayout)),
	}

	var lines []string
	for _, priority := range domain.PriorityOrder {
		if count := stats[priority]; count > 0 {
			lines = append(lines, fmt.Sprintf("• %s: %d", priority, count))
		}
	}
	if len(lines) > 0 {
		embed.Fields = append(embed.Fields, gateway.EmbedField{
			Name:  "📈 Priority statistics",
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}
