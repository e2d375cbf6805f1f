package export

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/report-bot/internal/domain"
	"github.com/spec-kit/report-bot/internal/gateway"
	"github.com/spec-kit/report-bot/internal/repository"
	apperrors "github.com/spec-kit/report-bot/pkg/util"
)

type sentMessage struct {
	channelID string
	content   string
	opts      *gateway.SendOptions
}

type fakeGateway struct {
	sent    []sentMessage
	deleted []string
	pinned  []string

	nextID    int
	sendErr   error
	deleteErr error
	pinErr    error
}

func (f *fakeGateway) SendMessage(ctx context.Context, channelID, content string, opts *gateway.SendOptions) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content, opts: opts})
	return messageID(f.nextID), nil
}

func (f *fakeGateway) EditMessage(ctx context.Context, channelID, messageID, content string, controls []gateway.Control) error {
	return nil
}

func (f *fakeGateway) FetchMessage(ctx context.Context, channelID, messageID string) (*gateway.Message, error) {
	return &gateway.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeGateway) PinMessage(ctx context.Context, channelID, messageID string) error {
	if f.pinErr != nil {
		return f.pinErr
	}
	f.pinned = append(f.pinned, messageID)
	return nil
}

func messageID(n int) string {
	return fmt.Sprintf("msg-%d", n)
}

func newPublisherForTest(gw *fakeGateway) (*Publisher, *repository.ClassificationStore) {
	store := repository.NewClassificationStore()
	publisher := NewPublisher(gw, store, zap.NewNop(), "export-chan")
	publisher.now = func() time.Time { return exportTime }
	return publisher, store
}

func TestPublishSendsAttachmentAndPins(t *testing.T) {
	gw := &fakeGateway{}
	publisher, store := newPublisherForTest(gw)
	store.Upsert(domain.ClassificationRecord{ReportID: 7, Priority: domain.PriorityHigh, Category: "MAP", Subcategory: "UI", User: "U", Version: "0.0.1", Date: "2026-08-29", Kind: domain.KindBug})

	require.NoError(t, publisher.Publish(context.Background()))

	require.Len(t, gw.sent, 1)
	sent := gw.sent[0]
	assert.Equal(t, "export-chan", sent.channelID)
	require.NotNil(t, sent.opts)
	require.Len(t, sent.opts.Attachments, 1)
	assert.Equal(t, "reports_export_20260829_123000.txt", sent.opts.Attachments[0].Name)
	assert.Contains(t, string(sent.opts.Attachments[0].Content), "## HIGH PRIORITY")
	require.NotNil(t, sent.opts.Embed)
	assert.Contains(t, sent.opts.Embed.Description, "**Total reports**: 1")

	require.Len(t, gw.pinned, 1)
	assert.Equal(t, publisher.CurrentMessageID(), gw.pinned[0])
}

func TestPublishReplacesPreviousMessage(t *testing.T) {
	gw := &fakeGateway{}
	publisher, store := newPublisherForTest(gw)
	store.Upsert(domain.ClassificationRecord{ReportID: 1, Priority: domain.PriorityLow})

	require.NoError(t, publisher.Publish(context.Background()))
	first := publisher.CurrentMessageID()

	require.NoError(t, publisher.Publish(context.Background()))
	second := publisher.CurrentMessageID()

	// Exactly one export message is current; the old one was deleted.
	assert.NotEqual(t, first, second)
	assert.Equal(t, []string{first}, gw.deleted)
	assert.Len(t, gw.sent, 2)
}

func TestPublishSwallowsDeleteAndPinFailures(t *testing.T) {
	gw := &fakeGateway{deleteErr: errors.New("gone"), pinErr: errors.New("too many pins")}
	publisher, store := newPublisherForTest(gw)
	store.Upsert(domain.ClassificationRecord{ReportID: 1, Priority: domain.PriorityLow})

	require.NoError(t, publisher.Publish(context.Background()))
	require.NoError(t, publisher.Publish(context.Background()))
	assert.Len(t, gw.sent, 2)
	assert.Empty(t, gw.pinned)
}

func TestPublishFlagsMissingPinPermission(t *testing.T) {
	gw := &fakeGateway{pinErr: apperrors.NewPermissionDenied("pin message", errors.New("403"))}
	core, logs := observer.New(zap.WarnLevel)
	store := repository.NewClassificationStore()
	publisher := NewPublisher(gw, store, zap.New(core), "export-chan")
	publisher.now = func() time.Time { return exportTime }
	store.Upsert(domain.ClassificationRecord{ReportID: 1, Priority: domain.PriorityLow})

	require.NoError(t, publisher.Publish(context.Background()))

	assert.Len(t, logs.FilterMessage("missing permission to pin export message").All(), 1)
	assert.Empty(t, gw.pinned)
}

func TestPublishPropagatesSendFailure(t *testing.T) {
	gw := &fakeGateway{sendErr: errors.New("transport down")}
	publisher, _ := newPublisherForTest(gw)

	err := publisher.Publish(context.Background())
	assert.Error(t, err)
	assert.Empty(t, publisher.CurrentMessageID())
}

func TestPublishEmbedStatsLines(t *testing.T) {
	gw := &fakeGateway{}
	publisher, store := newPublisherForTest(gw)
	store.Upsert(domain.ClassificationRecord{ReportID: 1, Priority: domain.PriorityHigh})
	store.Upsert(domain.ClassificationRecord{ReportID: 2, Priority: domain.PriorityHigh})
	store.Upsert(domain.ClassificationRecord{ReportID: 3, Priority: domain.PrioritySolved})

	require.NoError(t, publisher.Publish(context.Background()))

	embed := gw.sent[0].opts.Embed
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "📈 Priority statistics", embed.Fields[0].Name)
	assert.Equal(t, "• HIGH PRIORITY: 2\n• ALREADY SOLVED: 1", embed.Fields[0].Value)
}
