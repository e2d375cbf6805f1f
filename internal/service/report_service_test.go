package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/report-bot/internal/domain"
	"github.com/spec-kit/report-bot/internal/events"
	"github.com/spec-kit/report-bot/internal/export"
	"github.com/spec-kit/report-bot/internal/gateway"
	"github.com/spec-kit/report-bot/internal/intake"
	"github.com/spec-kit/report-bot/internal/observability"
	"github.com/spec-kit/report-bot/internal/repository"
	apperrors "github.com/spec-kit/report-bot/pkg/util"
)

const (
	reportChannel = "report-chan"
	exportChannel = "export-chan"
	originChannel = "origin-chan"
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
	nextID  int
}

func (f *fakeGateway) SendMessage(ctx context.Context, channelID, content string, opts *gateway.SendOptions) (string, error) {
	f.nextID++
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content, opts: opts})
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakeGateway) EditMessage(ctx context.Context, channelID, messageID, content string, controls []gateway.Control) error {
	return nil
}

func (f *fakeGateway) FetchMessage(ctx context.Context, channelID, messageID string) (*gateway.Message, error) {
	return &gateway.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeGateway) PinMessage(ctx context.Context, channelID, messageID string) error {
	f.pinned = append(f.pinned, messageID)
	return nil
}

// channelMessages returns the contents sent to one channel, in order.
func (f *fakeGateway) channelMessages(channelID string) []sentMessage {
	var out []sentMessage
	for _, message := range f.sent {
		if message.channelID == channelID {
			out = append(out, message)
		}
	}
	return out
}

func newTestService(t *testing.T) (*ReportService, *fakeGateway) {
	t.Helper()
	logger := zap.NewNop()
	gw := &fakeGateway{}

	store := repository.NewClassificationStore()
	dispatcher := events.NewInMemoryDispatcher(logger)
	publisher := export.NewPublisher(gw, store, logger, exportChannel)

	svc := NewReportService(Dependencies{
		Tracker:         intake.NewTracker(repository.NewReportRegistry()),
		Store:           store,
		Meta:            repository.NewReportMetaStore(),
		Publisher:       publisher,
		Gateway:         gw,
		Dispatcher:      dispatcher,
		Runtime:         observability.NewRuntime(),
		Logger:          logger,
		ReportChannelID: reportChannel,
	})
	svc.RegisterHandlers()
	NewNotificationService(gw, logger).RegisterHandlers(dispatcher)
	return svc, gw
}

// runBugIntake walks a complete Bug intake for the user and returns the id
// of the posted report message and its rendered content.
func runBugIntake(t *testing.T, svc *ReportService, gw *fakeGateway, userID string) (string, string) {
	t.Helper()
	svc.StartIntake(userID, domain.KindBug, "SomeUser", originChannel, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	require.NoError(t, svc.SetVersion(userID, userID, "0.0.1"))
	_, err := svc.SetCategory(userID, userID, "MAP")
	require.NoError(t, err)
	require.NoError(t, svc.SetSubcategory(userID, userID, "UI"))

	before := len(gw.channelMessages(reportChannel))
	_, err = svc.CompleteIntake(context.Background(), userID, userID, "crash on zoom")
	require.NoError(t, err)

	posted := gw.channelMessages(reportChannel)
	require.Greater(t, len(posted), before)
	// SendMessage ids are sequential over all sends; recompute the id of
	// the report message from its position in the global send log.
	for i, message := range gw.sent {
		if message.channelID == reportChannel && message.content == posted[len(posted)-1].content {
			return fmt.Sprintf("msg-%d", i+1), message.content
		}
	}
	t.Fatal("report message not found")
	return "", ""
}

func TestCompleteIntakePostsReportWithControls(t *testing.T) {
	svc, gw := newTestService(t)

	_, content := runBugIntake(t, svc, gw, "user-1")

	assert.Contains(t, content, "**Version**: 0.0.1")
	assert.Contains(t, content, "**Category**: MAP")
	assert.Contains(t, content, "**Sub-category**: UI")
	assert.Contains(t, content, "**Priority**: —")
	assert.Contains(t, content, "**Description (optional)**: crash on zoom")

	posted := gw.channelMessages(reportChannel)
	require.Len(t, posted, 1)
	require.NotNil(t, posted[0].opts)
	require.Len(t, posted[0].opts.Controls, 4)
	for _, control := range posted[0].opts.Controls {
		assert.False(t, control.Disabled)
	}

	// The rendered text is echoed to the origin channel.
	echoes := gw.channelMessages(originChannel)
	require.Len(t, echoes, 1)
	assert.Equal(t, content, echoes[0].content)
}

func TestCompleteIntakeEchoesIntoReportChannel(t *testing.T) {
	svc, gw := newTestService(t)
	userID := "user-1"

	// Intake started in the report channel itself still gets the echo:
	// the report with controls first, then the plain copy.
	svc.StartIntake(userID, domain.KindBug, "SomeUser", reportChannel, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	require.NoError(t, svc.SetVersion(userID, userID, "0.0.1"))
	_, err := svc.SetCategory(userID, userID, "MAP")
	require.NoError(t, err)
	require.NoError(t, svc.SetSubcategory(userID, userID, "UI"))
	_, err = svc.CompleteIntake(context.Background(), userID, userID, "crash on zoom")
	require.NoError(t, err)

	posted := gw.channelMessages(reportChannel)
	require.Len(t, posted, 2)
	assert.Equal(t, posted[0].content, posted[1].content)
	require.NotNil(t, posted[0].opts)
	assert.Nil(t, posted[1].opts)
}

func TestCompleteIntakeRequiresOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	svc.StartIntake("owner", domain.KindBug, "O", originChannel, time.Now())

	_, err := svc.CompleteIntake(context.Background(), "owner", "intruder", "desc")
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = svc.CompleteIntake(context.Background(), "ghost", "ghost", "desc")
	assert.True(t, apperrors.IsSessionExpired(err))
}

func TestClassifyStoresRecordAndPublishesExport(t *testing.T) {
	svc, gw := newTestService(t)
	messageID, content := runBugIntake(t, svc, gw, "user-1")

	result, err := svc.Classify(context.Background(), reportChannel, messageID, content, domain.PriorityHigh)
	require.NoError(t, err)

	assert.Contains(t, result.Content, "**Priority**: HIGH PRIORITY")
	assert.False(t, result.DisableControls)

	record, ok := svc.Store().Get(1)
	require.True(t, ok)
	assert.Equal(t, domain.PriorityHigh, record.Priority)
	assert.Equal(t, "MAP", record.Category)
	assert.Equal(t, "UI", record.Subcategory)
	assert.Equal(t, "SomeUser", record.User)
	assert.Equal(t, domain.KindBug, record.Kind)

	exports := gw.channelMessages(exportChannel)
	require.Len(t, exports, 1)
	require.NotNil(t, exports[0].opts)
	require.Len(t, exports[0].opts.Attachments, 1)
	document := string(exports[0].opts.Attachments[0].Content)
	assert.Contains(t, document, "## HIGH PRIORITY")
	assert.Contains(t, document, "### MAP")
	assert.Contains(t, document, "#### UI")
	assert.Contains(t, document, "- **#1**")
}

func TestPrepareClassificationDefersSideEffects(t *testing.T) {
	svc, gw := newTestService(t)
	messageID, content := runBugIntake(t, svc, gw, "user-1")
	sendsBefore := len(gw.sent)

	classification := svc.PrepareClassification(reportChannel, messageID, content, domain.PrioritySolved)

	assert.Contains(t, classification.Content, "**Priority**: ALREADY SOLVED")
	assert.True(t, classification.DisableControls)
	// Nothing is stored or sent until the report message has been
	// re-rendered and the classification committed.
	assert.Equal(t, 0, svc.Store().Len())
	assert.Len(t, gw.sent, sendsBefore)

	svc.CommitClassification(context.Background(), classification)

	assert.Equal(t, 1, svc.Store().Len())
	assert.Len(t, gw.channelMessages(exportChannel), 1)
	reportMessages := gw.channelMessages(reportChannel)
	assert.Equal(t, "This bug #1 has been already solved.", reportMessages[len(reportMessages)-1].content)
}

func TestClassifySendsNotices(t *testing.T) {
	svc, gw := newTestService(t)
	messageID, content := runBugIntake(t, svc, gw, "user-1")

	_, err := svc.Classify(context.Background(), reportChannel, messageID, content, domain.PriorityLow)
	require.NoError(t, err)

	reportMessages := gw.channelMessages(reportChannel)
	notice := reportMessages[len(reportMessages)-1].content
	assert.Equal(t, "```This bug #1 has been classified as low priority.```", notice)

	originMessages := gw.channelMessages(originChannel)
	userNotice := originMessages[len(originMessages)-1].content
	assert.True(t, strings.HasPrefix(userNotice, "<@user-1> "))
	assert.Contains(t, userNotice, "Your feedback #1 has been registered")
	assert.Contains(t, userNotice, "low priority")
}

func TestClassifyAlreadySolvedDisablesControls(t *testing.T) {
	svc, gw := newTestService(t)
	messageID, content := runBugIntake(t, svc, gw, "user-1")

	result, err := svc.Classify(context.Background(), reportChannel, messageID, content, domain.PrioritySolved)
	require.NoError(t, err)
	assert.True(t, result.DisableControls)

	reportMessages := gw.channelMessages(reportChannel)
	notice := reportMessages[len(reportMessages)-1].content
	assert.Equal(t, "This bug #1 has been already solved.", notice)

	originMessages := gw.channelMessages(originChannel)
	userNotice := originMessages[len(originMessages)-1].content
	assert.Contains(t, userNotice, "the devs have already solved this issue")
}

func TestReclassifyOverwritesAndReplacesExport(t *testing.T) {
	svc, gw := newTestService(t)
	messageID, content := runBugIntake(t, svc, gw, "user-1")

	first, err := svc.Classify(context.Background(), reportChannel, messageID, content, domain.PriorityHigh)
	require.NoError(t, err)
	_, err = svc.Classify(context.Background(), reportChannel, messageID, first.Content, domain.PriorityLow)
	require.NoError(t, err)

	assert.Equal(t, 1, svc.Store().Len())
	record, _ := svc.Store().Get(1)
	assert.Equal(t, domain.PriorityLow, record.Priority)

	// Two export publishes, the first message superseded.
	exports := gw.channelMessages(exportChannel)
	require.Len(t, exports, 2)
	assert.Len(t, gw.deleted, 1)
	document := string(exports[1].opts.Attachments[0].Content)
	assert.Contains(t, document, "## LOW PRIORITY")
	assert.NotContains(t, document, "## HIGH PRIORITY")
}

func TestTodoIntakeKeepsVersionPlaceholder(t *testing.T) {
	svc, gw := newTestService(t)
	userID := "planner"

	svc.StartIntake(userID, domain.KindTodo, "Planner", originChannel, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	_, err := svc.SetCategory(userID, userID, "FACTIONS")
	require.NoError(t, err)
	require.NoError(t, svc.SetSubcategory(userID, userID, "Flags"))
	_, err = svc.CompleteIntake(context.Background(), userID, userID, "fix banner colors")
	require.NoError(t, err)

	posted := gw.channelMessages(reportChannel)
	require.Len(t, posted, 1)
	assert.Contains(t, posted[0].content, "**Version**: —")

	_, err = svc.Classify(context.Background(), reportChannel, "msg-1", posted[0].content, domain.PriorityMedium)
	require.NoError(t, err)

	record, ok := svc.Store().Get(1)
	require.True(t, ok)
	assert.Equal(t, domain.Placeholder, record.Version)
	assert.Equal(t, domain.KindTodo, record.Kind)
}

func TestClassifyWithoutMetadataStillRecords(t *testing.T) {
	svc, _ := newTestService(t)

	content := "**Date**: 2026-08-29\n**User**: U\n**Version**: 0.0.0\n**Category**: MAP\n**Sub-category**: UI\n**Priority**: —\n**Description (optional)**: —"
	result, err := svc.Classify(context.Background(), reportChannel, "unknown-msg", content, domain.PriorityMedium)
	require.NoError(t, err)
	assert.Contains(t, result.Content, "**Priority**: MEDIUM PRIORITY")

	record, ok := svc.Store().Get(0)
	require.True(t, ok)
	assert.Equal(t, domain.PriorityMedium, record.Priority)
}

func TestStartIntakeAbandonsPriorSessionButConsumesID(t *testing.T) {
	svc, _ := newTestService(t)

	first := svc.StartIntake("user-1", domain.KindBug, "U", originChannel, time.Now())
	second := svc.StartIntake("user-1", domain.KindCrash, "U", originChannel, time.Now())

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)

	kind, ok := svc.SessionKind("user-1")
	require.True(t, ok)
	assert.Equal(t, domain.KindCrash, kind)
}
