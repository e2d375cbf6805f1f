package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/report-bot/internal/domain"
	"github.com/spec-kit/report-bot/internal/gateway"
	"github.com/spec-kit/report-bot/internal/service"
	apperrors "github.com/spec-kit/report-bot/pkg/util"
)

// Intake control ids carry the step tag, the session owner, and the chosen
// value: "intake:<step>:<ownerID>:<value>". The owner id travels in the
// control itself so an interaction from anyone else is rejected without any
// per-message handler state.
const (
	stepVersion     = "version"
	stepCategory    = "category"
	stepSubcategory = "subcategory"
	stepDescription = "description"
)

func intakeControlID(step, ownerID, value string) string {
	if value == "" {
		return fmt.Sprintf("intake:%s:%s", step, ownerID)
	}
	return fmt.Sprintf("intake:%s:%s:%s", step, ownerID, value)
}

// parseIntakeControlID splits an intake control id into step, owner, value.
func parseIntakeControlID(id string) (step, ownerID, value string, ok bool) {
	parts := strings.SplitN(id, ":", 4)
	if len(parts) < 3 || parts[0] != "intake" {
		return "", "", "", false
	}
	step, ownerID = parts[1], parts[2]
	if len(parts) == 4 {
		value = parts[3]
	}
	return step, ownerID, value, true
}

func versionControls(ownerID string) []gateway.Control {
	controls := make([]gateway.Control, 0, len(domain.VersionOptions))
	for _, version := range domain.VersionOptions {
		controls = append(controls, gateway.Control{
			ID:    intakeControlID(stepVersion, ownerID, version),
			Label: version,
			Style: gateway.StyleSecondary,
		})
	}
	return controls
}

func categoryControls(ownerID string) []gateway.Control {
	styles := []gateway.ControlStyle{gateway.StylePrimary, gateway.StyleSecondary, gateway.StyleSuccess, gateway.StyleDanger}
	categories := domain.Categories()
	controls := make([]gateway.Control, 0, len(categories))
	for i, category := range categories {
		controls = append(controls, gateway.Control{
			ID:    intakeControlID(stepCategory, ownerID, category),
			Label: categoryLabel(category),
			Style: styles[i%len(styles)],
		})
	}
	return controls
}

// categoryLabel turns the upper-case taxonomy key into a button label
// ("MAP" → "Map").
func categoryLabel(category string) string {
	if category == "" {
		return category
	}
	return category[:1] + strings.ToLower(category[1:])
}

func subcategoryControls(ownerID string, options []string) []gateway.Control {
	controls := make([]gateway.Control, 0, len(options))
	for _, option := range options {
		controls = append(controls, gateway.Control{
			ID:    intakeControlID(stepSubcategory, ownerID, option),
			Label: option,
			Style: gateway.StyleSecondary,
		})
	}
	return controls
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	switch i.Type {
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID

		if priority, ok := service.PriorityFromControlID(customID); ok {
			b.handlePrioritySelection(ctx, i, priority)
			return
		}

		step, ownerID, value, ok := parseIntakeControlID(customID)
		if !ok {
			b.logger.Warn("unknown component id", zap.String("custom_id", customID))
			return
		}
		switch step {
		case stepVersion:
			b.handleVersionSelection(ctx, i, ownerID, value)
		case stepCategory:
			b.handleCategorySelection(ctx, i, ownerID, value)
		case stepSubcategory:
			b.handleSubcategorySelection(ctx, i, ownerID, value)
		}

	case discordgo.InteractionModalSubmit:
		b.handleDescriptionSubmit(ctx, i)
	}
}

func (b *Bot) handleVersionSelection(ctx context.Context, i *discordgo.InteractionCreate, ownerID, version string) {
	if err := b.svc.SetVersion(ownerID, actorID(i), version); err != nil {
		b.respondStepError(i, err)
		return
	}
	b.respondEphemeral(i, "Please select the **category**:", categoryControls(ownerID))
}

func (b *Bot) handleCategorySelection(ctx context.Context, i *discordgo.InteractionCreate, ownerID, category string) {
	options, err := b.svc.SetCategory(ownerID, actorID(i), category)
	if err != nil {
		b.respondStepError(i, err)
		return
	}

	prompt := "Please select the **sub-category**:"
	if kind, ok := b.svc.SessionKind(ownerID); ok && kind == domain.KindTodo {
		prompt = "Please select the **sub-category** for TODO:"
	}
	b.respondEphemeral(i, prompt, subcategoryControls(ownerID, options))
}

func (b *Bot) handleSubcategorySelection(ctx context.Context, i *discordgo.InteractionCreate, ownerID, subcategory string) {
	if err := b.svc.SetSubcategory(ownerID, actorID(i), subcategory); err != nil {
		b.respondStepError(i, err)
		return
	}

	title := "Short description of the issue"
	label := "Description (max 150 characters)"
	placeholder := "E.g.: crash when opening the region map..."
	required := false
	if kind, ok := b.svc.SessionKind(ownerID); ok && kind == domain.KindTodo {
		title = "TODO description"
		label = "What needs to be done? (max 150)"
		placeholder = "E.g.: rename the label on the map screen..."
		required = true
	}

	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: intakeControlID(stepDescription, ownerID, ""),
			Title:    title,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "description",
							Label:       label,
							Style:       discordgo.TextInputParagraph,
							Placeholder: placeholder,
							Required:    required,
							MaxLength:   domain.DescriptionMaxLen,
						},
					},
				},
			},
		},
	})
	if err != nil {
		b.logger.Warn("description modal failed", zap.Error(err))
	}
}

func (b *Bot) handleDescriptionSubmit(ctx context.Context, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	step, ownerID, _, ok := parseIntakeControlID(data.CustomID)
	if !ok || step != stepDescription {
		return
	}

	description := ""
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			if input, ok := component.(*discordgo.TextInput); ok && input.CustomID == "description" {
				description = input.Value
			}
		}
	}

	draft, err := b.svc.CompleteIntake(ctx, ownerID, actorID(i), description)
	if err != nil {
		b.respondStepError(i, err)
		return
	}

	confirmation := "✅ Report sent to the dedicated channel."
	if draft.Kind == domain.KindTodo {
		confirmation = "✅ TODO sent to the dedicated channel."
	}
	b.respondEphemeral(i, confirmation, nil)
}

func (b *Bot) handlePrioritySelection(ctx context.Context, i *discordgo.InteractionCreate, priority domain.Priority) {
	if i.Message == nil {
		return
	}

	// Re-render the report message before any other side effect so the
	// visible Priority line (and, for the terminal state, the disabled
	// controls) lands inside the interaction's response window. The store
	// and the export/notice fan-out follow only if the edit succeeded.
	classification := b.svc.PrepareClassification(i.ChannelID, i.Message.ID, i.Message.Content, priority)

	components := componentRows(service.PriorityControls(classification.DisableControls))
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    classification.Content,
			Components: components,
		},
	})
	if err != nil {
		b.logger.Warn("priority re-render failed",
			zap.String("message_id", i.Message.ID), zap.Error(err))
		return
	}

	b.svc.CommitClassification(ctx, classification)
}

// respondStepError maps a tracker rejection to the private notice the
// acting user sees; nothing persistent is posted.
func (b *Bot) respondStepError(i *discordgo.InteractionCreate, err error) {
	notice := "Something went wrong, please retry."
	switch {
	case apperrors.IsUnauthorized(err):
		notice = "You are not authorized."
	case apperrors.IsSessionExpired(err):
		notice = "Session expired. Restart the command."
	}
	b.respondEphemeral(i, notice, nil)
}

func (b *Bot) respondEphemeral(i *discordgo.InteractionCreate, content string, controls []gateway.Control) {
	data := &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}
	if len(controls) > 0 {
		data.Components = componentRows(controls)
	}
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.logger.Warn("interaction response failed", zap.Error(err))
	}
}

// actorID returns the id of the interacting user, whether the interaction
// arrived from a guild or a direct message.
func actorID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
