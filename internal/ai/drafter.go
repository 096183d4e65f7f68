package ai

import (
	"context"
	"fmt"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DraftRequest carries the context an assistant needs to write a message.
type DraftRequest struct {
	Kind        domain.MessageKind
	Channel     domain.MessageChannel
	ParentName  string
	ProgramName string
	PlayerName  string
	AmountDue   decimal.Decimal
	Instruction string
}

// Draft is a generated message. Subject is empty for SMS.
type Draft struct {
	Subject   string
	Body      string
	AIDrafted bool
}

// Drafter produces message drafts for admin review before sending.
type Drafter interface {
	Draft(ctx context.Context, req DraftRequest) (*Draft, error)
}

// OpenAIDrafter drafts messages with a chat model. Failures fall back to
// the canned templates so messaging never depends on the AI being up.
type OpenAIDrafter struct {
	client *openai.Client
	model  string
}

// NewOpenAIDrafter creates a drafter backed by the OpenAI API
func NewOpenAIDrafter(apiKey, model string) *OpenAIDrafter {
	return &OpenAIDrafter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

const systemPrompt = `You write short, warm messages from a youth basketball program's admin to a parent. Keep it under 120 words, plain language, no markdown. Output only the message body.`

// Draft generates a message body with the chat model
func (d *OpenAIDrafter) Draft(ctx context.Context, req DraftRequest) (*Draft, error) {
	userPrompt := buildPrompt(req)

	completion, err := d.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		}),
		Model: openai.F(d.model),
	})
	if err != nil {
		log.Warn().Err(err).Str("kind", string(req.Kind)).Msg("AI draft failed, using template")
		return TemplateDraft(req), nil
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		log.Warn().Str("kind", string(req.Kind)).Msg("AI returned empty draft, using template")
		return TemplateDraft(req), nil
	}

	return &Draft{
		Subject:   templateSubject(req),
		Body:      completion.Choices[0].Message.Content,
		AIDrafted: true,
	}, nil
}

func buildPrompt(req DraftRequest) string {
	prompt := fmt.Sprintf("Program: %s\nParent: %s\nMessage type: %s\nChannel: %s\n",
		req.ProgramName, req.ParentName, req.Kind, req.Channel)
	if req.PlayerName != "" {
		prompt += fmt.Sprintf("Player: %s\n", req.PlayerName)
	}
	if req.Kind == domain.KindPaymentReminder && !req.AmountDue.IsZero() {
		prompt += fmt.Sprintf("Amount due: $%s\n", req.AmountDue.StringFixed(2))
	}
	if req.Instruction != "" {
		prompt += "Admin notes: " + req.Instruction + "\n"
	}
	return prompt
}

// TemplateDrafter always uses the canned templates. Used when no API key
// is configured.
type TemplateDrafter struct{}

func (TemplateDrafter) Draft(_ context.Context, req DraftRequest) (*Draft, error) {
	return TemplateDraft(req), nil
}

// TemplateDraft renders the canned fallback for a message kind.
func TemplateDraft(req DraftRequest) *Draft {
	var body string
	switch req.Kind {
	case domain.KindPaymentReminder:
		body = fmt.Sprintf("Hi %s, this is a friendly reminder that a payment of $%s is due for %s. You can pay through your usual payment method. Thank you!",
			req.ParentName, req.AmountDue.StringFixed(2), req.ProgramName)
	case domain.KindWelcome:
		body = fmt.Sprintf("Hi %s, welcome to %s! We're excited to have your family with us this season. We'll follow up soon with schedule and payment details.",
			req.ParentName, req.ProgramName)
	default:
		body = fmt.Sprintf("Hi %s, this is a message from %s.", req.ParentName, req.ProgramName)
		if req.Instruction != "" {
			body += " " + req.Instruction
		}
	}
	return &Draft{Subject: templateSubject(req), Body: body, AIDrafted: false}
}

func templateSubject(req DraftRequest) string {
	if req.Channel == domain.ChannelSMS {
		return ""
	}
	switch req.Kind {
	case domain.KindPaymentReminder:
		return fmt.Sprintf("Payment reminder from %s", req.ProgramName)
	case domain.KindWelcome:
		return fmt.Sprintf("Welcome to %s!", req.ProgramName)
	default:
		return fmt.Sprintf("A message from %s", req.ProgramName)
	}
}
