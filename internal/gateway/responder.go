package gateway

import (
	"context"
	"errors"

	"github.com/fpt/klein-relay/pkg/domain"
	pkgLogger "github.com/fpt/klein-relay/pkg/logger"
	"github.com/fpt/klein-relay/pkg/message"
)

// Per-path reply caps. Chat replies use the backend default.
const (
	inactivityMaxTokens = 100
	imageMaxTokens      = 300
)

// Responder turns conversation state into completion requests and maps the
// outcome of each request path to the text that is sent.
type Responder struct {
	llm     domain.LLM
	prompts Prompts
	replies Replies
	logger  *pkgLogger.Logger
}

// NewResponder creates a responder over llm.
func NewResponder(llm domain.LLM, prompts Prompts, replies Replies, logger *pkgLogger.Logger) *Responder {
	return &Responder{
		llm:     llm,
		prompts: prompts,
		replies: replies,
		logger:  logger.WithComponent("responder"),
	}
}

// Reply answers the conversation. An empty completion yields the EmptyReply
// fallback; any other failure is returned so the caller can apologise.
func (r *Responder) Reply(ctx context.Context, personality string, history []message.Turn) (string, error) {
	text, err := r.complete(ctx, withSystem(personality, history), 0)
	if errors.Is(err, domain.ErrNoContent) {
		return r.replies.EmptyReply, nil
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// Inactivity produces the message posted after a quiet period. keep reports
// whether the text belongs in history; the error fallback does not.
func (r *Responder) Inactivity(ctx context.Context, personality string, history []message.Turn) (text string, keep bool) {
	msgs := append(withSystem(personality, history), message.NewUserTurn(r.prompts.Inactivity))
	text, err := r.complete(ctx, msgs, inactivityMaxTokens)
	switch {
	case errors.Is(err, domain.ErrNoContent):
		return r.replies.EmptyInactivity, true
	case err != nil:
		r.logger.Error("Inactivity completion failed", "error", err)
		return r.replies.InactivityError, false
	default:
		return text, true
	}
}

// DescribeImage asks the model about the image at url. The request carries
// no personality and no history.
func (r *Responder) DescribeImage(ctx context.Context, url string) string {
	r.logger.DebugWithIntention(pkgLogger.IntentionCompletion, "Describing image", "url", url, "mode", r.imageMode())
	text, err := r.complete(ctx, []message.Turn{message.NewImageTurn(r.prompts.Image, url)}, imageMaxTokens)
	switch {
	case errors.Is(err, domain.ErrNoContent):
		return r.replies.EmptyImage
	case err != nil:
		r.logger.Error("Image completion failed", "url", url, "error", err)
		return r.replies.ImageError
	default:
		return text
	}
}

// imageMode names how the backend receives image URLs.
func (r *Responder) imageMode() string {
	if v, ok := r.llm.(domain.VisionLLM); ok && v.SupportsImageURLs() {
		return "image_url"
	}
	return "text"
}

// withSystem returns [system] + history in a new slice. The system turn is
// kept even when the personality is empty.
func withSystem(personality string, history []message.Turn) []message.Turn {
	msgs := make([]message.Turn, 0, len(history)+2)
	msgs = append(msgs, message.NewSystemTurn(personality))
	return append(msgs, history...)
}

// complete sends msgs with an optional token cap.
func (r *Responder) complete(ctx context.Context, msgs []message.Turn, maxTokens int) (string, error) {
	r.logger.DebugWithIntention(pkgLogger.IntentionCompletion, "Requesting completion",
		"model", r.llm.ModelID(), "messages", len(msgs), "max_tokens", maxTokens)

	return r.llm.Complete(ctx, domain.CompletionRequest{
		Messages:  msgs,
		MaxTokens: maxTokens,
	})
}
