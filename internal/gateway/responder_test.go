package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/fpt/klein-relay/pkg/domain"
	"github.com/fpt/klein-relay/pkg/message"
)

func TestResponderReply(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		err     error
		want    string
		wantErr bool
	}{
		{"text", "hello", nil, "hello", false},
		{"no content", "", domain.ErrNoContent, DefaultReplies().EmptyReply, false},
		{"failure", "", errors.New("429"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := replyWith(tt.text, tt.err)
			r := NewResponder(llm, DefaultPrompts(), DefaultReplies(), pkgLoggerDiscard())

			got, err := r.Reply(context.Background(), "sys", []message.Turn{message.NewUserTurn("a said: hi")})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponderKeepsEmptySystemPrompt(t *testing.T) {
	tests := []struct {
		name string
		call func(r *Responder)
	}{
		{"chat", func(r *Responder) { _, _ = r.Reply(context.Background(), "", []message.Turn{message.NewUserTurn("x")}) }},
		{"inactivity", func(r *Responder) { r.Inactivity(context.Background(), "", []message.Turn{message.NewUserTurn("x")}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := replyWith("ok", nil)
			tt.call(NewResponder(llm, DefaultPrompts(), DefaultReplies(), pkgLoggerDiscard()))

			msgs := llm.last().Messages
			if len(msgs) < 2 || msgs[0] != message.NewSystemTurn("") {
				t.Errorf("expected a leading empty system turn, got %v", msgs)
			}
		})
	}
}

func TestResponderDoesNotMutateHistory(t *testing.T) {
	llm := replyWith("ok", nil)
	r := NewResponder(llm, DefaultPrompts(), DefaultReplies(), pkgLoggerDiscard())

	hist := make([]message.Turn, 1, 4)
	hist[0] = message.NewUserTurn("x")
	r.Inactivity(context.Background(), "sys", hist)

	if len(hist) != 1 || hist[:2][1] != (message.Turn{}) {
		t.Error("history backing array was written to")
	}
}

type visionLLM struct {
	*fakeLLM
	vision bool
}

func (v visionLLM) SupportsImageURLs() bool { return v.vision }

func TestResponderImageMode(t *testing.T) {
	tests := []struct {
		name string
		llm  domain.LLM
		want string
	}{
		{"plain backend", replyWith("x", nil), "text"},
		{"vision backend", visionLLM{fakeLLM: replyWith("x", nil), vision: true}, "image_url"},
		{"vision backend, text-only model", visionLLM{fakeLLM: replyWith("x", nil)}, "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResponder(tt.llm, DefaultPrompts(), DefaultReplies(), pkgLoggerDiscard())
			if got := r.imageMode(); got != tt.want {
				t.Errorf("imageMode() = %q, want %q", got, tt.want)
			}
		})
	}
}
