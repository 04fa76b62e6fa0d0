// Package chat assembles context-augmented prompts from session state and
// relays them to the configured LLM provider.
package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"datasoph/internal/models"
	"datasoph/internal/session"
)

const (
	// DefaultTimeout bounds each LLM call.
	DefaultTimeout = 20 * time.Second

	// DefaultRecentWindow is how many prior turns travel with each prompt.
	DefaultRecentWindow = 3

	// minReplyLength guards against empty or truncated model output; anything
	// shorter degrades to the localized fallback.
	minReplyLength = 10
)

// Service merges chat messages with stored file context into outbound
// prompts. A nil model means the provider is not configured; every request
// then gets the localized not-configured message instead of an error.
type Service struct {
	model        ChatModel
	store        session.Store
	timeout      time.Duration
	recentWindow int
}

func NewService(model ChatModel, store session.Store, timeout time.Duration, recentWindow int) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if recentWindow <= 0 {
		recentWindow = DefaultRecentWindow
	}
	return &Service{
		model:        model,
		store:        store,
		timeout:      timeout,
		recentWindow: recentWindow,
	}
}

// Chat runs one turn: resolve file context, build the prompt, call the model,
// and append both sides to the session history. It never returns an error to
// the caller; failures degrade to a localized fallback string.
func (s *Service) Chat(ctx context.Context, userID, fileID, message string) string {
	userID = session.NormalizeUserID(userID)
	lang := detectLanguage(message)

	// Prior turns are captured before the current message is appended so the
	// window holds conversation history, not the request itself.
	recent := s.store.RecentTurns(userID, s.recentWindow)
	s.store.AppendTurn(userID, models.RoleUser, message)

	fc := s.resolveContext(userID, fileID)
	prompt := buildPrompt(message, fc, recent)

	reply := s.generate(ctx, lang, prompt)
	s.store.AppendTurn(userID, models.RoleAssistant, reply)
	return reply
}

// resolveContext returns the user's latest file context. An explicit file id
// must name the currently active upload; a stale id yields no context rather
// than silently substituting a different file.
func (s *Service) resolveContext(userID, fileID string) *session.FileContext {
	latest := s.store.Latest(userID)
	if latest == nil {
		return nil
	}
	if fileID != "" && latest.File.ID != fileID {
		return nil
	}
	return latest
}

func (s *Service) generate(ctx context.Context, lang language, prompt string) string {
	fb := fallbacks[lang]
	if s.model == nil {
		return fb.notConfigured
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.model.Generate(callCtx, []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: prompt},
	})
	if err != nil {
		log.Printf("llm generate failed: %v", err)
		return fb.unavailable
	}
	reply := strings.TrimSpace(resp.Content)
	if len(reply) < minReplyLength {
		return fb.short
	}
	return reply
}
