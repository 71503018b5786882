package service

import (
	"context"
	"fmt"
	"time"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/actuallystonmai/product-recommendation-service/internal/generation"
	"github.com/actuallystonmai/product-recommendation-service/internal/prompt"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Chat answers one message of a shopping conversation. Identity, catalog and stored
// transcript are all best effort here; only authentication and live generation
// failures end the request.
func (s *Service) Chat(ctx context.Context, token, message, conversationID string) (domain.ChatResult, error) {
	r := s.newRun(PipelineChat)

	caller, err := s.authenticate(token)
	if err != nil {
		return domain.ChatResult{}, r.fail(ctx, StateAuthFailed, err)
	}
	r.advance(StateAuthenticated)

	if conversationID == "" {
		conversationID = "conv-" + caller.Subject
	}

	var (
		identity *domain.Identity
		products []domain.Product
		history  []domain.ChatTurn
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		identity = s.fetchIdentity(gctx, token)
		return nil
	})
	g.Go(func() error {
		p, err := s.fetchCatalog(gctx, "")
		if err != nil {
			if gctx.Err() == nil {
				s.logger.Debug("chatting without catalog", zap.Error(err))
			}
			return nil
		}
		products = p
		return nil
	})
	if s.transcripts != nil {
		g.Go(func() error {
			history = s.loadTranscript(gctx, caller.Subject, conversationID)
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		return domain.ChatResult{}, r.fail(ctx, StateCancelled, ctx.Err())
	}
	r.advance(StateContextAssembled)

	text, err := s.prompts.Build(prompt.Chat, prompt.Input{
		Products: products,
		Identity: identity,
		Message:  message,
		History:  history,
	})
	if err != nil {
		return domain.ChatResult{}, r.fail(ctx, StateFailed, fmt.Errorf("build prompt: %w", err))
	}
	r.advance(StatePromptBuilt)

	asked := time.Now().UTC()
	raw, err := s.generate(ctx, generation.Request{
		Kind:     prompt.Chat,
		Prompt:   text,
		Products: products,
		Message:  message,
	})
	if err != nil {
		return domain.ChatResult{}, r.fail(ctx, StateGenerationFailed, err)
	}
	r.advance(StateGenerated)
	r.succeed()

	s.saveTranscript(ctx, caller.Subject, conversationID,
		domain.ChatTurn{Role: domain.RoleUser, Text: message, SentAt: asked},
		domain.ChatTurn{Role: domain.RoleAssistant, Text: raw.Text, SentAt: time.Now().UTC()},
	)

	return domain.ChatResult{Response: raw.Text, ConversationID: conversationID}, nil
}

func (s *Service) loadTranscript(ctx context.Context, subject, conversationID string) []domain.ChatTurn {
	turns, err := s.transcripts.Load(ctx, subject, conversationID)
	if err != nil {
		if ctx.Err() == nil {
			s.metrics.CollaboratorFailure("transcripts")
			s.logger.Warn("transcript load failed", zap.String("conversation_id", conversationID), zap.Error(err))
		}
		return nil
	}
	return turns
}

func (s *Service) saveTranscript(ctx context.Context, subject, conversationID string, turns ...domain.ChatTurn) {
	if s.transcripts == nil {
		return
	}
	if err := s.transcripts.Append(ctx, subject, conversationID, turns...); err != nil {
		s.metrics.CollaboratorFailure("transcripts")
		s.logger.Warn("transcript save failed", zap.String("conversation_id", conversationID), zap.Error(err))
	}
}
