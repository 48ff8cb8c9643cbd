package chat

import (
	"context"
	"sync"

	"github.com/tandemchat/backend/internal/cache"
	"github.com/tandemchat/backend/internal/db"
	"github.com/tandemchat/backend/internal/errors"
	"github.com/tandemchat/backend/internal/logging"
	"github.com/tandemchat/backend/internal/models"
)

// Pipeline runs a chat message through persist, stats, broadcast, and cache
// invalidation, and schedules the asynchronous deck review. Persistence
// failure aborts the message; every later stage is best effort.
type Pipeline struct {
	store    db.Store
	registry *Manager
	cache    cache.Store
	reviewer *Reviewer

	tasks sync.WaitGroup
}

// NewPipeline wires the pipeline's collaborators. reviewer may be nil when
// deck review is disabled.
func NewPipeline(store db.Store, registry *Manager, cacheStore cache.Store, reviewer *Reviewer) *Pipeline {
	return &Pipeline{
		store:    store,
		registry: registry,
		cache:    cacheStore,
		reviewer: reviewer,
	}
}

// Wait blocks until all scheduled review tasks finish. Used by shutdown and
// by tests to observe asynchronous effects.
func (p *Pipeline) Wait() {
	p.tasks.Wait()
}

// HandleChatMessage processes one inbound chat envelope from sender. An
// unknown conversation or an unauthorized sender drops the message silently.
// Only a persistence failure is reported to the caller.
func (p *Pipeline) HandleChatMessage(ctx context.Context, sender string, env Envelope) error {
	conv, err := p.store.GetConversation(env.ConversationID)
	if err != nil {
		logging.Error("failed to fetch conversation", err, map[string]interface{}{
			"conversation_id": env.ConversationID,
		})
		return err
	}
	if conv == nil || !conv.HasParticipant(sender) {
		logging.Warn("dropping message for unknown or unauthorized conversation", map[string]interface{}{
			"conversation_id": env.ConversationID,
			"sender":          sender,
		})
		return nil
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		Sender:         sender,
		Content:        env.Content,
	}
	if err := p.store.InsertMessage(msg); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to persist message", err)
	}

	if env.DeckName != "" && p.reviewer != nil {
		p.scheduleReview(sender, conv.Participants, env.DeckName, msg)
	}

	p.updateStats(conv, msg)
	p.registry.BroadcastToParticipants(conv.Participants, newChatBroadcast(msg), sender)
	p.invalidateViews(ctx, conv)

	return nil
}

// scheduleReview runs the deck review off the message path. The task is not
// cancelled on disconnect; session updates and broadcasts to the other
// participants must still happen.
func (p *Pipeline) scheduleReview(sender string, participants []string, deckName string, msg *models.Message) {
	p.tasks.Add(1)
	go func() {
		defer p.tasks.Done()
		review, err := p.reviewer.Review(context.Background(), sender, deckName, msg)
		if err != nil {
			logging.Error("deck review failed", err, map[string]interface{}{
				"message_id": msg.ID,
				"deck_name":  deckName,
			})
			return
		}
		if review == nil {
			return
		}
		p.registry.BroadcastToParticipants(participants, newLearningUpdate(sender, review), "")
	}()
}

func (p *Pipeline) updateStats(conv *models.Conversation, msg *models.Message) {
	for _, participant := range conv.Participants {
		if participant == msg.Sender {
			continue
		}
		if err := p.store.IncrementUnread(conv.ID, participant, msg.Timestamp); err != nil {
			logging.Error("failed to increment unread counter", err, map[string]interface{}{
				"conversation_id": conv.ID,
				"user":            participant,
			})
		}
	}

	if err := p.store.UpdateConversationActivity(conv.ID, models.Preview(msg.Content), msg.Timestamp); err != nil {
		logging.Error("failed to update conversation activity", err, map[string]interface{}{
			"conversation_id": conv.ID,
		})
	}
}

func (p *Pipeline) invalidateViews(ctx context.Context, conv *models.Conversation) {
	if err := p.cache.Delete(ctx, cache.ChatHistoryKey(conv.ID)); err != nil {
		logging.Error("failed to invalidate history cache", err, map[string]interface{}{
			"conversation_id": conv.ID,
		})
	}
	for _, participant := range conv.Participants {
		if err := p.cache.Delete(ctx, cache.UserConversationsKey(participant)); err != nil {
			logging.Error("failed to invalidate conversation list cache", err, map[string]interface{}{
				"user": participant,
			})
		}
	}
}
