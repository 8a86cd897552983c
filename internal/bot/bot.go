// Package bot is the conversation orchestrator: it loads the chat's
// session, classifies the message, talks to the completion provider, and
// persists the outcome.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mkrylov/tgrelay/internal/ai"
	"github.com/mkrylov/tgrelay/internal/session"
	"github.com/mkrylov/tgrelay/internal/telegram"
)

// Transport is the chat collaborator: outbound text plus the typing
// indicator. Inbound delivery comes through HandleUpdate.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendTyping(ctx context.Context, chatID int64) error
}

// EventPublisher receives fire-and-forget relay events. Publish failures
// are logged, never surfaced to the user.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event any) error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(ctx context.Context, event any) error { return nil }

type Event struct {
	Type   string    `json:"type"`
	ChatID int64     `json:"chat_id"`
	Model  string    `json:"model,omitempty"`
	At     time.Time `json:"at"`
}

const (
	EventRegistered    = "registration_succeeded"
	EventTurnCompleted = "turn_completed"
)

type Bot struct {
	store     *session.Store
	registry  *ai.Registry
	transport Transport
	events    EventPublisher

	providerName string
	models       map[session.ModelVersion]string

	// TypingInterval is how often the typing indicator is re-sent while a
	// completion call is pending. Tests shrink it.
	TypingInterval time.Duration
}

func New(store *session.Store, registry *ai.Registry, transport Transport, events EventPublisher, providerName, modelFast, modelCapable string) *Bot {
	if events == nil {
		events = NopPublisher{}
	}
	return &Bot{
		store:     store,
		registry:  registry,
		transport: transport,
		events:    events,

		providerName: providerName,
		models: map[session.ModelVersion]string{
			session.ModelFast:    modelFast,
			session.ModelCapable: modelCapable,
		},

		TypingInterval: 10 * time.Second,
	}
}

// HandleUpdate processes one inbound update. The returned error is for
// logging only: every failure is contained to this update and the user
// has already been told what they can do about it.
func (b *Bot) HandleUpdate(ctx context.Context, upd telegram.Update) error {
	if upd.MyChatMember != nil {
		switch upd.MyChatMember.NewChatMember.Status {
		case "kicked", "left":
			return b.store.Delete(ctx, upd.MyChatMember.Chat.ID)
		}
		return nil
	}

	if upd.Message == nil {
		return nil
	}
	chatID := upd.Message.Chat.ID

	if upd.Message.Text == "" {
		return b.transport.SendMessage(ctx, chatID, "I can only read text messages.")
	}
	text := upd.Message.Text

	sess, err := b.store.Get(ctx, chatID)
	if errors.Is(err, session.ErrHistoryCorrupted) {
		return b.recoverCorrupted(ctx, chatID, text, err)
	}
	if err != nil {
		return err
	}

	switch sess.Phase {
	case session.PhaseAwaitingKey, session.PhasePendingKey:
		// PendingKey is never observed at rest; both mean "this text is a
		// candidate key".
		return b.register(ctx, chatID, text)
	case session.PhaseActive:
		if cmd := Classify(text); cmd != CmdNone {
			return b.handleCommand(ctx, chatID, sess, cmd)
		}
		return b.converse(ctx, chatID, sess, text)
	default:
		return fmt.Errorf("bot: unknown session phase %d", sess.Phase)
	}
}

func (b *Bot) register(ctx context.Context, chatID int64, candidate string) error {
	err := b.store.Put(ctx, chatID, session.Session{
		Phase:     session.PhasePendingKey,
		Candidate: candidate,
	})
	if errors.Is(err, session.ErrCredentialRejected) {
		// User-recoverable, not a fault: log and let them retry.
		log.Printf("chat %d: api key rejected", chatID)
		return b.transport.SendMessage(ctx, chatID, "API Key not working, please try again!")
	}
	if err != nil {
		return err
	}

	b.publish(ctx, Event{Type: EventRegistered, ChatID: chatID, At: time.Now()})
	return b.transport.SendMessage(ctx, chatID, "Success! You can start conversation!")
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, sess session.Session, cmd Command) error {
	var ack string
	switch cmd {
	case CmdReset:
		sess.History = session.History{}
		ack = "✖️ History reset"
	case CmdTail:
		sess.History = sess.History.DropOldest()
		ack = "✖️ Dropped oldest turn"
	case CmdFast:
		sess.Version = session.ModelFast
		ack = "🕹 Fast model selected"
	case CmdCapable:
		sess.Version = session.ModelCapable
		ack = "🕹 Capable model selected"
	default:
		return fmt.Errorf("bot: unknown command %d", cmd)
	}

	if err := b.store.Put(ctx, chatID, sess); err != nil {
		return err
	}
	return b.transport.SendMessage(ctx, chatID, ack)
}

func (b *Bot) converse(ctx context.Context, chatID int64, sess session.Session, text string) error {
	if sess.Phase != session.PhaseActive {
		// Dispatch routing never lets this happen; fail loudly if it does.
		return errors.New("bot: conversation outside active phase")
	}

	typingCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go b.typingLoop(typingCtx, chatID)

	msgs := make([]ai.Message, 0, len(sess.History)+1)
	for _, t := range sess.History {
		msgs = append(msgs, ai.Message{Role: string(t.Role), Content: t.Content})
	}
	msgs = append(msgs, ai.Message{Role: string(session.RoleUser), Content: text})

	reply, err := b.complete(ctx, sess.Version, msgs)
	cancel()
	if err != nil {
		// History stays untouched; the user can trim it and retry.
		_ = b.transport.SendMessage(ctx, chatID,
			fmt.Sprintf("Error while request: %v. You can try /reset or /tail.", err))
		return err
	}

	sess.History = sess.History.Append(text, reply)
	if err := b.store.Put(ctx, chatID, sess); err != nil {
		return err
	}
	if err := b.transport.SendMessage(ctx, chatID, reply); err != nil {
		return err
	}

	b.publish(ctx, Event{
		Type:   EventTurnCompleted,
		ChatID: chatID,
		Model:  b.models[sess.Version],
		At:     time.Now(),
	})
	return nil
}

func (b *Bot) complete(ctx context.Context, version session.ModelVersion, msgs []ai.Message) (string, error) {
	model := b.models[version]
	if model == "" {
		model = b.models[session.DefaultModelVersion]
	}
	provider, err := b.registry.Get(ctx, b.providerName, model)
	if err != nil {
		return "", err
	}
	return provider.Chat(ctx, msgs)
}

// typingLoop re-sends the typing indicator until cancelled. It shares
// nothing with the handling task except the cancellation context.
func (b *Bot) typingLoop(ctx context.Context, chatID int64) {
	for {
		if ctx.Err() != nil {
			return
		}
		_ = b.transport.SendTyping(ctx, chatID)
		select {
		case <-time.After(b.TypingInterval):
		case <-ctx.Done():
			return
		}
	}
}

// recoverCorrupted handles a chat whose stored history no longer parses.
// Only an explicit /reset repairs it; anything else reports the state.
func (b *Bot) recoverCorrupted(ctx context.Context, chatID int64, text string, loadErr error) error {
	if Classify(text) == CmdReset {
		err := b.store.Put(ctx, chatID, session.Session{
			Phase:   session.PhaseActive,
			History: session.History{},
			Version: session.DefaultModelVersion,
		})
		if err != nil {
			return err
		}
		return b.transport.SendMessage(ctx, chatID, "✖️ History reset")
	}
	_ = b.transport.SendMessage(ctx, chatID,
		"Your stored history is corrupted. Send /reset to start over.")
	return loadErr
}

func (b *Bot) publish(ctx context.Context, ev Event) {
	if err := b.events.PublishEvent(ctx, ev); err != nil {
		log.Printf("publish %s: %v", ev.Type, err)
	}
}
