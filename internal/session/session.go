// Package session owns the conversation: the ordered message log,
// session identity, and the sequencing of one chat turn around the
// backend call and the optional device action.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/tharos-ai/superintendent-go/internal/action"
	"github.com/tharos-ai/superintendent-go/internal/backend"
	"github.com/tharos-ai/superintendent-go/internal/config"
	"github.com/tharos-ai/superintendent-go/internal/intent"
	"github.com/tharos-ai/superintendent-go/internal/logger"
	"github.com/tharos-ai/superintendent-go/internal/store"
)

// FSM States
type FSMState stateless.State

var (
	StateIdle             FSMState = "Idle"
	StateAwaitingResponse FSMState = "AwaitingResponse"
	StateError            FSMState = "Error"
)

// FSM Triggers
type FSMTrigger stateless.Trigger

var (
	TriggerSubmit    FSMTrigger = "Submit"
	TriggerSucceeded FSMTrigger = "Succeeded"
	TriggerFailed    FSMTrigger = "Failed"
	TriggerReset     FSMTrigger = "Reset"
)

// Backend defines the API calls the session expects from the backend
// client; it is easy to mock in tests.
type Backend interface {
	Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)
	GetConversation(ctx context.Context, id string) (*backend.Conversation, error)
	TogglePersonality(ctx context.Context, personality string) error
}

// Executor runs device actions. Outcomes are values, never errors.
type Executor interface {
	Execute(ctx context.Context, req action.Request) action.Outcome
}

// Session is the conversation state machine. It exclusively owns the
// message log and session identity; callers are expected not to submit
// while a turn is in flight (Submit rejects it, there is no queue).
type Session struct {
	backend  Backend
	executor Executor
	kv       *store.Store
	strategy string

	personality    string
	conversationID string
	messages       []backend.Message
	lastErr        string

	fsm *stateless.StateMachine
}

// New creates a session. Call Restore to pick up persisted identity and
// replay a prior conversation.
func New(b Backend, ex Executor, kv *store.Store, cfg *config.Config) *Session {
	personality := cfg.Personality
	if personality != backend.PersonalityTharos && personality != backend.PersonalitySuperintendent {
		personality = backend.PersonalitySuperintendent
	}

	s := &Session{
		backend:     b,
		executor:    ex,
		kv:          kv,
		strategy:    cfg.Classifier.Strategy,
		personality: personality,
	}

	fsm := stateless.NewStateMachine(StateIdle)
	fsm.Configure(StateIdle).
		Permit(TriggerSubmit, StateAwaitingResponse).
		PermitReentry(TriggerReset)
	fsm.Configure(StateAwaitingResponse).
		Permit(TriggerSucceeded, StateIdle).
		Permit(TriggerFailed, StateError).
		Permit(TriggerReset, StateIdle)
	fsm.Configure(StateError).
		Permit(TriggerSubmit, StateAwaitingResponse).
		Permit(TriggerReset, StateIdle)
	s.fsm = fsm

	return s
}

// Restore loads persisted personality and conversation id, replaying the
// conversation's history from the backend. A fetch failure discards the
// stale id so the session starts empty.
func (s *Session) Restore(ctx context.Context) {
	if p, ok := s.kv.Get(store.KeyPersonality); ok {
		if p == backend.PersonalityTharos || p == backend.PersonalitySuperintendent {
			s.personality = p
		}
	}

	id, ok := s.kv.Get(store.KeyConversationID)
	if !ok || id == "" {
		return
	}
	conv, err := s.backend.GetConversation(ctx, id)
	if err != nil {
		logger.L.Warn("discarding stale conversation id", "conversation_id", id, "error", err)
		s.kv.Delete(store.KeyConversationID)
		return
	}
	s.conversationID = id
	s.messages = append([]backend.Message(nil), conv.Messages...)
	if conv.Personality != "" && conv.Personality != s.personality {
		s.personality = conv.Personality
		s.kv.Set(store.KeyPersonality, s.personality)
	}
	logger.L.Info("conversation restored", "conversation_id", id, "messages", len(s.messages))
}

// Submit runs one chat turn: append the user message, call the backend,
// append the assistant message, persist the conversation id, then run
// the turn's device action if there is one. It returns the assistant
// messages appended this turn.
//
// A backend failure aborts the turn: no assistant message is appended
// and the error is kept as session state. A device-action failure never
// aborts the turn; it appends exactly one synthetic assistant message.
func (s *Session) Submit(ctx context.Context, text string) ([]backend.Message, error) {
	if err := s.fsm.Fire(TriggerSubmit); err != nil {
		return nil, fmt.Errorf("cannot submit now: %w", err)
	}
	s.lastErr = ""

	// The user message is visible before any network latency.
	s.append(backend.Message{Role: backend.RoleUser, Content: text, Timestamp: time.Now().UTC()})

	resp, err := s.backend.Chat(ctx, backend.ChatRequest{
		Message:        text,
		ConversationID: s.conversationID,
		Personality:    s.personality,
	})
	if err != nil {
		s.lastErr = err.Error()
		s.mustFire(TriggerFailed)
		return nil, err
	}
	s.mustFire(TriggerSucceeded)

	assistant := backend.Message{
		Role:      backend.RoleAssistant,
		Content:   resp.Response,
		Timestamp: time.Now().UTC(),
		ModelUsed: resp.ModelUsed,
	}
	s.append(assistant)
	appended := []backend.Message{assistant}

	if resp.ConversationID != "" && resp.ConversationID != s.conversationID {
		s.conversationID = resp.ConversationID
		s.kv.Set(store.KeyConversationID, s.conversationID)
	}

	// The assistant message is in the log before the action runs; action
	// side effects never reorder relative to this turn's messages.
	req := s.actionFor(resp, text)
	if req.Kind != action.KindNone {
		outcome := s.executor.Execute(ctx, req)
		if !outcome.Succeeded {
			content := outcome.Message
			if outcome.ErrorDetail != "" {
				content = fmt.Sprintf("%s (%s)", outcome.Message, outcome.ErrorDetail)
			}
			synthetic := backend.Message{
				Role:      backend.RoleAssistant,
				Content:   content,
				Timestamp: time.Now().UTC(),
			}
			s.append(synthetic)
			appended = append(appended, synthetic)
		}
	}

	return appended, nil
}

// actionFor picks the turn's device action. A server-issued action of a
// real kind always wins; local classification runs only under the local
// strategy when the backend returned no action (or the none sentinel).
func (s *Session) actionFor(resp *backend.ChatResponse, userText string) action.Request {
	if resp.DeviceAction != nil {
		if req := resp.DeviceAction.ToRequest(); req.Kind != action.KindNone {
			return req
		}
	}
	if s.strategy == config.StrategyLocal {
		return intent.Classify(userText, resp.Response)
	}
	return action.None()
}

// Reset clears the message log, conversation id and error, removes the
// persisted conversation id, and returns to Idle. Valid from any state.
func (s *Session) Reset() {
	if err := s.fsm.Fire(TriggerReset); err != nil {
		logger.L.Warn("reset fire error", "error", err)
	}
	s.messages = nil
	s.conversationID = ""
	s.lastErr = ""
	s.kv.Delete(store.KeyConversationID)
}

// TogglePersonality flips the persona, persists it, and notifies the
// backend best-effort: a sync failure is logged and does not affect
// local state. Returns the new persona.
func (s *Session) TogglePersonality(ctx context.Context) string {
	if s.personality == backend.PersonalityTharos {
		s.personality = backend.PersonalitySuperintendent
	} else {
		s.personality = backend.PersonalityTharos
	}
	s.kv.Set(store.KeyPersonality, s.personality)

	if err := s.backend.TogglePersonality(ctx, s.personality); err != nil {
		logger.L.Warn("personality sync failed", "personality", s.personality, "error", err)
	}
	return s.personality
}

// Messages returns a copy of the message log in chronological order.
func (s *Session) Messages() []backend.Message {
	return append([]backend.Message(nil), s.messages...)
}

// Personality returns the current persona.
func (s *Session) Personality() string { return s.personality }

// ConversationID returns the backend-issued conversation id, if any.
func (s *Session) ConversationID() string { return s.conversationID }

// Err returns the last backend error as session-level state. It is
// cleared by the next Submit and by Reset.
func (s *Session) Err() string { return s.lastErr }

// State returns the current FSM state.
func (s *Session) State() FSMState {
	return s.fsm.MustState().(FSMState)
}

func (s *Session) append(msg backend.Message) {
	s.messages = append(s.messages, msg)
}

// mustFire is for transitions that are always permitted from the state
// the caller just checked; a failure here is a programming error.
func (s *Session) mustFire(trigger FSMTrigger) {
	if err := s.fsm.Fire(trigger); err != nil {
		logger.L.Error("unexpected FSM fire error", "trigger", trigger, "error", err)
	}
}
