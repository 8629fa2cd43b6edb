package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mindmate/backend/ai"
	"mindmate/backend/internal/models"
	"mindmate/backend/internal/repository"
	"mindmate/backend/pkg/logger"
	"mindmate/backend/shared/observability"
	"mindmate/backend/shared/redis"

	"gorm.io/gorm"
)

// TurnRequest carries one user turn. SessionID zero means "start a new
// session", which requires UserID and CharacterID.
type TurnRequest struct {
	SessionID   uint
	UserInput   string
	IsWorkflow  bool
	CharacterID uint
	UserID      uint
	Topic       string
}

// TurnResult is the outcome of a completed turn
type TurnResult struct {
	Response   string
	SessionID  uint
	IsWorkflow bool
}

// ChatService orchestrates chat turns: it resolves the session, replays the
// stored transcript to the completion API, persists the exchange and
// maintains the session summary and workflow state.
type ChatService struct {
	sessions      repository.SessionRepository
	messages      repository.MessageRepository
	characters    repository.CharacterRepository
	users         repository.UserRepository
	completer     ai.Completer
	sessionsCache *redis.Client
	cacheTTL      time.Duration
	log           *logger.Logger
}

// NewChatService creates a new chat service. The Redis client may be nil to
// disable session-list caching.
func NewChatService(
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	characters repository.CharacterRepository,
	users repository.UserRepository,
	completer ai.Completer,
	sessionsCache *redis.Client,
	cacheTTL time.Duration,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		sessions:      sessions,
		messages:      messages,
		characters:    characters,
		users:         users,
		completer:     completer,
		sessionsCache: sessionsCache,
		cacheTTL:      cacheTTL,
		log:           log,
	}
}

// PostTurn runs one full turn. The completion call happens before anything
// is written to the message log, so a failed call leaves the transcript
// untouched.
func (s *ChatService) PostTurn(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	now := time.Now()
	userInput := req.UserInput

	var session *models.ChatSession
	var history []ai.Turn
	created := false

	if req.SessionID == 0 {
		created = true
		if req.CharacterID == 0 || req.UserID == 0 {
			return nil, ErrSessionFieldsRequired
		}

		topic := req.Topic
		if topic == "" {
			topic = models.TopicNone
		} else if !models.IsValidTopic(topic) {
			return nil, ErrInvalidTopic
		}

		session = &models.ChatSession{
			UserID:      req.UserID,
			CharacterID: req.CharacterID,
			Topic:       topic,
			IsWorkflow:  req.IsWorkflow,
			StartTime:   now,
			LastActive:  now,
		}
		if err := s.sessions.Create(session); err != nil {
			return nil, err
		}

		// Workflow sessions may be started without real text; the model is
		// prompted with the fixed start sentinel instead.
		if req.IsWorkflow && userInput == "" {
			userInput = ai.StartSentinel
		}
	} else {
		var err error
		session, err = s.sessions.GetByID(req.SessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSessionNotFound
			}
			return nil, err
		}

		if userInput == "" {
			return nil, ErrUserInputRequired
		}

		if err := s.sessions.Touch(session.ID, now); err != nil {
			return nil, err
		}
		session.LastActive = now

		// A workflow request against a running session turns workflow
		// mode on; it stays on until the model signals a final answer.
		if req.IsWorkflow && !session.IsWorkflow {
			if err := s.sessions.SetWorkflow(session.ID, true); err != nil {
				return nil, err
			}
			session.IsWorkflow = true
		}

		stored, err := s.messages.GetBySession(session.ID)
		if err != nil {
			return nil, err
		}
		if len(stored) > 0 {
			history = make([]ai.Turn, 0, len(stored))
			for _, m := range stored {
				history = append(history, ai.Turn{Role: m.Sender, Text: m.Content})
			}
		}
	}

	character, err := s.characters.GetByID(session.CharacterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}

	if created {
		if err := s.users.IncrementSessionCounters(session.UserID, character.Name, session.Topic); err != nil {
			s.log.Warn("Failed to bump session counters", "user_id", session.UserID, "error", err.Error())
		}
	}

	systemPrompt := ai.EffectiveSystemPrompt(character.SystemPrompt, session.IsWorkflow)

	output, err := s.completer.Complete(ctx, systemPrompt, history, userInput)
	if err != nil {
		observability.CompletionErrorsTotal.Inc()
		observability.TurnsTotal.WithLabelValues("error").Inc()
		return nil, &UpstreamError{Err: err}
	}

	// "fa" is the model's free-text signal that it produced a workflow
	// final answer. Strip it before storage and end workflow mode.
	output, isFinal := ai.StripFinalAnswer(output)
	if isFinal && session.IsWorkflow {
		if err := s.sessions.SetWorkflow(session.ID, false); err != nil {
			return nil, err
		}
		session.IsWorkflow = false
	}

	userOrder, err := s.messages.AppendTurn(session.ID, userInput, output)
	if err != nil {
		return nil, err
	}

	if userOrder == 0 {
		if err := s.summarize(ctx, session, output); err != nil {
			return nil, err
		}
	}

	s.invalidateSessionList(ctx, session.UserID)
	observability.TurnsTotal.WithLabelValues("ok").Inc()

	return &TurnResult{
		Response:   output,
		SessionID:  session.ID,
		IsWorkflow: session.IsWorkflow,
	}, nil
}

// summarize issues the one-off first-turn summary completion and stores the
// result on the session
func (s *ChatService) summarize(ctx context.Context, session *models.ChatSession, modelOutput string) error {
	country := "Unknown"
	if user, err := s.users.GetByID(session.UserID); err == nil && user.Country != "" {
		country = user.Country
	}

	summary, err := s.completer.Complete(ctx, ai.SummaryInstruction(country), nil, modelOutput)
	if err != nil {
		observability.CompletionErrorsTotal.Inc()
		return &UpstreamError{Err: err}
	}

	if err := s.sessions.SetSummary(session.ID, summary); err != nil {
		return err
	}
	session.Summary = summary
	observability.SummariesTotal.Inc()

	return nil
}

// ListUserSessions returns a user's sessions ordered by most recent
// activity, serving from the Redis cache when possible
func (s *ChatService) ListUserSessions(ctx context.Context, userID uint) ([]models.SessionResponse, error) {
	if _, err := s.users.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	key := sessionListKey(userID)
	if s.sessionsCache != nil {
		if cached, err := s.sessionsCache.Get(ctx, key); err == nil {
			var responses []models.SessionResponse
			if err := json.Unmarshal([]byte(cached), &responses); err == nil {
				return responses, nil
			}
		} else if !redis.IsNil(err) {
			s.log.Warn("Session list cache read failed", "error", err.Error())
		}
	}

	sessions, err := s.sessions.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.SessionResponse, 0, len(sessions))
	for i := range sessions {
		responses = append(responses, sessions[i].ToResponse())
	}

	if s.sessionsCache != nil {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.sessionsCache.Set(ctx, key, payload, s.cacheTTL); err != nil {
				s.log.Warn("Session list cache write failed", "error", err.Error())
			}
		}
	}

	return responses, nil
}

// ListSessionMessages returns a session's messages ordered by their
// per-session sequence number
func (s *ChatService) ListSessionMessages(ctx context.Context, sessionID uint) ([]models.Message, error) {
	if _, err := s.sessions.GetByID(sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return s.messages.GetBySession(sessionID)
}

func (s *ChatService) invalidateSessionList(ctx context.Context, userID uint) {
	if s.sessionsCache == nil {
		return
	}
	if err := s.sessionsCache.Del(ctx, sessionListKey(userID)); err != nil {
		s.log.Warn("Session list cache invalidation failed", "user_id", userID, "error", err.Error())
	}
}

func sessionListKey(userID uint) string {
	return fmt.Sprintf("sessions:user:%d", userID)
}
