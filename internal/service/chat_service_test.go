package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"mindmate/backend/ai"
	"mindmate/backend/internal/models"
	"mindmate/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memUserRepo struct {
	users  map[uint]*models.UserProfile
	nextID uint
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uint]*models.UserProfile)}
}

func (r *memUserRepo) Create(user *models.UserProfile) error {
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(id uint) (*models.UserProfile, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(email string) (*models.UserProfile, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Update(user *models.UserProfile) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) Follow(follower, followee *models.UserProfile) error {
	stored, ok := r.users[follower.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Following = append(stored.Following, followee)
	return nil
}

func (r *memUserRepo) Unfollow(follower, followee *models.UserProfile) error {
	stored, ok := r.users[follower.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	kept := stored.Following[:0]
	for _, f := range stored.Following {
		if f.ID != followee.ID {
			kept = append(kept, f)
		}
	}
	stored.Following = kept
	return nil
}

func (r *memUserRepo) IncrementSessionCounters(userID uint, characterName, topic string) error {
	stored, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if characterName == "Ailee" {
		stored.AileeChatCount++
	}
	if topic == models.TopicDecisionMaking {
		stored.DecisionCount++
	}
	return nil
}

func (r *memUserRepo) GetFollowing(userID uint) ([]models.UserProfile, error) {
	stored, ok := r.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	following := make([]models.UserProfile, 0, len(stored.Following))
	for _, f := range stored.Following {
		following = append(following, *f)
	}
	return following, nil
}

type memCharacterRepo struct {
	characters map[uint]*models.Character
	nextID     uint
}

func newMemCharacterRepo() *memCharacterRepo {
	return &memCharacterRepo{characters: make(map[uint]*models.Character)}
}

func (r *memCharacterRepo) Create(character *models.Character) error {
	r.nextID++
	character.ID = r.nextID
	r.characters[character.ID] = character
	return nil
}

func (r *memCharacterRepo) GetByID(id uint) (*models.Character, error) {
	character, ok := r.characters[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *character
	return &copied, nil
}

func (r *memCharacterRepo) GetByName(name string) (*models.Character, error) {
	for _, character := range r.characters {
		if character.Name == name {
			copied := *character
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCharacterRepo) GetAll() ([]models.Character, error) {
	all := make([]models.Character, 0, len(r.characters))
	for _, character := range r.characters {
		all = append(all, *character)
	}
	return all, nil
}

type memSessionRepo struct {
	sessions map[uint]*models.ChatSession
	nextID   uint
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uint]*models.ChatSession)}
}

func (r *memSessionRepo) Create(session *models.ChatSession) error {
	r.nextID++
	session.ID = r.nextID
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memSessionRepo) GetByID(id uint) (*models.ChatSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *memSessionRepo) GetByUser(userID uint) ([]models.ChatSession, error) {
	matched := []models.ChatSession{}
	for _, session := range r.sessions {
		if session.UserID == userID {
			matched = append(matched, *session)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].LastActive.After(matched[j].LastActive)
	})
	return matched, nil
}

func (r *memSessionRepo) Update(session *models.ChatSession) error {
	if _, ok := r.sessions[session.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memSessionRepo) Touch(id uint, at time.Time) error {
	session, ok := r.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.LastActive = at
	return nil
}

func (r *memSessionRepo) SetSummary(id uint, summary string) error {
	session, ok := r.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.Summary = summary
	return nil
}

func (r *memSessionRepo) SetWorkflow(id uint, isWorkflow bool) error {
	session, ok := r.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.IsWorkflow = isWorkflow
	return nil
}

type memMessageRepo struct {
	messages map[uint][]models.Message
	nextID   uint
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: make(map[uint][]models.Message)}
}

func (r *memMessageRepo) GetBySession(sessionID uint) ([]models.Message, error) {
	stored := r.messages[sessionID]
	out := make([]models.Message, len(stored))
	copy(out, stored)
	return out, nil
}

func (r *memMessageRepo) LastOrder(sessionID uint) (int, error) {
	return len(r.messages[sessionID]) - 1, nil
}

func (r *memMessageRepo) AppendTurn(sessionID uint, userContent, modelContent string) (int, error) {
	last, _ := r.LastOrder(sessionID)
	userOrder := last + 1
	r.nextID += 2
	r.messages[sessionID] = append(r.messages[sessionID],
		models.Message{ID: r.nextID - 1, SessionID: sessionID, Sender: models.SenderUser, Content: userContent, Ord: userOrder},
		models.Message{ID: r.nextID, SessionID: sessionID, Sender: models.SenderModel, Content: modelContent, Ord: userOrder + 1},
	)
	return userOrder, nil
}

type completionCall struct {
	system  string
	history []ai.Turn
	input   string
}

// scriptCompleter replays canned responses and records every call
type scriptCompleter struct {
	replies []string
	errs    []error
	calls   []completionCall
}

func (c *scriptCompleter) Complete(_ context.Context, system string, history []ai.Turn, input string) (string, error) {
	n := len(c.calls)
	c.calls = append(c.calls, completionCall{system: system, history: history, input: input})
	if n < len(c.errs) && c.errs[n] != nil {
		return "", c.errs[n]
	}
	if n < len(c.replies) {
		return c.replies[n], nil
	}
	return "ok", nil
}

type chatFixture struct {
	users      *memUserRepo
	characters *memCharacterRepo
	sessions   *memSessionRepo
	messages   *memMessageRepo
	completer  *scriptCompleter
	service    *ChatService

	userID      uint
	characterID uint
}

func newChatFixture(t *testing.T, replies ...string) *chatFixture {
	t.Helper()

	f := &chatFixture{
		users:      newMemUserRepo(),
		characters: newMemCharacterRepo(),
		sessions:   newMemSessionRepo(),
		messages:   newMemMessageRepo(),
		completer:  &scriptCompleter{replies: replies},
	}

	user := &models.UserProfile{Email: "mina@example.com", Name: "Mina", Country: "South Korea"}
	require.NoError(t, f.users.Create(user))
	f.userID = user.ID

	character := &models.Character{Name: "Ailee", SystemPrompt: "You are Ailee, a warm and upbeat companion."}
	require.NoError(t, f.characters.Create(character))
	f.characterID = character.ID

	f.service = NewChatService(
		f.sessions, f.messages, f.characters, f.users,
		f.completer, nil, 0,
		logger.New(logger.Config{Level: "error"}),
	)
	return f
}

func (f *chatFixture) startSession(t *testing.T, firstInput string) uint {
	t.Helper()
	result, err := f.service.PostTurn(context.Background(), &TurnRequest{
		UserInput:   firstInput,
		UserID:      f.userID,
		CharacterID: f.characterID,
	})
	require.NoError(t, err)
	return result.SessionID
}

func TestPostTurnCreatesSessionAndSummary(t *testing.T) {
	f := newChatFixture(t, "Hi! I'm Ailee.", "User greeted Ailee.")

	result, err := f.service.PostTurn(context.Background(), &TurnRequest{
		UserInput:   "hello",
		UserID:      f.userID,
		CharacterID: f.characterID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hi! I'm Ailee.", result.Response)
	assert.NotZero(t, result.SessionID)
	assert.False(t, result.IsWorkflow)

	session, err := f.sessions.GetByID(result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.TopicNone, session.Topic)
	assert.Equal(t, "User greeted Ailee.", session.Summary)

	messages, err := f.messages.GetBySession(result.SessionID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.SenderUser, messages[0].Sender)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, 0, messages[0].Ord)
	assert.Equal(t, models.SenderModel, messages[1].Sender)
	assert.Equal(t, 1, messages[1].Ord)

	// two completions: the turn itself, then the first-turn summary
	require.Len(t, f.completer.calls, 2)
	assert.Empty(t, f.completer.calls[0].history)
	assert.Equal(t, ai.SummaryInstruction("South Korea"), f.completer.calls[1].system)
	assert.Equal(t, "Hi! I'm Ailee.", f.completer.calls[1].input)
}

func TestPostTurnNewSessionRequiresUserAndCharacter(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.service.PostTurn(context.Background(), &TurnRequest{
		UserInput: "hello",
		UserID:    f.userID,
	})
	assert.ErrorIs(t, err, ErrSessionFieldsRequired)

	_, err = f.service.PostTurn(context.Background(), &TurnRequest{
		UserInput:   "hello",
		CharacterID: f.characterID,
	})
	assert.ErrorIs(t, err, ErrSessionFieldsRequired)
}

func TestPostTurnSessionTopic(t *testing.T) {
	f := newChatFixture(t, "Hi!", "summary")

	result, err := f.service.PostTurn(context.Background(), &TurnRequest{
		UserInput:   "hello",
		UserID:      f.userID,
		CharacterID: f.characterID,
		Topic:       models.TopicDecisionMaking,
	})
	require.NoError(t, err)

	session, _ := f.sessions.GetByID(result.SessionID)
	assert.Equal(t, models.TopicDecisionMaking, session.Topic)

	user, _ := f.users.GetByID(f.userID)
	assert.Equal(t, uint(1), user.AileeChatCount)
	assert.Equal(t, uint(1), user.DecisionCount)

	_, err = f.service.PostTurn(context.Background(), &TurnRequest{
		UserInput:   "hello",
		UserID:      f.userID,
		CharacterID: f.characterID,
		Topic:       "Gardening",
	})
	assert.ErrorIs(t, err, ErrInvalidTopic)
}

func TestPostTurnSessionNotFound(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.service.PostTurn(context.Background(), &TurnRequest{
		SessionID: 42,
		UserInput: "hello",
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPostTurnEmptyInputOnExistingSession(t *testing.T) {
	f := newChatFixture(t, "Hi!", "summary")
	sessionID := f.startSession(t, "hello")
	callsBefore := len(f.completer.calls)

	_, err := f.service.PostTurn(context.Background(), &TurnRequest{SessionID: sessionID})
	assert.ErrorIs(t, err, ErrUserInputRequired)

	messages, _ := f.messages.GetBySession(sessionID)
	assert.Len(t, messages, 2)
	assert.Len(t, f.completer.calls, callsBefore)
}

func TestPostTurnReplaysHistoryInOrder(t *testing.T) {
	f := newChatFixture(t, "Hi!", "summary", "Nice to meet you too.")
	sessionID := f.startSession(t, "hello")

	result, err := f.service.PostTurn(context.Background(), &TurnRequest{
		SessionID: sessionID,
		UserInput: "nice to meet you",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nice to meet you too.", result.Response)

	// third completion replays the stored transcript in order
	call := f.completer.calls[2]
	require.Len(t, call.history, 2)
	assert.Equal(t, ai.Turn{Role: models.SenderUser, Text: "hello"}, call.history[0])
	assert.Equal(t, ai.Turn{Role: models.SenderModel, Text: "Hi!"}, call.history[1])
	assert.Equal(t, "nice to meet you", call.input)

	messages, _ := f.messages.GetBySession(sessionID)
	require.Len(t, messages, 4)
	for i, m := range messages {
		assert.Equal(t, i, m.Ord)
	}
	assert.Equal(t, models.SenderUser, messages[2].Sender)
	assert.Equal(t, models.SenderModel, messages[3].Sender)

	// the summary was produced on the first turn only
	session, _ := f.sessions.GetByID(sessionID)
	assert.Equal(t, "summary", session.Summary)
	assert.Len(t, f.completer.calls, 3)
}

func TestPostTurnWorkflowStartSentinel(t *testing.T) {
	f := newChatFixture(t, "What would you like to work on?", "summary")

	result, err := f.service.PostTurn(context.Background(), &TurnRequest{
		UserID:      f.userID,
		CharacterID: f.characterID,
		IsWorkflow:  true,
	})
	require.NoError(t, err)
	assert.True(t, result.IsWorkflow)

	call := f.completer.calls[0]
	assert.Equal(t, ai.StartSentinel, call.input)
	assert.True(t, strings.Contains(call.system, ai.WorkflowInstructions))

	// the sentinel is stored as the user's first message
	messages, _ := f.messages.GetBySession(result.SessionID)
	require.Len(t, messages, 2)
	assert.Equal(t, ai.StartSentinel, messages[0].Content)
}

func TestPostTurnWorkflowRequestEnablesWorkflow(t *testing.T) {
	f := newChatFixture(t, "Hi!", "summary", "Let's begin. What is the problem?")
	sessionID := f.startSession(t, "hello")

	result, err := f.service.PostTurn(context.Background(), &TurnRequest{
		SessionID:  sessionID,
		UserInput:  "help me plan my week",
		IsWorkflow: true,
	})
	require.NoError(t, err)
	assert.True(t, result.IsWorkflow)

	session, _ := f.sessions.GetByID(sessionID)
	assert.True(t, session.IsWorkflow)
	assert.True(t, strings.Contains(f.completer.calls[2].system, ai.WorkflowInstructions))
}

func TestPostTurnFinalAnswerEndsWorkflow(t *testing.T) {
	f := newChatFixture(t,
		"What is your main goal this week?", "summary",
		"faHere is your plan: start each day with one small task.",
	)

	result, err := f.service.PostTurn(context.Background(), &TurnRequest{
		UserInput:   "help me plan my week",
		UserID:      f.userID,
		CharacterID: f.characterID,
		IsWorkflow:  true,
	})
	require.NoError(t, err)
	sessionID := result.SessionID

	result, err = f.service.PostTurn(context.Background(), &TurnRequest{
		SessionID: sessionID,
		UserInput: "finishing my thesis draft",
	})
	require.NoError(t, err)

	assert.Equal(t, "Here is your plan: start each day with one small task.", result.Response)
	assert.False(t, result.IsWorkflow)

	session, _ := f.sessions.GetByID(sessionID)
	assert.False(t, session.IsWorkflow)

	// the stored reply has the prefix stripped too
	messages, _ := f.messages.GetBySession(sessionID)
	assert.Equal(t, "Here is your plan: start each day with one small task.", messages[3].Content)
}

func TestPostTurnUpstreamErrorWritesNothing(t *testing.T) {
	f := newChatFixture(t, "Hi!", "summary")
	sessionID := f.startSession(t, "hello")
	f.completer.errs = []error{nil, nil, errors.New("completion API unavailable")}

	_, err := f.service.PostTurn(context.Background(), &TurnRequest{
		SessionID: sessionID,
		UserInput: "are you there?",
	})
	require.Error(t, err)
	assert.True(t, IsUpstream(err))

	messages, _ := f.messages.GetBySession(sessionID)
	assert.Len(t, messages, 2)
}

func TestPostTurnSummaryErrorKeepsMessages(t *testing.T) {
	f := newChatFixture(t, "Hi!")
	f.completer.errs = []error{nil, errors.New("completion API unavailable")}

	_, err := f.service.PostTurn(context.Background(), &TurnRequest{
		UserInput:   "hello",
		UserID:      f.userID,
		CharacterID: f.characterID,
	})
	require.Error(t, err)
	assert.True(t, IsUpstream(err))

	// the turn itself is already persisted; only the summary failed
	messages, _ := f.messages.GetBySession(1)
	assert.Len(t, messages, 2)
	session, _ := f.sessions.GetByID(1)
	assert.Empty(t, session.Summary)
}

func TestPostTurnCharacterNotFound(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.service.PostTurn(context.Background(), &TurnRequest{
		UserInput:   "hello",
		UserID:      f.userID,
		CharacterID: 99,
	})
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestListUserSessions(t *testing.T) {
	f := newChatFixture(t, "Hi!", "summary", "Hello again!", "summary two")

	first := f.startSession(t, "hello")
	time.Sleep(5 * time.Millisecond)
	second := f.startSession(t, "hi again")

	responses, err := f.service.ListUserSessions(context.Background(), f.userID)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, second, responses[0].ID)
	assert.Equal(t, first, responses[1].ID)
}

func TestListUserSessionsUserNotFound(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.service.ListUserSessions(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListSessionMessages(t *testing.T) {
	f := newChatFixture(t, "Hi!", "summary")
	sessionID := f.startSession(t, "hello")

	messages, err := f.service.ListSessionMessages(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Content)

	_, err = f.service.ListSessionMessages(context.Background(), 99)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
