package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mindmate/backend/ai"
	"mindmate/backend/internal/models"
	"mindmate/backend/internal/service"
	"mindmate/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubSessionRepo struct {
	sessions map[uint]*models.ChatSession
	nextID   uint
}

func (r *stubSessionRepo) Create(session *models.ChatSession) error {
	r.nextID++
	session.ID = r.nextID
	r.sessions[session.ID] = session
	return nil
}

func (r *stubSessionRepo) GetByID(id uint) (*models.ChatSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (r *stubSessionRepo) GetByUser(userID uint) ([]models.ChatSession, error) {
	matched := []models.ChatSession{}
	for _, s := range r.sessions {
		if s.UserID == userID {
			matched = append(matched, *s)
		}
	}
	return matched, nil
}

func (r *stubSessionRepo) Update(session *models.ChatSession) error   { return nil }
func (r *stubSessionRepo) Touch(id uint, at time.Time) error          { return nil }
func (r *stubSessionRepo) SetSummary(id uint, summary string) error   { return nil }
func (r *stubSessionRepo) SetWorkflow(id uint, isWorkflow bool) error { return nil }

type stubMessageRepo struct {
	messages map[uint][]models.Message
}

func (r *stubMessageRepo) GetBySession(sessionID uint) ([]models.Message, error) {
	return r.messages[sessionID], nil
}

func (r *stubMessageRepo) LastOrder(sessionID uint) (int, error) {
	return len(r.messages[sessionID]) - 1, nil
}

func (r *stubMessageRepo) AppendTurn(sessionID uint, userContent, modelContent string) (int, error) {
	last := len(r.messages[sessionID]) - 1
	r.messages[sessionID] = append(r.messages[sessionID],
		models.Message{SessionID: sessionID, Sender: models.SenderUser, Content: userContent, Ord: last + 1},
		models.Message{SessionID: sessionID, Sender: models.SenderModel, Content: modelContent, Ord: last + 2},
	)
	return last + 1, nil
}

type stubCharacterRepo struct {
	characters map[uint]*models.Character
}

func (r *stubCharacterRepo) Create(character *models.Character) error { return nil }

func (r *stubCharacterRepo) GetByID(id uint) (*models.Character, error) {
	character, ok := r.characters[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return character, nil
}

func (r *stubCharacterRepo) GetByName(name string) (*models.Character, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCharacterRepo) GetAll() ([]models.Character, error) { return nil, nil }

type stubUserRepo struct {
	users map[uint]*models.UserProfile
}

func (r *stubUserRepo) Create(user *models.UserProfile) error { return nil }

func (r *stubUserRepo) GetByID(id uint) (*models.UserProfile, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) GetByEmail(email string) (*models.UserProfile, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) Update(user *models.UserProfile) error                  { return nil }
func (r *stubUserRepo) Follow(follower, followee *models.UserProfile) error    { return nil }
func (r *stubUserRepo) Unfollow(follower, followee *models.UserProfile) error  { return nil }
func (r *stubUserRepo) GetFollowing(userID uint) ([]models.UserProfile, error) { return nil, nil }

func (r *stubUserRepo) IncrementSessionCounters(userID uint, characterName, topic string) error {
	return nil
}

type stubCompleter struct {
	reply string
	err   error
}

func (c *stubCompleter) Complete(_ context.Context, _ string, _ []ai.Turn, _ string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func newTestRouter(completer ai.Completer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New(logger.Config{Level: "error"})

	chatService := service.NewChatService(
		&stubSessionRepo{sessions: map[uint]*models.ChatSession{}},
		&stubMessageRepo{messages: map[uint][]models.Message{}},
		&stubCharacterRepo{characters: map[uint]*models.Character{
			1: {ID: 1, Name: "Ailee", SystemPrompt: "You are Ailee."},
		}},
		&stubUserRepo{users: map[uint]*models.UserProfile{
			1: {ID: 1, Email: "mina@example.com", Country: "South Korea"},
		}},
		completer, nil, 0, log,
	)
	handler := NewChatHandler(chatService, log)

	r := gin.New()
	r.POST("/sessions/", handler.PostTurn)
	r.GET("/users/:userId/sessions/", handler.ListUserSessions)
	r.GET("/sessions/:sessionId/", handler.ListSessionMessages)
	return r
}

func postTurn(t *testing.T, r *gin.Engine, body gin.H) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, "/sessions/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostTurnEndpoint(t *testing.T) {
	r := newTestRouter(&stubCompleter{reply: "Hi! I'm Ailee."})

	w := postTurn(t, r, gin.H{"user_input": "hello", "user_id": 1, "character_id": 1})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Response   string `json:"response"`
		SessionID  uint   `json:"session_id"`
		IsWorkflow bool   `json:"is_workflow"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hi! I'm Ailee.", resp.Response)
	assert.Equal(t, uint(1), resp.SessionID)
	assert.False(t, resp.IsWorkflow)
}

func TestPostTurnEndpointValidation(t *testing.T) {
	r := newTestRouter(&stubCompleter{reply: "ok"})

	// missing user_id and character_id on a new session
	w := postTurn(t, r, gin.H{"user_input": "hello"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown session
	w = postTurn(t, r, gin.H{"session_id": 42, "user_input": "hello"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// unknown character
	w = postTurn(t, r, gin.H{"user_input": "hello", "user_id": 1, "character_id": 9})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostTurnEndpointUpstreamFailure(t *testing.T) {
	r := newTestRouter(&stubCompleter{err: errors.New("deadline exceeded")})

	w := postTurn(t, r, gin.H{"user_input": "hello", "user_id": 1, "character_id": 1})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "completion service")
}

func TestSessionQueryEndpoints(t *testing.T) {
	r := newTestRouter(&stubCompleter{reply: "Hi!"})

	w := postTurn(t, r, gin.H{"user_input": "hello", "user_id": 1, "character_id": 1})
	require.Equal(t, http.StatusOK, w.Code)

	req, _ := http.NewRequest(http.MethodGet, "/users/1/sessions/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sessions")

	req, _ = http.NewRequest(http.MethodGet, "/sessions/1/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello")

	req, _ = http.NewRequest(http.MethodGet, "/users/9/sessions/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
