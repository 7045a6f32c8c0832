package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campus_chat/internal/models"
	"campus_chat/internal/repository"
	"campus_chat/internal/service"
	"campus_chat/internal/utils"
	"campus_chat/pkg/config"
)

type apiFixture struct {
	router   *gin.Engine
	services *service.Services
	tokens   map[string]string // email -> token
	ids      map[string]string // email -> account id
}

func setup(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	services := service.NewServices(repository.NewMemoryRepositories(), tokens, config.WSConfig{
		SendBuffer:   16,
		PingInterval: time.Second,
		PongWait:     5 * time.Second,
		WriteWait:    time.Second,
	}, config.AdminConfig{SecretKey: "bootstrap-key"}, logger)

	f := &apiFixture{
		router:   NewRouter(services, nil, logger),
		services: services,
		tokens:   make(map[string]string),
		ids:      make(map[string]string),
	}

	for email, role := range map[string]models.Role{
		"teacher@campus.test": models.RoleTeacher,
		"student@campus.test": models.RoleStudent,
		"admin@campus.test":   models.RoleAdmin,
	} {
		account, err := services.Account.CreateAccount(context.Background(), email, email, "password123", role)
		require.NoError(t, err)
		f.ids[email] = account.ID

		rec := f.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": "password123"})
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		f.tokens[email] = body.Token
	}
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	f := setup(t)

	rec := f.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "teacher@campus.test", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHTTP_SendAndHistory(t *testing.T) {
	f := setup(t)
	teacherID, studentID := f.ids["teacher@campus.test"], f.ids["student@campus.test"]
	teacherToken, studentToken := f.tokens["teacher@campus.test"], f.tokens["student@campus.test"]

	rec := f.do(t, http.MethodPost, "/api/chat/"+studentID, teacherToken, map[string]string{"message": "M1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var m1 models.ChatMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m1))
	assert.Equal(t, teacherID, m1.SenderID)
	assert.Equal(t, models.RoleStudent, m1.ReceiverRole)

	rec = f.do(t, http.MethodPost, "/api/student/chat/"+teacherID, studentToken, map[string]string{"message": "M2"})
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, path := range []struct{ url, token string }{
		{"/api/chat/" + studentID, teacherToken},
		{"/api/teacher/chat/" + studentID, teacherToken},
		{"/api/chat/" + teacherID, studentToken},
	} {
		rec = f.do(t, http.MethodGet, path.url, path.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var history []models.ChatMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
		require.Len(t, history, 2)
		assert.Equal(t, "M1", history[0].Body)
		assert.Equal(t, "M2", history[1].Body)
	}
}

func TestChatHTTP_Rejections(t *testing.T) {
	f := setup(t)
	teacherID, studentID := f.ids["teacher@campus.test"], f.ids["student@campus.test"]

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     interface{}
		wantCode int
	}{
		{name: "no token", method: http.MethodGet, path: "/api/chat/" + studentID, wantCode: http.StatusUnauthorized},
		{name: "empty message", method: http.MethodPost, path: "/api/chat/" + studentID, token: f.tokens["teacher@campus.test"], body: map[string]string{"message": ""}, wantCode: http.StatusBadRequest},
		{name: "missing message", method: http.MethodPost, path: "/api/chat/" + studentID, token: f.tokens["teacher@campus.test"], body: map[string]string{}, wantCode: http.StatusBadRequest},
		{name: "admin cannot chat", method: http.MethodPost, path: "/api/chat/" + studentID, token: f.tokens["admin@campus.test"], body: map[string]string{"message": "hi"}, wantCode: http.StatusForbidden},
		{name: "student on teacher path", method: http.MethodPost, path: "/api/teacher/chat/" + teacherID, token: f.tokens["student@campus.test"], body: map[string]string{"message": "hi"}, wantCode: http.StatusForbidden},
		{name: "unknown route", method: http.MethodGet, path: "/api/unknown", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	// 被拒絕的請求不應留下任何訊息
	history, err := f.services.Chat.GetHistory(context.Background(),
		models.UserRef{ID: teacherID, Role: models.RoleTeacher},
		models.UserRef{ID: studentID, Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatHTTP_BodyLength(t *testing.T) {
	f := setup(t)
	studentID := f.ids["student@campus.test"]
	teacherToken := f.tokens["teacher@campus.test"]

	rec := f.do(t, http.MethodPost, "/api/chat/"+studentID, teacherToken, map[string]string{
		"message": strings.Repeat("a", service.MaxMessageBytes+1),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message"`)

	rec = f.do(t, http.MethodPost, "/api/chat/"+studentID, teacherToken, map[string]string{
		"message": strings.Repeat("a", service.MaxMessageBytes),
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAdminCreateAccount(t *testing.T) {
	f := setup(t)
	adminToken := f.tokens["admin@campus.test"]

	rec := f.do(t, http.MethodPost, "/api/admin/accounts", adminToken, map[string]string{
		"name": "Grace", "email": "grace@campus.test", "password": "longenough", "role": "Student",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "longenough")

	rec = f.do(t, http.MethodPost, "/api/admin/accounts", adminToken, map[string]string{
		"name": "Grace", "email": "grace@campus.test", "password": "longenough", "role": "student",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/admin/accounts", adminToken, map[string]string{
		"name": "Eve", "email": "eve@campus.test", "password": "longenough", "role": "principal",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/admin/accounts", f.tokens["teacher@campus.test"], map[string]string{
		"name": "Mallory", "email": "m@campus.test", "password": "longenough", "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// 全新的系統只靠管理密鑰建立第一個管理員，再由管理員建立其他帳號
func TestAdminSignupBootstrapsEmptySystem(t *testing.T) {
	gin.SetMode(gin.TestMode)
	services := service.NewServices(repository.NewMemoryRepositories(), utils.NewTokenManager("test-secret", time.Hour),
		config.WSConfig{SendBuffer: 16, PingInterval: time.Second, PongWait: 5 * time.Second, WriteWait: time.Second},
		config.AdminConfig{SecretKey: "bootstrap-key"}, zap.NewNop())
	f := &apiFixture{router: NewRouter(services, nil, zap.NewNop()), services: services}

	signup := map[string]string{"name": "Root", "email": "root@campus.test", "password": "rootpass1", "secretKey": "wrong"}
	rec := f.do(t, http.MethodPost, "/api/admin/signup", "", signup)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	signup["secretKey"] = "bootstrap-key"
	rec = f.do(t, http.MethodPost, "/api/admin/signup", "", signup)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "rootpass1")

	rec = f.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "root@campus.test", "password": "rootpass1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = f.do(t, http.MethodPost, "/api/admin/accounts", login.Token, map[string]string{
		"name": "Ada", "email": "ada@campus.test", "password": "teachpass", "role": "teacher",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "ada@campus.test", "password": "teachpass"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminSignupDisabledWithoutSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	services := service.NewServices(repository.NewMemoryRepositories(), utils.NewTokenManager("test-secret", time.Hour),
		config.WSConfig{SendBuffer: 16, PingInterval: time.Second, PongWait: 5 * time.Second, WriteWait: time.Second},
		config.AdminConfig{}, zap.NewNop())
	f := &apiFixture{router: NewRouter(services, nil, zap.NewNop()), services: services}

	rec := f.do(t, http.MethodPost, "/api/admin/signup", "", map[string]string{
		"name": "Root", "email": "root@campus.test", "password": "rootpass1", "secretKey": "anything",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// HTTP 發送的訊息應即時推送給以 WebSocket 在線的對方
func TestChatHTTP_PushesToWebSocketPeer(t *testing.T) {
	f := setup(t)
	server := httptest.NewServer(f.router)
	defer server.Close()

	teacherID, studentID := f.ids["teacher@campus.test"], f.ids["student@campus.test"]

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws?token=" + f.tokens["teacher@campus.test"]
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "identify", "data": map[string]string{"userId": teacherID}}))
	var frame struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, service.EventIdentified, frame.Type)

	rec := f.do(t, http.MethodGet, "/api/admin/presence", f.tokens["admin@campus.test"], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), teacherID)

	rec = f.do(t, http.MethodPost, "/api/chat/"+teacherID, f.tokens["student@campus.test"], map[string]string{"message": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, service.EventMessageDelivered, frame.Type)
	var delivered models.ChatMessage
	require.NoError(t, json.Unmarshal(frame.Data, &delivered))
	assert.Equal(t, "hello", delivered.Body)
	assert.Equal(t, studentID, delivered.SenderID)
}

func TestWebSocket_RequiresToken(t *testing.T) {
	f := setup(t)
	server := httptest.NewServer(f.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
