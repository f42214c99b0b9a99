package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"charaverse-api/controllers"
	"charaverse-api/middleware"
	"charaverse-api/models"
	"charaverse-api/services"
	"charaverse-api/testutil"
)

const testJWTSecret = "test-secret"

func setupRelationshipRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	webhook := services.NewWebhookService("", zap.NewNop())
	svc := services.NewRelationshipService(db, webhook, zap.NewNop())
	controller := controllers.NewRelationshipController(svc)

	r := gin.New()
	relationships := r.Group("/api/v1/relationships")
	relationships.Use(middleware.AuthMiddleware(testJWTSecret))
	{
		relationships.POST("/", controller.Propose)
		relationships.POST("/:id/approve", controller.Approve)
		relationships.POST("/:id/decline", controller.Decline)
		relationships.PUT("/:id", controller.Update)
		relationships.DELETE("/:id", controller.Delete)
		relationships.GET("/character/:character_id", controller.ListForCharacter)
	}
	return r, db
}

func signTestToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func seedUser(t *testing.T, db *gorm.DB, id, handle string) {
	t.Helper()
	user := models.User{
		ID:       id,
		Name:     handle,
		Handle:   handle,
		Email:    handle + "@example.com",
		Password: "x",
	}
	require.NoError(t, db.Create(&user).Error)
}

func seedCharacter(t *testing.T, db *gorm.DB, ownerID, name string) *models.Character {
	t.Helper()
	ch := &models.Character{UserID: ownerID, Name: name}
	require.NoError(t, db.Create(ch).Error)
	return ch
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProposeEndpointRequiresAuth(t *testing.T) {
	r, _ := setupRelationshipRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/relationships/", "", gin.H{
		"character1_id": 1,
		"character2_id": 2,
		"type":          "allies",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/relationships/", "not-a-jwt", gin.H{
		"character1_id": 1,
		"character2_id": 2,
		"type":          "allies",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProposeEndpointCreatesAndConflicts(t *testing.T) {
	r, db := setupRelationshipRouter(t)
	seedUser(t, db, "user-alice", "alice")
	seedUser(t, db, "user-bob", "bob")
	a := seedCharacter(t, db, "user-alice", "Aster")
	b := seedCharacter(t, db, "user-bob", "Basil")

	token := signTestToken(t, "user-alice")
	body := gin.H{
		"character1_id": a.ID,
		"character2_id": b.ID,
		"type":          "rivals",
		"status":        "negative",
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/relationships/", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Relationship
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.IsPending)
	assert.Equal(t, "user-alice", created.RequestedBy)

	// Same pair again, reversed order and proposed from Bob's side:
	// still one pair, so conflict
	bobToken := signTestToken(t, "user-bob")
	w = doJSON(t, r, http.MethodPost, "/api/v1/relationships/", bobToken, gin.H{
		"character1_id": b.ID,
		"character2_id": a.ID,
		"type":          "allies",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProposeEndpointValidation(t *testing.T) {
	r, db := setupRelationshipRouter(t)
	seedUser(t, db, "user-alice", "alice")
	a := seedCharacter(t, db, "user-alice", "Aster")

	token := signTestToken(t, "user-alice")

	// Missing type fails binding
	w := doJSON(t, r, http.MethodPost, "/api/v1/relationships/", token, gin.H{
		"character1_id": a.ID,
		"character2_id": a.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Self-pair is rejected by the service
	w = doJSON(t, r, http.MethodPost, "/api/v1/relationships/", token, gin.H{
		"character1_id": a.ID,
		"character2_id": a.ID,
		"type":          "allies",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApproveEndpointFlow(t *testing.T) {
	r, db := setupRelationshipRouter(t)
	seedUser(t, db, "user-alice", "alice")
	seedUser(t, db, "user-bob", "bob")
	a := seedCharacter(t, db, "user-alice", "Aster")
	b := seedCharacter(t, db, "user-bob", "Basil")

	aliceToken := signTestToken(t, "user-alice")
	bobToken := signTestToken(t, "user-bob")

	w := doJSON(t, r, http.MethodPost, "/api/v1/relationships/", aliceToken, gin.H{
		"character1_id": a.ID,
		"character2_id": b.ID,
		"type":          "allies",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Relationship
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := fmt.Sprintf("/api/v1/relationships/%d/approve", created.ID)

	w = doJSON(t, r, http.MethodPost, path, bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var approved models.Relationship
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &approved))
	assert.True(t, approved.IsApproved)
	assert.False(t, approved.IsPending)

	// Approving again is an invalid state transition
	w = doJSON(t, r, http.MethodPost, path, bobToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeclineEndpointRemovesRequest(t *testing.T) {
	r, db := setupRelationshipRouter(t)
	seedUser(t, db, "user-alice", "alice")
	seedUser(t, db, "user-bob", "bob")
	a := seedCharacter(t, db, "user-alice", "Aster")
	b := seedCharacter(t, db, "user-bob", "Basil")

	aliceToken := signTestToken(t, "user-alice")
	bobToken := signTestToken(t, "user-bob")

	w := doJSON(t, r, http.MethodPost, "/api/v1/relationships/", aliceToken, gin.H{
		"character1_id": a.ID,
		"character2_id": b.ID,
		"type":          "allies",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Relationship
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// A stranger cannot decline
	carolToken := signTestToken(t, "user-carol")
	seedUser(t, db, "user-carol", "carol")
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/relationships/%d/decline", created.ID), carolToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/relationships/%d/decline", created.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Relationship{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListEndpointForCharacter(t *testing.T) {
	r, db := setupRelationshipRouter(t)
	seedUser(t, db, "user-alice", "alice")
	a := seedCharacter(t, db, "user-alice", "Aster")
	b := seedCharacter(t, db, "user-alice", "Briar")

	token := signTestToken(t, "user-alice")

	w := doJSON(t, r, http.MethodPost, "/api/v1/relationships/", token, gin.H{
		"character1_id": a.ID,
		"character2_id": b.ID,
		"type":          "siblings",
		"status":        "positive",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/relationships/character/%d", a.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Relationships []models.RelationshipView `json:"relationships"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Relationships, 1)
	assert.Equal(t, b.ID, resp.Relationships[0].OtherCharacter.ID)
	assert.True(t, resp.Relationships[0].CanEdit)

	// Missing character surfaces as not found
	w = doJSON(t, r, http.MethodGet, "/api/v1/relationships/character/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
