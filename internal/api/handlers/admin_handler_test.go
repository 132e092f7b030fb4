package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fanfcorp/acp-market/internal/api/handlers"
	"github.com/fanfcorp/acp-market/internal/api/middleware"
	"github.com/fanfcorp/acp-market/internal/auth"
	"github.com/fanfcorp/acp-market/internal/models"
	"github.com/fanfcorp/acp-market/internal/services"
)

const testAdminKey = "super-secret-admin-key"

func adminFixture(t *testing.T) (*gin.Engine, *MockServerService, *MockJobService) {
	gin.SetMode(gin.TestMode)

	hash, err := auth.HashKey(testAdminKey)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.AdminKeyHash = hash
	cfg.AdminTokenKey = "test-token-key"
	cfg.AdminTokenTTL = time.Hour

	mockServerSvc := new(MockServerService)
	mockJobSvc := new(MockJobService)
	handler := handlers.NewAdminHandler(cfg, mockServerSvc, mockJobSvc,
		new(MockSubmissionService), new(MockWaitlistService), new(MockServiceRequestService))

	r := gin.New()
	r.POST("/v1/admin/token", handler.IssueToken)
	admin := r.Group("/v1/admin", middleware.AdminAuthMiddleware(cfg.AdminTokenKey))
	admin.GET("/servers", handler.ListServers)
	admin.POST("/servers/:id/approve", handler.ApproveServer)
	admin.POST("/jobs/:id/publish", handler.PublishJob)
	admin.DELETE("/jobs/:id", handler.DeleteJob)
	return r, mockServerSvc, mockJobSvc
}

func issueToken(t *testing.T, r *gin.Engine, key string) (string, int) {
	body, _ := json.Marshal(map[string]string{"key": key})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/admin/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		return "", w.Code
	}
	var respBody map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	token, _ := respBody["token"].(string)
	return token, w.Code
}

func TestAdminHandler_IssueToken(t *testing.T) {
	r, _, _ := adminFixture(t)

	token, code := issueToken(t, r, testAdminKey)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, token)

	_, code = issueToken(t, r, "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, code)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/admin/token", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_RequiresToken(t *testing.T) {
	r, mockServerSvc, _ := adminFixture(t)

	// No Authorization header.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/admin/servers", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/v1/admin/servers", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	mockServerSvc.AssertNotCalled(t, "ListByStatus")
}

func TestAdminHandler_ListServers(t *testing.T) {
	r, mockServerSvc, _ := adminFixture(t)

	token, code := issueToken(t, r, testAdminKey)
	require.Equal(t, http.StatusOK, code)

	mockServerSvc.On("ListByStatus", mock.Anything, "pending").
		Return([]models.Server{{ID: "srv-1", Status: models.ServerStatusPending}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/admin/servers?status=pending", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string][]models.Server
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Len(t, respBody["servers"], 1)
	mockServerSvc.AssertExpectations(t)
}

func TestAdminHandler_ApproveServer_NotFound(t *testing.T) {
	r, mockServerSvc, _ := adminFixture(t)

	token, code := issueToken(t, r, testAdminKey)
	require.Equal(t, http.StatusOK, code)

	mockServerSvc.On("Approve", mock.Anything, "missing").Return(nil, services.ErrNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/admin/servers/missing/approve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockServerSvc.AssertExpectations(t)
}

func TestAdminHandler_PublishAndDeleteJob(t *testing.T) {
	r, _, mockJobSvc := adminFixture(t)

	token, code := issueToken(t, r, testAdminKey)
	require.Equal(t, http.StatusOK, code)

	mockJobSvc.On("Publish", mock.Anything, "job-1").
		Return(&models.Job{ID: "job-1", Status: models.JobStatusPublished}, nil)
	mockJobSvc.On("Delete", mock.Anything, "job-1").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/admin/jobs/job-1/publish", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/v1/admin/jobs/job-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	mockJobSvc.AssertExpectations(t)
}
