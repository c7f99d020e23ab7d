package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fc-casework/felling-licence-api/internal/middleware"
	"github.com/fc-casework/felling-licence-api/internal/models"
)

func newTestContext(t *testing.T, method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func asOfficer(c *gin.Context, role models.UserRole) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "officer-1", Role: role})
}

func TestApplicationHandlerWithdrawInvalidBody(t *testing.T) {
	h := NewApplicationHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/applications/app-1/withdraw", []byte(`not json`))
	asOfficer(c, models.RoleAdminOfficer)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	h.Withdraw(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplicationHandlerWithdrawMissingClaims(t *testing.T) {
	h := NewApplicationHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/applications/app-1/withdraw", []byte(`{"reason":"duplicate submission"}`))
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	h.Withdraw(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApplicationHandlerRevertWithdrawalMissingClaims(t *testing.T) {
	h := NewApplicationHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/applications/app-1/revert-withdrawal", nil)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	h.RevertWithdrawal(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOfficerHandlerUnknownCheck(t *testing.T) {
	h := NewAdminOfficerHandler(nil)
	c, w := newTestContext(t, http.MethodPut, "/applications/app-1/admin-officer-review/checks/banana", []byte(`{"complete":true}`))
	asOfficer(c, models.RoleAdminOfficer)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}, {Key: "check", Value: "banana"}}

	h.UpdateCheck(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminOfficerHandlerUpdateCheckInvalidBody(t *testing.T) {
	h := NewAdminOfficerHandler(nil)
	c, w := newTestContext(t, http.MethodPut, "/applications/app-1/admin-officer-review/checks/mapping", []byte(`{`))
	asOfficer(c, models.RoleAdminOfficer)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}, {Key: "check", Value: "mapping"}}

	h.UpdateCheck(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
