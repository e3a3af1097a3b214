package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aifahao/streamticket/internal/models"
	"github.com/aifahao/streamticket/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testSecret = "gate-secret"

func openGateDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:gate_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if errMigrate := conn.AutoMigrate(&models.User{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func gateRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("/api", RequireUser(db, testSecret))
	authed.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, fmt.Sprint(UserID(c))) })
	authed.GET("/admin/ping", RequireAdmin(), func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func call(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, userID uint64) string {
	t.Helper()
	token, err := security.GenerateToken(testSecret, userID, "u", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return "Bearer " + token
}

func TestRequireUserRejectsBadCredentials(t *testing.T) {
	db := openGateDB(t)
	r := gateRouter(db)
	expired, _ := security.GenerateToken(testSecret, 1, "u", -time.Minute)
	forged, _ := security.GenerateToken("other-secret", 1, "u", time.Hour)

	for name, header := range map[string]string{
		"missing":      "",
		"basic scheme": "Basic abc",
		"empty bearer": "Bearer ",
		"garbage":      "Bearer not-a-jwt",
		"expired":      "Bearer " + expired,
		"forged":       "Bearer " + forged,
		"unknown user": bearer(t, 404),
	} {
		if w := call(r, "/api/me", header); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, w.Code)
		}
	}
}

func TestRequireUserRejectsDisabledUser(t *testing.T) {
	db := openGateDB(t)
	user := models.User{Username: "blocked", Disabled: true}
	if errCreate := db.Create(&user).Error; errCreate != nil {
		t.Fatalf("create: %v", errCreate)
	}
	if w := call(gateRouter(db), "/api/me", bearer(t, user.ID)); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRequireAdminReadsFlagPerRequest(t *testing.T) {
	db := openGateDB(t)
	user := models.User{Username: "ops", IsAdmin: true}
	if errCreate := db.Create(&user).Error; errCreate != nil {
		t.Fatalf("create: %v", errCreate)
	}
	r := gateRouter(db)
	auth := bearer(t, user.ID)

	if w := call(r, "/api/me", auth); w.Code != http.StatusOK || w.Body.String() != fmt.Sprint(user.ID) {
		t.Fatalf("expected user id, got %d %s", w.Code, w.Body.String())
	}
	if w := call(r, "/api/admin/ping", auth); w.Code != http.StatusOK {
		t.Fatalf("expected admin access, got %d", w.Code)
	}

	if errUpdate := db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_admin", false).Error; errUpdate != nil {
		t.Fatalf("demote: %v", errUpdate)
	}
	if w := call(r, "/api/admin/ping", auth); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 after demotion with the same token, got %d", w.Code)
	}
	if w := call(r, "/api/me", auth); w.Code != http.StatusOK {
		t.Fatalf("demoted user must still be authenticated, got %d", w.Code)
	}
}

func TestTimeoutSetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/t", func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	if w := call(r, "/t", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected deadline on request context, got %d", w.Code)
	}
}
