package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lindokuhlezulu42/E-LibraryLog/config"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "middleware-test-secret-2026",
		Issuer:         "e-library-log",
		AccessTokenTTL: 15 * time.Minute,
	})
}

// protectedRouter JWTAuth + 可选 RoleAuth，处理函数回显上下文中的身份
func protectedRouter(mgr *jwt.Manager, roles ...string) *gin.Engine {
	r := gin.New()
	r.Use(JWTAuth(mgr, nil, zap.NewNop()))
	if len(roles) > 0 {
		r.Use(RoleAuth(roles...))
	}
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetInt64(ctxUserID),
			"role":       c.GetString(ctxRole),
			"profile_id": c.GetInt64(ctxProfileID),
		})
	})
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_InjectsPrincipal(t *testing.T) {
	mgr := newJWTManager()
	token, err := mgr.GenerateAccessToken(42, "student", 7)
	if err != nil {
		t.Fatalf("签发 Token 失败: %v", err)
	}

	w := get(protectedRouter(mgr), "/me", "Bearer "+token)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`"user_id":42`, `"role":"student"`, `"profile_id":7`} {
		if !strings.Contains(body, want) {
			t.Errorf("响应缺少 %s: %s", want, body)
		}
	}
}

func TestJWTAuth_Rejects(t *testing.T) {
	mgr := newJWTManager()
	other := jwt.NewManager(&config.AuthConfig{JWTSecret: "another-secret-key-2026", Issuer: "e-library-log", AccessTokenTTL: time.Minute})
	forged, _ := other.GenerateAccessToken(1, "admin", 1)

	cases := []struct {
		name   string
		header string
	}{
		{"缺少认证头", ""},
		{"格式错误", "Token abc"},
		{"签名不匹配", "Bearer " + forged},
		{"乱码", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(protectedRouter(mgr), "/me", tc.header)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("期望 401，实际 %d", w.Code)
			}
		})
	}
}

func TestRoleAuth(t *testing.T) {
	mgr := newJWTManager()
	studentToken, _ := mgr.GenerateAccessToken(42, "student", 7)
	adminToken, _ := mgr.GenerateAccessToken(43, "admin", 3)
	r := protectedRouter(mgr, "admin")

	if w := get(r, "/me", "Bearer "+studentToken); w.Code != http.StatusForbidden {
		t.Errorf("学生访问管理员接口应返回 403，实际 %d", w.Code)
	}
	if w := get(r, "/me", "Bearer "+adminToken); w.Code != http.StatusOK {
		t.Errorf("管理员应可访问，实际 %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "trace-1")
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "trace-1" || w.Body.String() != "trace-1" {
		t.Errorf("应沿用传入的 Request-ID，实际 %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", requestIDMaxLen+1))
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("超长 Request-ID 应重新生成 UUID，实际 %q", got)
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/", strings.NewReader("small")))
	if w.Code != http.StatusOK {
		t.Errorf("未超限应放行，实际 %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/", strings.NewReader("definitely too large")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("超限应返回 413，实际 %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("白名单预检失败: %d %v", w.Code, w.Header())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("非白名单来源不应回显")
	}
}

func TestRateLimit_NoRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, 1, time.Minute))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Redis 不可用时应放行，第 %d 次返回 %d", i+1, w.Code)
		}
	}
}
