package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appauth "github.com/surgitrack/surgitrack/internal/app/auth"
	"github.com/surgitrack/surgitrack/internal/app/models"
	pkgauth "github.com/surgitrack/surgitrack/internal/pkg/auth"
)

func testJWTService() *pkgauth.JWTService {
	return pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "surgitrack-test",
	})
}

func testRouter(jwtSvc *pkgauth.JWTService, reached *bool, captured *appauth.Context) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	mw := NewAuthMiddleware(jwtSvc)
	router.GET("/protected", mw.JWTAuth(), func(c *gin.Context) {
		*reached = true
		if ac, ok := GetAuthContext(c); ok {
			*captured = ac
		}
		c.Status(http.StatusOK)
	})
	return router
}

func tokenPairFor(t *testing.T, jwtSvc *pkgauth.JWTService, role models.Role) (access, refresh string) {
	t.Helper()
	profileID := int64(1)
	access, refresh, _, _, err := jwtSvc.GenerateTokenPair(&models.User{
		ID:        10,
		Email:     "alice@hospital.org",
		Role:      role,
		Institute: "st-marys",
		ProfileID: &profileID,
	})
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}
	return access, refresh
}

func TestJWTAuthAcceptsAccessToken(t *testing.T) {
	jwtSvc := testJWTService()
	var reached bool
	var ac appauth.Context
	router := testRouter(jwtSvc, &reached, &ac)

	access, _ := tokenPairFor(t, jwtSvc, models.RoleCandidate)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !reached {
		t.Fatal("handler should run for a valid access token")
	}
	if ac.Role != models.RoleCandidate || ac.Institute != "st-marys" || ac.ProfileID != 1 {
		t.Errorf("unexpected caller context %+v", ac)
	}
}

func TestJWTAuthRejectsRefreshTokenAsBearer(t *testing.T) {
	jwtSvc := testJWTService()
	var reached bool
	var ac appauth.Context
	router := testRouter(jwtSvc, &reached, &ac)

	_, refresh := tokenPairFor(t, jwtSvc, models.RoleCandidate)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token must not authenticate a request, got %d", w.Code)
	}
	if reached {
		t.Fatal("handler must not run for a refresh token")
	}
}

func TestJWTAuthRejectsUnknownRoleClaim(t *testing.T) {
	jwtSvc := testJWTService()
	var reached bool
	var ac appauth.Context
	router := testRouter(jwtSvc, &reached, &ac)

	access, _ := tokenPairFor(t, jwtSvc, models.Role("intruder"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown role must be rejected, got %d", w.Code)
	}
	if reached {
		t.Fatal("handler must not run for an unknown role")
	}
}

func TestJWTAuthRejectsMissingAndMalformedHeaders(t *testing.T) {
	jwtSvc := testJWTService()
	var reached bool
	var ac appauth.Context
	router := testRouter(jwtSvc, &reached, &ac)

	for _, header := range []string{"", "Basic abc", "Bearer not.a.token"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, w.Code)
		}
	}
	if reached {
		t.Fatal("handler must not run without valid credentials")
	}
}
