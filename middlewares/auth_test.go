package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tasklist-api/middlewares"
)

var secret = []byte("test-secret")

func signToken(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token err=%v", err)
	}
	return token
}

func protected(t *testing.T, gotUser *uuid.UUID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.GetUserID(r)
		if !ok {
			t.Error("GetUserID() ok=false inside protected handler")
		}
		if gotUser != nil {
			*gotUser = userID
		}
		w.WriteHeader(http.StatusOK)
	}
}

func doAuth(h http.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRequireAuth_ValidToken(t *testing.T) {
	auth := middlewares.NewAuth(secret)
	userID := uuid.New()
	token := signToken(t, secret, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	var got uuid.UUID
	rr := doAuth(auth.RequireAuth(protected(t, &got)), "Bearer "+token)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if got != userID {
		t.Fatalf("user id=%s, want %s", got, userID)
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	auth := middlewares.NewAuth(secret)

	rr := doAuth(auth.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}), "")

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	auth := middlewares.NewAuth(secret)
	token := signToken(t, []byte("other-secret"), jwt.MapClaims{
		"user_id": uuid.New().String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	rr := doAuth(auth.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with a forged token")
	}), "Bearer "+token)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	auth := middlewares.NewAuth(secret)
	token := signToken(t, secret, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	rr := doAuth(auth.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with an expired token")
	}), "Bearer "+token)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_NonUUIDClaim(t *testing.T) {
	auth := middlewares.NewAuth(secret)
	token := signToken(t, secret, jwt.MapClaims{
		"user_id": "42",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	rr := doAuth(auth.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with a malformed user id")
	}), "Bearer "+token)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
