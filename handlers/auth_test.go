package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"tasklist-api/handlers"
	"tasklist-api/store"
	"tasklist-api/store/memory"
)

const testSecret = "test-secret"

func newAuthRouter(users store.UserStore, codes *store.ActivationCache) http.Handler {
	h := handlers.NewAuthHandler(users, codes, nil, []byte(testSecret))
	r := mux.NewRouter()
	r.HandleFunc("/api/signup", h.Signup).Methods("POST")
	r.HandleFunc("/api/verify-email", h.VerifyEmail).Methods("POST")
	r.HandleFunc("/api/login", h.Login).Methods("POST")
	r.HandleFunc("/api/refresh", h.Refresh).Methods("POST")
	return r
}

func signupBody(email string) map[string]string {
	return map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "correct horse",
	}
}

func TestSignup(t *testing.T) {
	users := memory.NewUserStore()
	app := newAuthRouter(users, store.NewActivationCache())

	rr := postJSON(t, app, "/api/signup", signupBody("a@example.com"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d, want %d body=%s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var out struct {
		User struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Verified bool   `json:"verified"`
		} `json:"user"`
		Feedback struct {
			Kind string `json:"kind"`
		} `json:"feedback"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode err=%v", err)
	}
	if out.User.Email != "a@example.com" {
		t.Fatalf("email=%q, want a@example.com", out.User.Email)
	}
	if out.User.Password != "" {
		t.Fatal("password leaked in response")
	}
	if out.User.Verified {
		t.Fatal("verified=true at signup, want false")
	}
	if out.Feedback.Kind != "info" {
		t.Fatalf("feedback kind=%q, want info", out.Feedback.Kind)
	}

	stored, err := users.GetByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() err=%v", err)
	}
	if stored.Password == "correct horse" {
		t.Fatal("password stored in plain text")
	}
}

func TestSignup_DuplicateEmail_409(t *testing.T) {
	app := newAuthRouter(memory.NewUserStore(), store.NewActivationCache())

	if rr := postJSON(t, app, "/api/signup", signupBody("a@example.com")); rr.Code != http.StatusCreated {
		t.Fatalf("first signup status=%d, want %d", rr.Code, http.StatusCreated)
	}
	rr := postJSON(t, app, "/api/signup", signupBody("a@example.com"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("status=%d, want %d body=%s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestSignup_ShortPassword_400(t *testing.T) {
	app := newAuthRouter(memory.NewUserStore(), store.NewActivationCache())

	body := signupBody("a@example.com")
	body["password"] = "short"
	rr := postJSON(t, app, "/api/signup", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want %d body=%s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestVerifyThenLogin(t *testing.T) {
	users := memory.NewUserStore()
	codes := store.NewActivationCache()
	app := newAuthRouter(users, codes)

	if rr := postJSON(t, app, "/api/signup", signupBody("a@example.com")); rr.Code != http.StatusCreated {
		t.Fatalf("signup status=%d, want %d", rr.Code, http.StatusCreated)
	}

	// Unverified accounts cannot sign in.
	rr := postJSON(t, app, "/api/login", map[string]string{
		"email": "a@example.com", "password": "correct horse",
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("unverified login status=%d, want %d body=%s", rr.Code, http.StatusForbidden, rr.Body.String())
	}

	user, err := users.GetByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() err=%v", err)
	}

	// Reissue a code so the test knows its value.
	code := codes.Set(user.ID, 15*time.Minute)

	if rr := postJSON(t, app, "/api/verify-email", map[string]string{
		"email": "a@example.com", "code": "000000x",
	}); rr.Code != http.StatusBadRequest {
		t.Fatalf("wrong code status=%d, want %d", rr.Code, http.StatusBadRequest)
	}

	// Wrong attempts must not consume the code.
	rr = postJSON(t, app, "/api/verify-email", map[string]string{
		"email": "a@example.com", "code": code,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("verify status=%d, want %d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	rr = postJSON(t, app, "/api/login", map[string]string{
		"email": "a@example.com", "password": "correct horse",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status=%d, want %d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode err=%v", err)
	}
	token, err := jwt.Parse(out["token"], func(t *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["user_id"] != user.ID.String() {
		t.Fatalf("user_id claim=%v, want %s", claims["user_id"], user.ID)
	}
}

func TestLogin_WrongPassword_401(t *testing.T) {
	users := memory.NewUserStore()
	codes := store.NewActivationCache()
	app := newAuthRouter(users, codes)

	postJSON(t, app, "/api/signup", signupBody("a@example.com"))
	user, _ := users.GetByEmail(context.Background(), "a@example.com")
	users.SetVerified(context.Background(), user.ID)

	rr := postJSON(t, app, "/api/login", map[string]string{
		"email": "a@example.com", "password": "wrong password",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want %d body=%s", rr.Code, http.StatusUnauthorized, rr.Body.String())
	}
}

func TestLogin_UnknownEmail_401(t *testing.T) {
	app := newAuthRouter(memory.NewUserStore(), store.NewActivationCache())

	rr := postJSON(t, app, "/api/login", map[string]string{
		"email": "nobody@example.com", "password": "correct horse",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want %d body=%s", rr.Code, http.StatusUnauthorized, rr.Body.String())
	}
}

func TestRefresh(t *testing.T) {
	users := memory.NewUserStore()
	codes := store.NewActivationCache()
	app := newAuthRouter(users, codes)

	postJSON(t, app, "/api/signup", signupBody("a@example.com"))
	user, _ := users.GetByEmail(context.Background(), "a@example.com")
	users.SetVerified(context.Background(), user.ID)

	login := postJSON(t, app, "/api/login", map[string]string{
		"email": "a@example.com", "password": "correct horse",
	})
	var out map[string]string
	if err := json.NewDecoder(login.Body).Decode(&out); err != nil {
		t.Fatalf("decode err=%v", err)
	}

	req := newRequest(t, http.MethodPost, "/api/refresh")
	req.Header.Set("Authorization", "Bearer "+out["token"])
	rr := record(app, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("refresh status=%d, want %d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var refreshed map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&refreshed); err != nil {
		t.Fatalf("decode err=%v", err)
	}
	token, err := jwt.Parse(refreshed["token"], func(t *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("refreshed token invalid: %v", err)
	}
}

func TestRefresh_MissingToken_401(t *testing.T) {
	app := newAuthRouter(memory.NewUserStore(), store.NewActivationCache())

	rr := record(app, newRequest(t, http.MethodPost, "/api/refresh"))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want %d body=%s", rr.Code, http.StatusUnauthorized, rr.Body.String())
	}
}
