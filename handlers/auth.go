package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tasklist-api/models"
	"tasklist-api/store"
	"tasklist-api/utils"
)

const (
	tokenTTL          = 24 * time.Hour
	activationTTL     = 15 * time.Minute
	feedbackBannerTTL = 10 * time.Second
)

type AuthHandler struct {
	users  store.UserStore
	codes  *store.ActivationCache
	mailer *utils.Mailer
	secret []byte
}

// NewAuthHandler wires the account endpoints. mailer may be nil for
// local runs without SMTP; verification codes are then logged instead.
func NewAuthHandler(users store.UserStore, codes *store.ActivationCache, mailer *utils.Mailer, secret []byte) *AuthHandler {
	return &AuthHandler{users: users, codes: codes, mailer: mailer, secret: secret}
}

// Signup godoc
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]any
// @Failure      409  {object}  map[string]string
// @Router       /api/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Name == "" || input.Email == "" || input.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if len(input.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), 14)
	if err != nil {
		log.Printf("hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
	}
	if err := h.users.Insert(r.Context(), &user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		log.Printf("insert user: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	code := h.codes.Set(user.ID, activationTTL)
	if h.mailer != nil {
		if err := h.mailer.SendVerificationCode(user.Email, code); err != nil {
			log.Printf("send verification mail to %s: %v", user.Email, err)
		}
	} else {
		log.Printf("mailer disabled; verification code for %s: %s", user.Email, code)
	}

	user.Password = ""
	writeJSON(w, http.StatusCreated, map[string]any{
		"user": user,
		"feedback": models.NewFeedback(models.FeedbackInfo,
			"Account created. Check your inbox for a verification code.", feedbackBannerTTL),
	})
}

// VerifyEmail godoc
// @Summary      Verify an account with the emailed code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]string
// @Router       /api/verify-email [post]
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	user, err := h.users.GetByEmail(r.Context(), input.Email)
	if err != nil {
		// Do not reveal whether the address exists.
		writeError(w, http.StatusBadRequest, "invalid or expired code")
		return
	}

	if !h.codes.Check(user.ID, input.Code) {
		writeError(w, http.StatusBadRequest, "invalid or expired code")
		return
	}

	if err := h.users.SetVerified(r.Context(), user.ID); err != nil {
		log.Printf("mark user %s verified: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to verify account")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"feedback": models.NewFeedback(models.FeedbackSuccess,
			"Email verified. You can sign in now.", feedbackBannerTTL),
	})
}

// Login godoc
// @Summary      Exchange credentials for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	user, err := h.users.GetByEmail(r.Context(), input.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !user.Verified {
		writeError(w, http.StatusForbidden, "email not verified")
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		log.Printf("sign token: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Refresh godoc
// @Summary      Exchange a valid bearer token for a fresh one
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.secret, nil
	})
	if err != nil || !token.Valid {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token claims")
		return
	}
	idStr, ok := claims["user_id"].(string)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	userID, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	fresh, err := h.issueToken(userID)
	if err != nil {
		log.Printf("sign token: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": fresh})
}

func (h *AuthHandler) issueToken(userID uuid.UUID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})
	return token.SignedString(h.secret)
}
