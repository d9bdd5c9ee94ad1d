package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionCookieName = "rab_session"

	roleAdmin = "admin"
	roleUser  = "user"

	minPasswordLength = 6
)

var (
	errEmailTaken      = errors.New("email sudah terdaftar")
	errInvalidEmail    = errors.New("email tidak valid")
	errPasswordTooWeak = fmt.Errorf("kata sandi minimal %d karakter", minPasswordLength)
)

var validate = validator.New()

type session struct {
	Email string
	Role  string
}

func (s session) IsAdmin() bool {
	return s.Role == roleAdmin
}

type sessionKey struct{}

func withSession(ctx context.Context, s session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func sessionFrom(r *http.Request) (session, bool) {
	s, ok := r.Context().Value(sessionKey{}).(session)
	return s, ok
}

type authService struct {
	db            *sql.DB
	sessionSecret []byte
	sessionTTL    time.Duration
}

func newAuthService(db *sql.DB, sessionSecret string, ttl time.Duration) *authService {
	if sessionSecret == "" {
		// Sessions do not survive a restart without a configured secret.
		sessionSecret = uuid.NewString()
	}
	return &authService{db: db, sessionSecret: []byte(sessionSecret), sessionTTL: ttl}
}

func (a *authService) validateCredentials(email, password string) (session, bool, error) {
	email = normalizeEmail(email)

	var passwordHash, role string
	err := a.db.QueryRow(`SELECT password_hash, role FROM users WHERE email = ?`, email).Scan(&passwordHash, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return session{}, false, nil
	}
	if err != nil {
		return session{}, false, fmt.Errorf("query user credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return session{}, false, nil
	}
	return session{Email: email, Role: role}, true, nil
}

// registerUser creates a regular account and returns its session.
func (a *authService) registerUser(email, password string) (session, error) {
	email = normalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return session{}, errInvalidEmail
	}
	if len(password) < minPasswordLength {
		return session{}, errPasswordTooWeak
	}

	var exists bool
	if err := a.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists); err != nil {
		return session{}, fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return session{}, errEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return session{}, fmt.Errorf("hash password: %w", err)
	}
	if _, err := a.db.Exec(`INSERT INTO users (email, password_hash, role) VALUES (?, ?, ?)`, email, string(hash), roleUser); err != nil {
		return session{}, fmt.Errorf("insert user: %w", err)
	}
	return session{Email: email, Role: roleUser}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *authService) createSessionValue(s session) (string, error) {
	claims := jwt.MapClaims{
		"sub":  s.Email,
		"role": s.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(a.sessionTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.sessionSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (a *authService) verifySessionValue(value string) (session, bool) {
	token, err := jwt.Parse(value, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.sessionSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return session{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return session{}, false
	}
	email, err := claims.GetSubject()
	if err != nil || email == "" {
		return session{}, false
	}
	role, _ := claims["role"].(string)
	if role != roleAdmin && role != roleUser {
		return session{}, false
	}
	return session{Email: email, Role: role}, true
}

func (a *authService) setSessionCookie(w http.ResponseWriter, s session) error {
	value, err := a.createSessionValue(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(a.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (a *authService) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// storedRole returns the current role of email, or "" when the account no
// longer exists.
func (a *authService) storedRole(ctx context.Context, email string) (string, error) {
	var role string
	err := a.db.QueryRowContext(ctx, `SELECT role FROM users WHERE email = ?`, email).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query user role: %w", err)
	}
	return role, nil
}

// currentSession verifies the session cookie and takes the role from the
// users table, so demoted or deleted accounts lose access before the token
// expires.
func currentSession(r *http.Request, auth *authService) (session, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return session{}, false
	}
	sess, ok := auth.verifySessionValue(cookie.Value)
	if !ok {
		return session{}, false
	}

	role, err := auth.storedRole(r.Context(), sess.Email)
	if err != nil {
		log.Printf("[ERROR] load session role for %s: %v", sess.Email, err)
		return session{}, false
	}
	if role != roleAdmin && role != roleUser {
		return session{}, false
	}
	sess.Role = role
	return sess, true
}
