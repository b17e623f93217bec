package services

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tiketnow/config"
	"tiketnow/internal/status"
	"tiketnow/models"
)

// AuthService checks logins against the config-injected credential table and
// keeps session tokens in memory. Sessions are the only signed-in state the
// system holds; a restart signs everyone out.
type AuthService struct {
	creds      map[string]config.Credential
	sessionTTL time.Duration

	mu       sync.Mutex
	sessions map[string]session
}

type session struct {
	user    models.User
	expires time.Time
}

func NewAuthService(cfg *config.Config) *AuthService {
	creds := make(map[string]config.Credential, len(cfg.Credentials))
	for _, c := range cfg.Credentials {
		creds[c.Username] = c
	}
	return &AuthService{
		creds:      creds,
		sessionTTL: cfg.SessionTTL,
		sessions:   make(map[string]session),
	}
}

func (s *AuthService) Login(username, password string) (string, models.User, error) {
	cred, ok := s.creds[username]
	if !ok || !verifyPassword(cred, password) {
		return "", models.User{}, status.ErrInvalidCredentials
	}

	user := models.User{Username: username, Role: models.Role(cred.Role)}
	if user.Role == "" {
		user.Role = models.RoleAdmin
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = session{user: user, expires: time.Now().Add(s.sessionTTL)}
	s.mu.Unlock()

	return token, user, nil
}

func (s *AuthService) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *AuthService) CurrentUser(token string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return models.User{}, status.ErrSessionExpired
	}
	if time.Now().After(sess.expires) {
		delete(s.sessions, token)
		return models.User{}, status.ErrSessionExpired
	}
	return sess.user, nil
}

func verifyPassword(cred config.Credential, password string) bool {
	if cred.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) == nil
	}
	if cred.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cred.Password), []byte(password)) == 1
}
