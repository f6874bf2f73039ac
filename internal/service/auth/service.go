package auth

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
)

const defaultTokenTTL = 12 * time.Hour

// Session описывает выданный bearer-токен.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service выдаёт и проверяет токены для пользователей из конфигурации.
// Сессии живут в памяти процесса.
type Service struct {
	users  map[string]string
	ttl    time.Duration
	logger *log.Entry
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

// NewService создаёт сервис для пар логин/пароль из users.
func NewService(users map[string]string, ttl time.Duration, logger *log.Entry) *Service {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if logger == nil {
		logger = log.WithField("component", "auth")
	}
	copied := make(map[string]string, len(users))
	for name, password := range users {
		copied[name] = password
	}
	return &Service{
		users:    copied,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// Login проверяет пару логин/пароль и выдаёт новый токен.
func (s *Service) Login(username, password string) (Session, error) {
	expected, ok := s.users[username]
	if !ok || subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		s.logger.WithField("username", username).Warn("login rejected")
		return Session{}, domain.ErrInvalidCredentials
	}

	now := s.now()
	session := Session{
		Token:     uuid.NewString(),
		Username:  username,
		ExpiresAt: now.Add(s.ttl).UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session

	s.logger.WithField("username", username).Info("session issued")
	return session, nil
}

// Authenticate возвращает сессию по токену или domain.ErrUnauthenticated.
func (s *Service) Authenticate(token string) (Session, error) {
	if token == "" {
		return Session{}, domain.ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return Session{}, domain.ErrUnauthenticated
	}
	if !s.now().Before(session.ExpiresAt) {
		delete(s.sessions, token)
		return Session{}, domain.ErrUnauthenticated
	}
	return session, nil
}

// Revoke удаляет токен.
func (s *Service) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// DeleteExpired удаляет не больше limit сессий, истёкших к моменту before.
// Вызывается CleanupWorker.
func (s *Service) DeleteExpired(before time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for token, session := range s.sessions {
		if limit > 0 && deleted >= limit {
			break
		}
		if !before.Before(session.ExpiresAt) {
			delete(s.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}
