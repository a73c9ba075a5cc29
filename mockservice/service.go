package mockservice

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/commeator/api-test-harness/framework"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Service implements the Commeator endpoints used by the suite, with users kept in memory.
type Service struct {
	tokens       tokenIssuer
	users        map[uuid.UUID]UserInfo
	healthStatus int
	handler      http.Handler
	debugLogger  framework.Logger
	lock         sync.RWMutex
}

// NewService creates a Service that signs tokens with secret. If debugLogger is nil, nothing is
// logged.
func NewService(secret []byte, debugLogger framework.Logger) *Service {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	s := &Service{
		tokens:       tokenIssuer{secret: secret, lifetime: DefaultTokenLifetime, now: time.Now},
		users:        make(map[uuid.UUID]UserInfo),
		healthStatus: http.StatusOK,
		debugLogger:  debugLogger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.serveHealth).Methods("GET", "HEAD")
	router.HandleFunc("/debug/user", s.serveDebugUser).Methods("POST")
	router.HandleFunc("/jwt/verify", s.serveVerify).Methods("GET")
	router.HandleFunc("/users/me", s.serveMe).Methods("GET")
	s.handler = router

	return s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.debugLogger.Printf("Received %s %s", r.Method, r.URL.Path)
	s.handler.ServeHTTP(w, r)
}

// SetHealthStatus changes the status that /health responds with.
func (s *Service) SetHealthStatus(status int) {
	s.lock.Lock()
	s.healthStatus = status
	s.lock.Unlock()
}

// SetClock replaces the time source used to issue and check tokens.
func (s *Service) SetClock(now func() time.Time) {
	s.lock.Lock()
	s.tokens.now = now
	s.lock.Unlock()
}

// AddUser stores a user and returns a token for it.
func (s *Service) AddUser(u NewUser) (UserInfo, string, error) {
	info := u.toUserInfo(uuid.New())
	s.lock.Lock()
	defer s.lock.Unlock()
	token, err := s.tokens.issue(info.UUID)
	if err != nil {
		return UserInfo{}, "", err
	}
	s.users[info.UUID] = info
	return info, token, nil
}

// Users returns the stored users, in no particular order.
func (s *Service) Users() []UserInfo {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ret := make([]UserInfo, 0, len(s.users))
	for _, u := range s.users {
		ret = append(ret, u)
	}
	return ret
}

func (s *Service) authenticate(r *http.Request) (UserInfo, error) {
	token, err := bearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return UserInfo{}, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	id, err := s.tokens.verify(token)
	if err != nil {
		return UserInfo{}, err
	}
	user, ok := s.users[id]
	if !ok {
		return UserInfo{}, errUserNotFound
	}
	return user, nil
}

func (s *Service) serveHealth(w http.ResponseWriter, r *http.Request) {
	s.lock.RLock()
	status := s.healthStatus
	s.lock.RUnlock()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(http.StatusText(status)))
}

func (s *Service) serveDebugUser(w http.ResponseWriter, r *http.Request) {
	var body NewUser
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.debugLogger.Printf("Invalid user body: %s", err)
		writeError(w, http.StatusBadRequest)
		return
	}
	if body.Username == "" {
		writeError(w, http.StatusUnprocessableEntity)
		return
	}
	user, token, err := s.AddUser(body)
	if err != nil {
		s.debugLogger.Printf("Failed to generate JWT: %s", err)
		writeError(w, http.StatusInternalServerError)
		return
	}
	s.debugLogger.Printf("Created user %s (%s)", user.UUID, user.Username)
	writeJSON(w, token)
}

func (s *Service) serveVerify(w http.ResponseWriter, r *http.Request) {
	_, err := s.authenticate(r)
	if err != nil {
		s.debugLogger.Printf("JWT rejected: %s", err)
	}
	writeJSON(w, err == nil)
}

func (s *Service) serveMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.authenticate(r)
	if err != nil {
		s.debugLogger.Printf("Auth error: %s", err)
		writeError(w, http.StatusUnauthorized)
		return
	}
	writeJSON(w, user)
}

func writeJSON(w http.ResponseWriter, value interface{}) {
	data, _ := json.Marshal(value)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(http.StatusText(status)))
}
