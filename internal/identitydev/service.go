// Package identitydev is a small in-memory identity service used for
// local development and tests of the credential gateway. It implements
// the same boundary the real provider does: create account, authenticate,
// end session.
package identitydev

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/bkral/blogsync/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type account struct {
	ID           string
	Email        string
	PasswordHash string
}

type Service struct {
	mutex    sync.Mutex
	accounts map[string]*account // email -> account
	sessions map[string]string   // session token -> user id
}

func NewService() *Service {
	return &Service{
		accounts: make(map[string]*account),
		sessions: make(map[string]string),
	}
}

func (s *Service) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/register", s.handleRegister).Methods("POST").Name("register")
	router.HandleFunc("/login", s.handleLogin).Methods("POST").Name("login")
	router.HandleFunc("/logout", s.handleLogout).Methods("POST").Name("logout")
}

// NewHandler returns a ready-to-serve handler for the dev identity service.
func NewHandler() http.Handler {
	router := mux.NewRouter()
	NewService().SetupRoutes(router)
	return router
}

type credentialsRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

type sessionResponse struct {
	UserID       string `json:"user_id"`
	SessionToken string `json:"session_token"`
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.accounts[creds.Email]; exists {
		writeError(w, http.StatusConflict, "account already exists")
		return
	}

	passwordHash, err := pkg.HashPassword(creds.Secret)
	if err != nil {
		log.Errorf("identitydev: hash password: %s", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	acc := &account{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: passwordHash,
	}
	s.accounts[creds.Email] = acc

	s.startSession(w, acc, http.StatusCreated)
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	acc, exists := s.accounts[creds.Email]
	if !exists || !pkg.CheckPasswordHash(creds.Secret, acc.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "wrong email or password")
		return
	}

	s.startSession(w, acc, http.StatusOK)
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.sessions[token]; !exists {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}

	delete(s.sessions, token)
	w.WriteHeader(http.StatusNoContent)
}

// caller must hold s.mutex
func (s *Service) startSession(w http.ResponseWriter, acc *account, statusCode int) {
	token, err := pkg.GenerateRandomString(35)
	if err != nil {
		log.Errorf("identitydev: generate session token: %s", err)
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	s.sessions[token] = acc.ID

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(sessionResponse{
		UserID:       acc.ID,
		SessionToken: token,
	}); err != nil {
		log.Errorf("identitydev: write session response: %s", err)
	}
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var creds credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return creds, false
	}
	if creds.Email == "" || creds.Secret == "" {
		writeError(w, http.StatusBadRequest, "email and secret required")
		return creds, false
	}
	return creds, true
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		log.Errorf("identitydev: write error response: %s", err)
	}
}
