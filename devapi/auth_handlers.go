package devapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
	"github.com/jrsteele09/acservice-dashboard/token"
	"github.com/jrsteele09/acservice-dashboard/users"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SessionPayload is the data of a successful login
type SessionPayload struct {
	User   *users.User `json:"user"`
	Tokens token.Pair  `json:"tokens"`
}

// TokensPayload is the data of a successful refresh
type TokensPayload struct {
	Tokens token.Pair `json:"tokens"`
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		u, err := s.users.GetByEmail(strings.TrimSpace(req.Email))
		if err != nil || !users.CheckPasswordHash(req.Password, u.PasswordHash) {
			// Don't reveal if user exists or not
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		pair, err := s.issuePair(u)
		if err != nil {
			log.Err(err).Msg("devapi: failed to issue tokens")
			writeError(w, http.StatusInternalServerError, "failed to issue tokens")
			return
		}
		writeData(w, http.StatusOK, SessionPayload{User: u, Tokens: pair}, "login successful")
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if _, err := s.users.GetByEmail(req.Email); err == nil {
			writeError(w, http.StatusConflict, "email is already registered")
			return
		}

		hash, err := users.HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		now := NowTimeFunc().UTC()
		u := &users.User{
			Email:          strings.TrimSpace(req.Email),
			Name:           strings.TrimSpace(req.Name),
			Role:           req.Role,
			Phone:          req.Phone,
			Address:        req.Address,
			Specialization: req.Specialization,
			CreatedAt:      now,
			UpdatedAt:      now,
			PasswordHash:   hash,
		}
		if err := s.users.Upsert(u); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create user")
			return
		}
		s.data.addDirectoryEntry(u)

		writeData(w, http.StatusCreated, users.RegisteredProfile{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Role:  u.Role,
		}, "registration successful")
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.refreshCalls.Add(1)
		if d := s.getRefreshDelay(); d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}

		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "refresh_token is required")
			return
		}
		if s.failRefresh.Load() {
			writeError(w, http.StatusUnauthorized, "refresh token rejected")
			return
		}

		userID, next, err := s.refreshes.Rotate(req.RefreshToken)
		if err != nil {
			status := http.StatusInternalServerError
			if dasherrors.Is(err, dasherrors.ErrSessionInvalid) {
				status = http.StatusUnauthorized
			}
			writeError(w, status, "invalid refresh token")
			return
		}
		u, err := s.users.GetByID(userID)
		if err != nil {
			_ = s.refreshes.Revoke(next)
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		access, err := s.createAccessToken(u)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to issue tokens")
			return
		}
		writeData(w, http.StatusOK, TokensPayload{Tokens: token.Pair{AccessToken: access, RefreshToken: next}}, "")
	}
}

// LogoutHandler revokes the refresh token given in the body, if any
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logoutCalls.Add(1)
		if s.failLogout.Load() {
			writeError(w, http.StatusInternalServerError, "logout unavailable")
			return
		}

		var req refreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != "" {
			if err := s.refreshes.Revoke(req.RefreshToken); err != nil {
				log.Err(err).Msg("devapi: failed to revoke refresh token")
			}
		}
		writeData[any](w, http.StatusOK, nil, "logout successful")
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, userFromContext(r.Context()), "")
	}
}

