// Package httpapi binds the credential-lifecycle operations to their public
// HTTP surface.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/ivanpetrenko/authgate/internal/common"
	"github.com/ivanpetrenko/authgate/internal/logging"
	"github.com/ivanpetrenko/authgate/internal/server/models"
	"github.com/ivanpetrenko/authgate/internal/server/services"
)

// Server holds the handler set for the HTTP surface.
type Server struct {
	coordinator  *services.Coordinator
	verification *services.VerificationService
	reset        *services.ResetService
	logger       logging.Logger
}

// NewServer constructs the handler set over the service layer.
func NewServer(c *services.Coordinator, v *services.VerificationService, r *services.ResetService, logger logging.Logger) *Server {
	return &Server{coordinator: c, verification: v, reset: r, logger: logger}
}

type tokenResponse struct {
	ID        string     `json:"id,omitempty"`
	Scheme    string     `json:"scheme"`
	UserID    string     `json:"userId,omitempty"`
	Username  string     `json:"username,omitempty"`
	AccountID string     `json:"accountId"`
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func tokenBody(token models.AuthToken) tokenResponse {
	resp := tokenResponse{
		Scheme:    token.Scheme(),
		AccountID: token.Grant().AccountID,
		Role:      token.Grant().Role,
	}
	if ref, ok := token.(*models.RefToken); ok {
		resp.ID = ref.ID
		resp.UserID = ref.UserID
		resp.Username = ref.Username
		exp := ref.ExpiresAt
		resp.ExpiresAt = &exp
	}
	return resp
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		v := &common.ValidationError{}
		v.Add("body", "malformed JSON")
		writeError(w, v)
		return false
	}
	return true
}

func (s *Server) checkUsername(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	available, err := s.coordinator.CheckUsername(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (s *Server) checkUserRefToken(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	token, err := s.coordinator.Authenticate(r.Context(), models.SchemeRefToken, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenBody(token))
}

func (s *Server) createAnonymous(w http.ResponseWriter, r *http.Request) {
	token, err := s.coordinator.CreateAnonymousUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenBody(token))
}

type registerBody struct {
	UserID    string         `json:"userId"`
	Username  string         `json:"username"`
	Password  string         `json:"password"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      string         `json:"role"`
	Extra     map[string]any `json:"extra"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if !decodeBody(w, r, &body) {
		return
	}

	token, err := s.coordinator.Register(r.Context(), &services.RegisterRequest{
		UserID:    body.UserID,
		Username:  body.Username,
		Password:  body.Password,
		Email:     body.Email,
		Phone:     body.Phone,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Role:      body.Role,
		Extra:     body.Extra,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenBody(token))
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decodeBody(w, r, &body) {
		return
	}

	token, err := s.coordinator.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenBody(token))
}

type forgotPasswordBody struct {
	Username string `json:"username"`
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var body forgotPasswordBody
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.reset.ForgotPassword(r.Context(), body.Username); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordBody struct {
	Username  string `json:"username"`
	ResetCode string `json:"resetCode"`
	Password  string `json:"password"`
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var body resetPasswordBody
	if !decodeBody(w, r, &body) {
		return
	}

	token, err := s.reset.ResetPassword(r.Context(), body.Username, body.ResetCode, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenBody(token))
}

type forgotUsernameBody struct {
	Contact string `json:"contact"`
}

func (s *Server) forgotUsername(w http.ResponseWriter, r *http.Request) {
	var body forgotUsernameBody
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.coordinator.ForgotUsername(r.Context(), body.Contact); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sendVerifyCode derives the target contact from the caller's own identity:
// the Authorization header must carry a valid reference token whose user has
// the channel's contact on file.
func (s *Server) sendVerifyCode(channel models.ContactChannel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := s.authenticateRequest(r)
		if err != nil {
			writeError(w, err)
			return
		}

		if err := s.verification.SendVerifyCodeToUser(r.Context(), caller.UserID, channel); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type verifyBody struct {
	UserID    string `json:"userId"`
	EmailCode int    `json:"email"`
	PhoneCode int    `json:"phone"`
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var body verifyBody
	if !decodeBody(w, r, &body) {
		return
	}

	err := s.verification.Verify(r.Context(), &services.VerifyRequest{
		UserID:    body.UserID,
		EmailCode: body.EmailCode,
		PhoneCode: body.PhoneCode,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authenticateRequest resolves the Authorization header, formatted as
// "<scheme> <value>" (e.g. "RefToken ab12..."), into a reference token.
func (s *Server) authenticateRequest(r *http.Request) (*models.RefToken, error) {
	scheme, value, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || value == "" {
		return nil, common.ErrorUnauthorized
	}

	token, err := s.coordinator.Authenticate(r.Context(), scheme, strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	ref, ok := token.(*models.RefToken)
	if !ok {
		return nil, fmt.Errorf("credential does not name a user: %w", common.ErrorUnauthorized)
	}
	return ref, nil
}
