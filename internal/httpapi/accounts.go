package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/finxray/finxray/internal/store"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=analyst partner"`
}

type settingsRequest struct {
	NotifyHighRisk *bool `json:"notify_high_risk" validate:"required"`
}

// validationMessage flattens validator errors into "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

func accountView(acct store.Account) map[string]any {
	return map[string]any{
		"email":            acct.Email,
		"role":             acct.Role,
		"notify_high_risk": acct.NotifyHighRisk,
		"created_at":       acct.CreatedAt,
		"subscription":     acct.Subscription.Status(),
	}
}

// handleLogin creates the account on first sight. Passwords are required by
// the form but not checked.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	acct, err := s.store.UpsertAccount(r.Context(), req.Email, store.Role(req.Role))
	if err != nil {
		s.logger.Error("upsert account", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	s.logger.Info("login", zap.String("email", acct.Email), zap.String("role", string(acct.Role)))
	writeJSON(w, http.StatusOK, map[string]any{"account": accountView(acct)})
}

func (s *Server) handleSubscription(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.account(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscription": acct.Subscription.Status()})
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.account(w, r)
	if !ok {
		return
	}
	sub := acct.Subscription
	sub.Upgrade()
	if err := s.store.SaveSubscription(r.Context(), acct.Email, sub); err != nil {
		s.logger.Error("save subscription", zap.String("email", acct.Email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to upgrade subscription")
		return
	}
	s.logger.Info("subscription upgraded", zap.String("email", acct.Email))
	writeJSON(w, http.StatusOK, map[string]any{"subscription": sub.Status()})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.account(w, r)
	if !ok {
		return
	}
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if err := s.store.SaveSettings(r.Context(), acct.Email, *req.NotifyHighRisk); err != nil {
		s.logger.Error("save settings", zap.String("email", acct.Email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	acct.NotifyHighRisk = *req.NotifyHighRisk
	writeJSON(w, http.StatusOK, map[string]any{"account": accountView(acct)})
}
