package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"backend/internal/access"
	"backend/internal/activity"
	"backend/internal/logger"
	"backend/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultActivityLimit = 50

// clientSubmittableActions is the closed set of action kinds the public
// ingestion endpoint accepts. Operator-originated kinds (proposal_created,
// proposal_deactivated) and the gate's own audit kinds can only be emitted
// server-side, so clients cannot fabricate them.
var clientSubmittableActions = map[string]bool{
	storage.OpenedProposalAction: true,
	storage.SessionEndedAction:   true,
	storage.ChangedEventsAction:  true,
	storage.ChangedTicketsAction: true,
	storage.ChangedPriceAction:   true,
}

type Server struct {
	gate       *access.Gate
	operators  *access.OperatorGate
	proposals  storage.ProposalRepository
	activities storage.ActivityStore
}

func New(gate *access.Gate, operators *access.OperatorGate, proposals storage.ProposalRepository, activities storage.ActivityStore) *Server {
	return &Server{
		gate:       gate,
		operators:  operators,
		proposals:  proposals,
		activities: activities,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/send-otp", s.handleSendOTP)
	r.Post("/api/verify", s.handleVerify)
	r.Post("/api/activity", s.handlePostActivity)

	r.Post("/api/admin/send-otp", s.handleOperatorSendOTP)
	r.Post("/api/admin/verify", s.handleOperatorVerify)

	r.Group(func(r chi.Router) {
		r.Use(s.requireOperator)
		r.Get("/api/activity", s.handleGetActivity)
		r.Get("/api/activity/sessions", s.handleGetSessions)
		r.Get("/api/links", s.handleListProposals)
		r.Post("/api/links", s.handleCreateProposal)
		r.Delete("/api/links", s.handleDeactivateProposal)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func remoteIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func (s *Server) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.operators.Authenticate(r.Header.Get("Authorization")); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Slug  string `json:"slug"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Slug == "" || body.Email == "" {
		writeError(w, http.StatusBadRequest, "slug and email are required")
		return
	}

	if err := s.gate.RequestAccess(r.Context(), body.Slug, body.Email); err != nil {
		s.writeGateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Slug  string `json:"slug"`
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Slug == "" || body.Email == "" || body.Code == "" {
		writeError(w, http.StatusBadRequest, "slug, email and code are required")
		return
	}

	clientName, config, err := s.gate.VerifyAccess(r.Context(), body.Slug, body.Email, body.Code, remoteIP(r))
	if err != nil {
		s.writeGateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"client_name": clientName,
		"config":      config,
	})
}

func (s *Server) writeGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrNotFound):
		writeError(w, http.StatusNotFound, "Proposal not found")
	case errors.Is(err, access.ErrDeactivated):
		writeError(w, http.StatusForbidden, "This proposal has been deactivated")
	case errors.Is(err, access.ErrEmailMismatch):
		writeError(w, http.StatusUnauthorized, "This email is not authorized for this proposal")
	case errors.Is(err, access.ErrInvalidCode):
		writeError(w, http.StatusUnauthorized, "Invalid or expired verification code")
	case errors.Is(err, access.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "Unauthorized")
	default:
		logger.Error("gate error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

func (s *Server) handlePostActivity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Slug        string          `json:"slug"`
		Action      string          `json:"action"`
		Details     storage.Details `json:"details"`
		ClientEmail string          `json:"client_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Slug == "" || body.Action == "" {
		writeError(w, http.StatusBadRequest, "slug and action are required")
		return
	}

	if !clientSubmittableActions[body.Action] {
		writeError(w, http.StatusForbidden, "action not accepted from clients")
		return
	}

	activity.Log(s.activities, body.Slug, body.Action, body.Details, body.ClientEmail)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) activitySnapshot(r *http.Request, defaultLimit int) ([]*storage.ActivityEvent, error) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return s.activities.QueryActivity(r.URL.Query().Get("slug"), limit)
}

func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	events, err := s.activitySnapshot(r, defaultActivityLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetSessions(w http.ResponseWriter, r *http.Request) {
	// analytics view folds a larger snapshot than the raw feed
	events, err := s.activitySnapshot(r, 500)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sessions := activity.ReconstructSessions(events)
	sessions = activity.FilterSessions(sessions, activity.Filter(r.URL.Query().Get("filter")))
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := s.proposals.ListProposals()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, proposals)
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientName  string                   `json:"client_name"`
		ClientEmail string                   `json:"client_email"`
		Config      storage.CalculatorConfig `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ClientName == "" || body.ClientEmail == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if body.Config.Events <= 0 || body.Config.TicketsPerEvent <= 0 || body.Config.AvgTicketPrice <= 0 {
		writeError(w, http.StatusBadRequest, "Config values must be positive")
		return
	}

	proposal, err := s.proposals.CreateProposal(body.ClientName, body.ClientEmail, body.Config)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	activity.Log(s.activities, proposal.Slug, storage.ProposalCreatedAction,
		storage.Details{ClientName: proposal.ClientName, Email: proposal.ClientEmail}, "")

	writeJSON(w, http.StatusCreated, proposal)
}

func (s *Server) handleDeactivateProposal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing id")
		return
	}

	// resolve the slug first so the deactivation shows up in the
	// proposal's activity timeline
	var slug string
	if proposals, err := s.proposals.ListProposals(); err == nil {
		for _, proposal := range proposals {
			if proposal.ID == id {
				slug = proposal.Slug
				break
			}
		}
	}

	if err := s.proposals.DeactivateProposal(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if slug != "" {
		activity.Log(s.activities, slug, storage.ProposalDeactivatedAction, storage.Details{}, "")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleOperatorSendOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := s.operators.RequestCode(r.Context(), body.Email); err != nil {
		if errors.Is(err, access.ErrNotAuthorized) {
			writeError(w, http.StatusForbidden, "This email is not authorized for admin access")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to send verification code")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleOperatorVerify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.OTP == "" {
		writeError(w, http.StatusBadRequest, "Email and verification code are required")
		return
	}

	credential, email, err := s.operators.Verify(r.Context(), body.Email, body.OTP, remoteIP(r))
	if err != nil {
		if errors.Is(err, access.ErrNotAuthorized) {
			writeError(w, http.StatusForbidden, "Unauthorized")
			return
		}
		writeError(w, http.StatusUnauthorized, "Invalid or expired verification code")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"email":   email,
		"token":   credential,
	})
}
