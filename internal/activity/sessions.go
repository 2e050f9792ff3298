package activity

import (
	"sort"
	"time"

	"backend/internal/storage"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterOpened    Filter = "opened"
	FilterNotOpened Filter = "not_opened"
)

// Session is a per-proposal view derived from raw activity events. It is
// recomputed on every query, never stored.
type Session struct {
	Slug            string                   `json:"slug"`
	ClientName      string                   `json:"client_name"`
	ClientEmail     string                   `json:"client_email"`
	Activities      []*storage.ActivityEvent `json:"activities"`
	LastActivity    time.Time                `json:"last_activity"`
	HasOpened       bool                     `json:"has_opened"`
	SessionDuration string                   `json:"session_duration,omitempty"`
}

// ReconstructSessions folds a snapshot of events into one session per
// distinct slug, ordered by last activity descending. The fold is pure:
// the same snapshot always yields the same sessions.
func ReconstructSessions(events []*storage.ActivityEvent) []*Session {
	bySlug := make(map[string]*Session)
	var order []string

	durationSeen := make(map[string]time.Time)

	for _, event := range events {
		session, ok := bySlug[event.Slug]
		if !ok {
			session = &Session{
				Slug:         event.Slug,
				ClientName:   event.Slug,
				LastActivity: event.CreatedAt,
			}
			bySlug[event.Slug] = session
			order = append(order, event.Slug)
		}

		session.Activities = append(session.Activities, event)

		if event.CreatedAt.After(session.LastActivity) {
			session.LastActivity = event.CreatedAt
		}

		if event.Action == storage.OpenedProposalAction || event.Action == storage.OTPVerifiedAction {
			session.HasOpened = true
		}

		if event.Action == storage.SessionEndedAction && event.Details.Duration != "" {
			if last, ok := durationSeen[event.Slug]; !ok || event.CreatedAt.After(last) {
				session.SessionDuration = event.Details.Duration
				durationSeen[event.Slug] = event.CreatedAt
			}
		}

		if name := event.Details.ClientName; name != "" && name != event.Slug {
			session.ClientName = name
		}

		if session.ClientEmail == "" {
			if event.ClientEmail != nil && *event.ClientEmail != "" {
				session.ClientEmail = *event.ClientEmail
			} else if event.Details.Email != "" {
				session.ClientEmail = event.Details.Email
			}
		}
	}

	sessions := make([]*Session, 0, len(order))
	for _, slug := range order {
		session := bySlug[slug]
		if session.ClientName == session.Slug && session.ClientEmail != "" {
			session.ClientName = session.ClientEmail
		}
		sessions = append(sessions, session)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastActivity.After(sessions[j].LastActivity)
	})

	return sessions
}

// FilterSessions narrows sessions to those matching the opened filter.
func FilterSessions(sessions []*Session, filter Filter) []*Session {
	if filter == FilterAll || filter == "" {
		return sessions
	}

	filtered := make([]*Session, 0, len(sessions))
	for _, session := range sessions {
		switch {
		case filter == FilterOpened && session.HasOpened:
			filtered = append(filtered, session)
		case filter == FilterNotOpened && !session.HasOpened:
			filtered = append(filtered, session)
		}
	}

	return filtered
}
