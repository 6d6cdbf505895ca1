package core

import "time"

// ActivityType enumerates the recognized activity categories. Downstream
// consumers switch on these values, so the set is closed: Append rejects
// anything not listed here.
type ActivityType string

const (
	ActivityWalletConnect    ActivityType = "wallet_connect"
	ActivityWalletDisconnect ActivityType = "wallet_disconnect"
	ActivityAuthFailure      ActivityType = "auth_failure"
	ActivityPageView         ActivityType = "page_view"
	ActivityFeatureUse       ActivityType = "feature_use"
	ActivityCardView         ActivityType = "card_view"
	ActivityCardCalculation  ActivityType = "card_calculation"
	ActivityCardRefresh      ActivityType = "card_refresh"
	ActivityError            ActivityType = "error"
)

// Valid reports whether t is one of the recognized activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityWalletConnect, ActivityWalletDisconnect, ActivityAuthFailure,
		ActivityPageView, ActivityFeatureUse, ActivityCardView,
		ActivityCardCalculation, ActivityCardRefresh, ActivityError:
		return true
	}
	return false
}

// ActivityEntry is an immutable audit record. Details is an open attribute
// bag for diagnostic context only; behavior never keys off it.
type ActivityEntry struct {
	ID            string         `json:"id"`
	Type          ActivityType   `json:"activity_type"`
	Timestamp     time.Time      `json:"timestamp"`
	UserID        string         `json:"user_id,omitempty"`
	WalletAddress string         `json:"wallet_address,omitempty"`
	SessionID     string         `json:"session_id,omitempty"`
	TargetID      string         `json:"target_id,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// ActivityFilter narrows an activity query. Zero values mean "no constraint".
// Results are ordered by timestamp descending.
type ActivityFilter struct {
	WalletAddress string
	UserID        string
	Type          ActivityType
	Since         time.Time
	Until         time.Time
	Limit         int
}
