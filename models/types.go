// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Establishment status constants
const (
	StatusPass            = "Pass"
	StatusConditionalPass = "Conditional Pass"
	StatusClosed          = "Closed"
)

// Severity tiers
const (
	SeverityCrucial     = "crucial"
	SeveritySignificant = "significant"
	SeverityMinor       = "minor"
)

// Push platform constants
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// Share platform constants
const (
	ShareTwitter  = "twitter"
	ShareWhatsApp = "whatsapp"
	ShareCopy     = "copy"
)

// Domain types

// InspectionRecord is one row of the DineSafe feed: a single
// (establishment, inspection, infraction) triple.
type InspectionRecord struct {
	EstablishmentID      string `db:"establishment_id" json:"establishment_id"`
	EstablishmentName    string `db:"establishment_name" json:"establishment_name"`
	EstablishmentAddress string `db:"establishment_address" json:"establishment_address"`
	InspectionID         string `db:"inspection_id" json:"inspection_id"`
	InspectionDate       string `db:"inspection_date" json:"inspection_date"` // YYYY-MM-DD
	EstablishmentStatus  string `db:"establishment_status" json:"establishment_status"`
	Severity             string `db:"severity" json:"severity"`
	InfractionDetails    string `db:"infraction_details" json:"infraction_details"`
}

type Infraction struct {
	Severity string `json:"severity"`
	Details  string `json:"details"`
}

// Inspection groups the rows of one inspector visit.
type Inspection struct {
	ID          string       `json:"id"`
	Date        string       `json:"date"`
	Status      string       `json:"status"`
	Infractions []Infraction `json:"infractions"`
}

// Finding is an infraction translated into plain language.
type Finding struct {
	Text     string `json:"text"`
	Severity string `json:"severity"`
	Icon     string `json:"icon"`
}

type EstablishmentSummary struct {
	ID      string `db:"establishment_id" json:"establishment_id"`
	Name    string `db:"establishment_name" json:"establishment_name"`
	Address string `db:"establishment_address" json:"establishment_address"`
}

type Report struct {
	EstablishmentID string       `json:"establishment_id"`
	Name            string       `json:"name"`
	Address         string       `json:"address"`
	Status          string       `json:"status"`
	LatestDate      string       `json:"latest_date,omitempty"`
	Crucial         int          `json:"crucial"`
	Significant     int          `json:"significant"`
	Minor           int          `json:"minor"`
	Total           int          `json:"total"`
	SafetyScore     int          `json:"safety_score"`
	Label           string       `json:"label"`
	Color           string       `json:"color"`
	Class           string       `json:"class"`
	Percentile      int          `json:"percentile"`
	Findings        []Finding    `json:"findings"`
	RawFindings     []Infraction `json:"-"` // latest inspection, untranslated
	Inspections     []Inspection `json:"inspections"`
}

type SavedRestaurant struct {
	UserID               string  `db:"user_id" json:"-"`
	EstablishmentID      string  `db:"establishment_id" json:"establishment_id"`
	EstablishmentName    string  `db:"establishment_name" json:"establishment_name"`
	EstablishmentAddress string  `db:"establishment_address" json:"establishment_address"`
	LastInspectionDate   *string `db:"last_inspection_date" json:"last_inspection_date,omitempty"`
	LastScore            *int    `db:"last_score" json:"last_score,omitempty"`
}

type PushToken struct {
	UserID   string `db:"user_id" json:"user_id"`
	Token    string `db:"token" json:"token"`
	Platform string `db:"platform" json:"platform"`
}

// NotificationLog marks a (user, establishment, inspection date) triple
// as already notified.
type NotificationLog struct {
	UserID          string `db:"user_id"`
	EstablishmentID string `db:"establishment_id"`
	InspectionDate  string `db:"inspection_date"`
}

type WaitlistEntry struct {
	Email         string  `db:"email" json:"email"`
	ReferralCode  string  `db:"referral_code" json:"referral_code"`
	QueuePosition int     `db:"queue_position" json:"queue_position"`
	ReferredBy    *string `db:"referred_by" json:"referred_by,omitempty"`
	ReferralCount int     `db:"referral_count" json:"referral_count"`
}

type TickerItem struct {
	Name           string `json:"name"`
	Status         string `json:"status"` // "Pass" or "Fail"
	InspectionDate string `json:"inspection_date"`
	Age            string `json:"age"`
}

// Request types

type WaitlistSignupRequest struct {
	Email          string `json:"email"`
	TurnstileToken string `json:"turnstileToken"`
	ReferredBy     string `json:"referredBy"`
}

type WaitlistLookupRequest struct {
	Email string `json:"email"`
}

type ClientError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

type ErrorAlertRequest struct {
	Error     *ClientError `json:"error"`
	Context   string       `json:"context"`
	URL       string       `json:"url"`
	UserAgent string       `json:"userAgent"`
	Timestamp string       `json:"timestamp"`
}

type ShareRequest struct {
	Platform string `json:"platform"`
}

type SaveRestaurantRequest struct {
	EstablishmentID      string  `json:"establishment_id"`
	EstablishmentName    string  `json:"establishment_name"`
	EstablishmentAddress string  `json:"establishment_address"`
	LastInspectionDate   *string `json:"last_inspection_date"`
	LastScore            *int    `json:"last_score"`
}

type RegisterPushTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type ConversionRequest struct {
	ConversionType string `json:"conversion_type"`
}

// Response types

type WaitlistSignupResponse struct {
	Success       bool   `json:"success"`
	Existing      bool   `json:"existing"`
	ReferralCode  string `json:"referral_code"`
	QueuePosition int    `json:"queue_position"`
}

type WaitlistLookupResponse struct {
	ReferralCode  string `json:"referral_code"`
	QueuePosition int    `json:"queue_position"`
}

type SearchResponse struct {
	Results []EstablishmentSummary `json:"results"`
}

type ShareResponse struct {
	Platform string `json:"platform"`
	Message  string `json:"message"`
}

// Count is nil when the store could not be queried; Display then
// carries the "Many" placeholder.
type ViolationStatsResponse struct {
	Count   *int   `json:"count"`
	Display string `json:"display"`
	Since   string `json:"since"`
}

type TickerResponse struct {
	Items []TickerItem `json:"items"`
}

type SavedListResponse struct {
	Saved []SavedRestaurant `json:"saved"`
}

type HeadlineResponse struct {
	SessionID  string `json:"session_id"`
	HeadlineID string `json:"headline_id"`
	Text       string `json:"text"`
}

// AlertRunSummary reports one pass of the inspection alert fan-out.
type AlertRunSummary struct {
	Success                bool   `json:"success"`
	Message                string `json:"message"`
	NotificationsSent      int    `json:"notifications_sent"`
	UsersNotified          int    `json:"users_notified"`
	SkippedAlreadyNotified int    `json:"skipped_already_notified"`
	PushError              string `json:"push_error,omitempty"`
	PushResult             any    `json:"push_result,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
