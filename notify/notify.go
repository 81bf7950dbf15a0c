// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/suppersafe/server/metrics"
	"github.com/suppersafe/server/models"
	"github.com/suppersafe/server/push"
)

// AlertTitle is the title of every inspection push message
const AlertTitle = "Restaurant Inspection Alert"

// Store is the data the fan-out reads and the claims it writes
type Store interface {
	InspectionsBetween(ctx context.Context, since, until string) ([]models.InspectionRecord, error)
	SavedByEstablishments(ctx context.Context, establishmentIDs []string) ([]models.SavedRestaurant, error)
	PushTokensForUsers(ctx context.Context, userIDs []string) ([]models.PushToken, error)
	ClaimNotifications(ctx context.Context, logs []models.NotificationLog) ([]bool, error)
}

// Service alerts users when a restaurant they saved is re-inspected
type Service struct {
	store  Store
	pusher push.Pusher
}

func NewService(store Store, pusher push.Pusher) *Service {
	return &Service{store: store, pusher: pusher}
}

// Run performs one fan-out pass over inspections dated yesterday or today
// (UTC). Every (user, establishment, inspection date) is claimed in one
// batch before messages are queued, so overlapping runs never alert twice.
// Claims are kept even when delivery fails. Store errors abort the run
// without leaving claims behind.
func (s *Service) Run(ctx context.Context, now time.Time) (models.AlertRunSummary, error) {
	summary, err := s.run(ctx, now)
	switch {
	case err != nil:
		metrics.AlertRuns.WithLabelValues("error").Inc()
	case summary.PushError != "":
		metrics.AlertRuns.WithLabelValues("push_failed").Inc()
	default:
		metrics.AlertRuns.WithLabelValues("ok").Inc()
	}
	return summary, err
}

func (s *Service) run(ctx context.Context, now time.Time) (models.AlertRunSummary, error) {
	now = now.UTC()
	since := now.AddDate(0, 0, -1).Format(time.DateOnly)
	until := now.Format(time.DateOnly)
	slog.Info("checking for recent inspections", "since", since, "until", until)

	rows, err := s.store.InspectionsBetween(ctx, since, until)
	if err != nil {
		return models.AlertRunSummary{}, fmt.Errorf("fetch inspections: %w", err)
	}
	if len(rows) == 0 {
		return done("No recent inspections"), nil
	}

	// Rows are newest first; keep the first per establishment
	latest := make(map[string]models.InspectionRecord)
	var establishmentIDs []string
	for _, row := range rows {
		if _, ok := latest[row.EstablishmentID]; ok {
			continue
		}
		latest[row.EstablishmentID] = row
		establishmentIDs = append(establishmentIDs, row.EstablishmentID)
	}
	slog.Info("found establishments with recent inspections", "count", len(establishmentIDs))

	saved, err := s.store.SavedByEstablishments(ctx, establishmentIDs)
	if err != nil {
		return models.AlertRunSummary{}, fmt.Errorf("fetch saved restaurants: %w", err)
	}
	if len(saved) == 0 {
		return done("No matching saved restaurants"), nil
	}

	seenUser := make(map[string]bool)
	var userIDs []string
	for _, sr := range saved {
		if !seenUser[sr.UserID] {
			seenUser[sr.UserID] = true
			userIDs = append(userIDs, sr.UserID)
		}
	}

	tokens, err := s.store.PushTokensForUsers(ctx, userIDs)
	if err != nil {
		return models.AlertRunSummary{}, fmt.Errorf("fetch push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return done("No push tokens"), nil
	}

	userTokens := make(map[string][]string)
	for _, pt := range tokens {
		userTokens[pt.UserID] = append(userTokens[pt.UserID], pt.Token)
	}

	var (
		pending []models.SavedRestaurant
		logs    []models.NotificationLog
	)
	for _, sr := range saved {
		if len(userTokens[sr.UserID]) == 0 {
			continue
		}
		insp, ok := latest[sr.EstablishmentID]
		if !ok {
			continue
		}
		pending = append(pending, sr)
		logs = append(logs, models.NotificationLog{
			UserID:          sr.UserID,
			EstablishmentID: sr.EstablishmentID,
			InspectionDate:  insp.InspectionDate,
		})
	}

	claimed, err := s.store.ClaimNotifications(ctx, logs)
	if err != nil {
		return models.AlertRunSummary{}, fmt.Errorf("claim notifications: %w", err)
	}

	var (
		messages []push.Message
		skipped  int
		notified = make(map[string]bool)
	)
	for i, sr := range pending {
		if !claimed[i] {
			slog.Info("already notified", "user_id", sr.UserID, "establishment", sr.EstablishmentName)
			skipped++
			continue
		}

		insp := latest[sr.EstablishmentID]
		body := MessageBody(sr.EstablishmentName, insp.EstablishmentStatus, insp.Severity)
		for _, tok := range userTokens[sr.UserID] {
			messages = append(messages, push.Message{
				To:    tok,
				Title: AlertTitle,
				Body:  body,
				Data: map[string]string{
					"establishmentId":   sr.EstablishmentID,
					"establishmentName": sr.EstablishmentName,
				},
				Sound: "default",
			})
		}
		notified[sr.UserID] = true
	}

	if len(messages) == 0 {
		summary := done("No new notifications")
		summary.SkippedAlreadyNotified = skipped
		return summary, nil
	}

	slog.Info("sending notifications", "count", len(messages))
	summary := models.AlertRunSummary{
		Success:                true,
		Message:                "Notifications sent",
		NotificationsSent:      len(messages),
		UsersNotified:          len(notified),
		SkippedAlreadyNotified: skipped,
	}

	result, err := s.pusher.Send(ctx, messages)
	if err != nil {
		slog.Error("push delivery failed", "error", err, "messages", len(messages))
		metrics.PushMessages.WithLabelValues("failed").Add(float64(len(messages)))
		summary.Success = false
		summary.Message = "Push delivery failed"
		summary.PushError = err.Error()
		return summary, nil
	}

	metrics.PushMessages.WithLabelValues("sent").Add(float64(len(messages)))
	slog.Info("push API response", "result", result)
	summary.PushResult = result
	return summary, nil
}

func done(msg string) models.AlertRunSummary {
	slog.Info(msg)
	return models.AlertRunSummary{Success: true, Message: msg}
}

// MessageBody words the alert for an inspection's status. severity is the
// first feed row's code; blank or N codes mean no violations.
func MessageBody(name, status, severity string) string {
	sev := strings.TrimSpace(severity)
	hasViolations := sev != "" && !strings.HasPrefix(strings.ToUpper(sev), "N")

	switch {
	case status == models.StatusPass && !hasViolations:
		return fmt.Sprintf("Great news! %s passed inspection with no violations.", name)
	case status == models.StatusPass:
		return fmt.Sprintf("%s passed inspection. Tap to see details.", name)
	case status == models.StatusConditionalPass:
		return fmt.Sprintf("%s received a conditional pass. Tap to see why.", name)
	case status == models.StatusClosed:
		return fmt.Sprintf("Alert: %s has been closed. Tap for details.", name)
	default:
		return fmt.Sprintf("%s was just inspected.", name)
	}
}

// Loop runs the fan-out every interval until ctx is cancelled. Failed
// runs are logged and retried on the next tick.
func (s *Service) Loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			summary, err := s.Run(ctx, now)
			if err != nil {
				slog.Error("scheduled alert run failed", "error", err)
				continue
			}
			slog.Info("scheduled alert run complete",
				"message", summary.Message,
				"notifications_sent", summary.NotificationsSent,
				"users_notified", summary.UsersNotified)
		}
	}
}
