package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/court-rotation/internal/metrics"
	"github.com/mauv0809/court-rotation/internal/notifier"
	"github.com/mauv0809/court-rotation/internal/rotation"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       slack.New(token),
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendCourtAssignments(session rotation.Session, dryRun bool) error {
	_, _, err := s.sendMessage(formatCourtAssignments(session), dryRun)
	return err
}

func (s *Notifier) SendMatchCompleted(session rotation.Session, finished rotation.Match, dryRun bool) error {
	_, _, err := s.sendMessage(formatMatchCompleted(session, finished), dryRun)
	return err
}

func (s *Notifier) SendPlayerLeft(session rotation.Session, playerID string, dryRun bool) error {
	_, _, err := s.sendMessage(formatPlayerLeft(session, playerID), dryRun)
	return err
}

// FormatCourtsResponse formats the current courts for a slash command response.
func (s *Notifier) FormatCourtsResponse(session rotation.Session) (any, error) {
	return formatCourtAssignments(session), nil
}

// FormatLeaderboardResponse formats the games played table for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(session rotation.Session) (any, error) {
	return formatLeaderboard(session), nil
}
