package notifier

import (
	"github.com/mauv0809/court-rotation/internal/rotation"
)

// Notifier defines a high-level interface for sending notifications about session events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// After a new round or any change to who is on court
	SendCourtAssignments(s rotation.Session, dryRun bool) error
	// After a court is freed and refilled
	SendMatchCompleted(s rotation.Session, finished rotation.Match, dryRun bool) error
	SendPlayerLeft(s rotation.Session, playerID string, dryRun bool) error

	// For formatting responses for slash commands
	FormatCourtsResponse(s rotation.Session) (any, error)
	FormatLeaderboardResponse(s rotation.Session) (any, error)
}
