package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/court-rotation/internal/database"
	"github.com/mauv0809/court-rotation/internal/metrics"
	"github.com/mauv0809/court-rotation/internal/pubsub"
	"github.com/mauv0809/court-rotation/internal/rotation"
	"github.com/mauv0809/court-rotation/internal/session"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	numSessions       = 5
	playersPerSession = 13
	matchesPerSession = 40
)

var firstNames = []string{
	"Anna", "Ben", "Clara", "David", "Emil", "Freja", "Gustav", "Hanna", "Ida",
	"Jonas", "Karla", "Lars", "Maja", "Niels", "Olivia", "Peter", "Sofie",
}

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{"DB_NAME": "rotation.db"}
	for _, key := range []string{"DB_NAME", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting session seeder...")
	cfg := loadConfig()
	ctx := context.Background()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()

	svc := session.NewService(
		session.NewStore(db),
		rotation.New(rotation.WithSeed(time.Now().UnixNano())),
		pubsub.NewNoop(),
		nil,
		metrics.NewService(prometheus.NewRegistry()),
		metrics.NewTallyStore(db),
		session.Defaults{Courts: 2, QueueTarget: rotation.DefaultQueueTarget},
	)

	startTime := time.Now()
	for i := 0; i < numSessions; i++ {
		id, err := seedSession(ctx, svc, i)
		if err != nil {
			log.Fatalf("Failed to seed session %d: %s", i+1, err)
		}
		log.Info("Seeded session", "session", id, "completed", i+1, "total", numSessions)
	}
	log.Info("Successfully seeded all sessions.", "duration", time.Since(startTime))
}

// seedSession plays a session through matchesPerSession completions, with one
// player leaving halfway and a latecomer joining.
func seedSession(ctx context.Context, svc *session.Service, n int) (string, error) {
	req := session.CreateRequest{
		Name:       fmt.Sprintf("Seeded night %d", n+1),
		CourtNames: []string{"Centre", "Court 2"},
	}
	for i := 0; i < playersPerSession; i++ {
		req.Players = append(req.Players, rotation.Player{Name: firstNames[(n+i)%len(firstNames)]})
	}
	s, err := svc.Create(ctx, req)
	if err != nil {
		return "", err
	}
	id := s.ID
	if s, err = svc.StartRound(ctx, id, true); err != nil {
		return id, err
	}

	for step := 0; step < matchesPerSession; step++ {
		switch step {
		case matchesPerSession / 2:
			if s, err = svc.Leave(ctx, id, s.Players[0].ID, "went home", true); err != nil {
				return id, err
			}
		case matchesPerSession / 4:
			if s, err = svc.Join(ctx, id, rotation.Player{Name: "Latecomer"}); err != nil {
				return id, err
			}
		}
		court := step%len(s.Courts) + 1
		if s.Courts[court-1].Match == nil {
			continue
		}
		if s, err = svc.CompleteMatch(ctx, id, court, true); err != nil {
			return id, err
		}
	}
	return id, nil
}
