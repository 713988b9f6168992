package config

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	Port      string
	Slack     SlackConfig
	Turso     TursoConfig
	ProjectID string
	Rotation  RotationConfig
}

type SlackConfig struct {
	Token     string
	ChannelID string
	// SigningSecret verifies slash command requests. Verification is off when empty.
	SigningSecret string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// RotationConfig holds the defaults applied to new sessions.
type RotationConfig struct {
	DefaultCourts int
	QueueTarget   int
	// Seed makes the engine deterministic when HasSeed is set.
	Seed    int64
	HasSeed bool
}

// SlackEnabled reports whether notifications can be posted.
func (c Config) SlackEnabled() bool {
	return c.Slack.Token != "" && c.Slack.ChannelID != ""
}

// PubSubEnabled reports whether events should be published.
func (c Config) PubSubEnabled() bool {
	return c.ProjectID != ""
}
