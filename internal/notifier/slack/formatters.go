package slack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mauv0809/court-rotation/internal/rotation"
	"github.com/samber/lo"
	"github.com/slack-go/slack"
)

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject("plain_text", text, true, false)
}

func section(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(plainText(text), nil, nil)
}

// namer resolves player ids to display names, falling back to the id.
type namer map[string]string

func newNamer(s rotation.Session) namer {
	return lo.Associate(s.Players, func(p rotation.Player) (string, string) {
		if p.Name == "" {
			return p.ID, p.ID
		}
		return p.ID, p.Name
	})
}

func (n namer) name(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return id
}

func (n namer) team(t rotation.Team) string {
	return n.name(t[0]) + " & " + n.name(t[1])
}

func (n namer) match(m rotation.Match) string {
	return n.team(m.Team1) + " vs " + n.team(m.Team2)
}

func courtLabel(c rotation.Court) string {
	if c.Name != "" {
		return fmt.Sprintf("Court %d (%s)", c.Number, c.Name)
	}
	return fmt.Sprintf("Court %d", c.Number)
}

// formatCourtAssignments creates the Slack message listing every court, the queue and who is resting.
func formatCourtAssignments(s rotation.Session) slack.Message {
	names := newNamer(s)
	blocks := make([]slack.Block, 0, len(s.Courts)+3)

	title := "🎾 Courts 🎾"
	if s.Round > 0 {
		title = fmt.Sprintf("🎾 Round %d courts 🎾", s.Round)
	}
	blocks = append(blocks, slack.NewHeaderBlock(plainText(title)))

	for _, c := range s.Courts {
		if c.Match == nil {
			blocks = append(blocks, section(courtLabel(c)+": free"))
			continue
		}
		blocks = append(blocks, section(fmt.Sprintf("%s\n%s", courtLabel(c), names.match(*c.Match))))
	}

	if len(s.Queue) > 0 {
		lines := make([]string, 0, len(s.Queue))
		for i, m := range s.Queue {
			line := fmt.Sprintf("%d. %s", i+1, names.match(m))
			if m.Provisional {
				line += " (provisional)"
			}
			lines = append(lines, line)
		}
		blocks = append(blocks, section("Up next:\n"+strings.Join(lines, "\n")))
	}

	resting := lo.FilterMap(s.Players, func(p rotation.Player, _ int) (string, bool) {
		return names.name(p.ID), p.Status == rotation.StatusResting
	})
	if len(resting) > 0 {
		blocks = append(blocks, slack.NewContextBlock("", plainText("Resting: "+strings.Join(resting, ", "))))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatMatchCompleted creates the Slack message for a finished match and who takes over the court.
func formatMatchCompleted(s rotation.Session, finished rotation.Match) slack.Message {
	names := newNamer(s)
	blocks := []slack.Block{
		slack.NewHeaderBlock(plainText("🎾 Match finished! 🎾")),
		section(fmt.Sprintf("Court %d: %s", finished.Court, names.match(finished))),
	}

	next := "Court is free."
	for _, c := range s.Courts {
		if c.Number == finished.Court && c.Match != nil {
			next = "Now playing: " + names.match(*c.Match)
		}
	}
	blocks = append(blocks, section(next))
	return slack.NewBlockMessage(blocks...)
}

func formatPlayerLeft(s rotation.Session, playerID string) slack.Message {
	names := newNamer(s)
	text := fmt.Sprintf("👋 %s has left the session.", names.name(playerID))
	if p := s.Player(playerID); p != nil && p.LeftReason != "" {
		text += " Reason: " + p.LeftReason
	}
	return slack.NewBlockMessage(section(text))
}

// formatLeaderboard lists players by games played, most first.
func formatLeaderboard(s rotation.Session) slack.Message {
	blocks := []slack.Block{slack.NewHeaderBlock(plainText("📊 Games played 📊"))}

	if len(s.Players) == 0 {
		blocks = append(blocks, section("No players in this session yet."))
		return slack.NewBlockMessage(blocks...)
	}

	players := append([]rotation.Player(nil), s.Players...)
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].GamesPlayed != players[j].GamesPlayed {
			return players[i].GamesPlayed > players[j].GamesPlayed
		}
		return players[i].Name < players[j].Name
	})

	names := newNamer(s)
	lines := make([]string, 0, len(players))
	for i, p := range players {
		line := fmt.Sprintf("%d. %s: %d games", i+1, names.name(p.ID), p.GamesPlayed)
		if !p.Active() {
			line += " (away)"
		}
		lines = append(lines, line)
	}
	blocks = append(blocks, section(strings.Join(lines, "\n")))
	return slack.NewBlockMessage(blocks...)
}
