package rotation

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

const (
	fairnessCoefficient   = 1.0
	weightCoefficient     = 0.8
	repetitionCoefficient = 0.6

	teammateWeightFactor = 0.5
	opponentWeightFactor = 0.3

	teammateRepeatPenalty = 0.5
	opponentRepeatPenalty = 0.3
)

// scoreParts holds the deterministic terms of a matchup score.
type scoreParts struct {
	Fairness    float64
	WeightBonus float64
	Repetition  float64
}

func (p scoreParts) total() float64 {
	return p.Fairness*fairnessCoefficient + p.WeightBonus*weightCoefficient + p.Repetition*repetitionCoefficient
}

// Score rates team1 against team2; higher is better. The result does not
// depend on which team is passed first, apart from the random tiebreak.
func (e *Engine) Score(team1, team2 Team, weights []PreferenceWeight, roster Roster) float64 {
	return scoreMatchup(team1, team2, weights, roster).total() + e.noise()
}

func scoreMatchup(team1, team2 Team, weights []PreferenceWeight, roster Roster) scoreParts {
	ids := []string{team1[0], team1[1], team2[0], team2[1]}

	games := make([]float64, 0, len(ids))
	for _, id := range ids {
		games = append(games, float64(roster.gamesPlayed(id)))
	}

	var teammateStrength, opponentStrength int
	for _, w := range weights {
		switch w.Type {
		case WeightTeammate:
			if w.pairs(team1[0], team1[1]) || w.pairs(team2[0], team2[1]) {
				teammateStrength += w.Strength
			}
		case WeightOpponent:
			if spans(w, team1, team2) {
				opponentStrength += w.Strength
			}
		}
	}

	teammateRepeats := roster.teammateCount(team1[0], team1[1]) + roster.teammateCount(team2[0], team2[1])
	opponentRepeats := 0
	for _, a := range team1 {
		for _, b := range team2 {
			opponentRepeats += roster.opponentCount(a, b)
		}
	}

	return scoreParts{
		Fairness:    math.Max(0, 10-2*stdDev(games)),
		WeightBonus: float64(teammateStrength)*teammateWeightFactor + float64(opponentStrength)*opponentWeightFactor,
		Repetition:  -(float64(teammateRepeats)*teammateRepeatPenalty + float64(opponentRepeats)*opponentRepeatPenalty),
	}
}

// spans reports whether w links one player of a to one player of b.
func spans(w PreferenceWeight, a, b Team) bool {
	return (a.Contains(w.Player1) && b.Contains(w.Player2)) || (b.Contains(w.Player1) && a.Contains(w.Player2))
}

// stdDev is the population standard deviation. Values are sorted first so the
// result is independent of input order.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	sd, err := stats.StandardDeviationPopulation(sorted)
	if err != nil || math.IsNaN(sd) {
		return 0
	}
	return sd
}
