package rotation

// DeriveStatus computes a player's status from where they are placed. A court
// slot wins over a provisional queue slot.
func DeriveStatus(p Player, courts []Court, queue []Match) PlayerStatus {
	if !p.Active() {
		return StatusAway
	}
	for _, c := range courts {
		if c.Match != nil && c.Match.Contains(p.ID) {
			return StatusPlaying
		}
	}
	for _, m := range queue {
		if m.Contains(p.ID) {
			return StatusQueued
		}
	}
	return StatusResting
}

// ApplyStatuses re-derives every player's status and court states in place.
// Call it after every roster or placement change instead of setting Status directly.
func ApplyStatuses(s *Session) {
	for i := range s.Courts {
		if s.Courts[i].Match == nil {
			s.Courts[i].Status = CourtEmpty
		} else {
			s.Courts[i].Status = CourtPlaying
		}
	}
	for i := range s.Players {
		s.Players[i].Status = DeriveStatus(s.Players[i], s.Courts, s.Queue)
	}
}
