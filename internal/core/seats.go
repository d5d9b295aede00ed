package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// SeatSlot is one position of a display formation.
type SeatSlot struct {
	Index    int
	Position string
	Team     Team
	Row      int // 0 goalkeeper, 1 defence, 2 midfield, 3 attack
}

type RosterEntry struct {
	UserID string
	Seat   SeatSlot
}

type position struct {
	name string
	row  int
}

// 4-4-2 for both sides; team B is mirrored so the strikers face each other.
var formation442 = []position{
	{"GK", 0}, {"LB", 1}, {"CB", 1}, {"CB", 1}, {"RB", 1},
	{"LM", 2}, {"CM", 2}, {"CM", 2}, {"RM", 2}, {"ST", 3}, {"ST", 3},
	{"ST", 3}, {"ST", 3}, {"LM", 2}, {"CM", 2}, {"CM", 2}, {"RM", 2},
	{"LB", 1}, {"CB", 1}, {"CB", 1}, {"RB", 1}, {"GK", 0},
}

// Formation442 is the 22-seat template used for game rosters.
var Formation442 = newTemplate(formation442)

func newTemplate(positions []position) []SeatSlot {
	slots := make([]SeatSlot, len(positions))
	half := (len(positions) + 1) / 2
	for i, p := range positions {
		team := TeamA
		if i >= half {
			team = TeamB
		}
		slots[i] = SeatSlot{Index: i, Position: p.name, Team: team, Row: p.row}
	}
	return slots
}

// AssignSeats gives the nth attendee the nth slot of template. Attendees past
// the end of the template get no seat. Seats follow join order, so a leave
// moves every later attendee down one slot.
func AssignSeats(attendees []string, template []SeatSlot) map[string]SeatSlot {
	seats := make(map[string]SeatSlot, len(attendees))
	for _, e := range RosterEntries(attendees, template) {
		seats[e.UserID] = e.Seat
	}
	return seats
}

// RosterEntries is AssignSeats in join order.
func RosterEntries(attendees []string, template []SeatSlot) []RosterEntry {
	n := len(attendees)
	if n > len(template) {
		n = len(template)
	}
	entries := make([]RosterEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, RosterEntry{UserID: attendees[i], Seat: template[i]})
	}
	return entries
}

// ShortLabel renders a display name as it fits on a seat: "jane doe" becomes "Jane D.".
func ShortLabel(name string) string {
	parts := strings.Fields(name)
	titleCaser := cases.Title(language.English)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return titleCaser.String(parts[0])
	}
	last := []rune(titleCaser.String(parts[1]))
	return titleCaser.String(parts[0]) + " " + string(last[0]) + "."
}
