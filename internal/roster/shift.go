package roster

import "strings"

// Shift classifies a roster category by working hours.
//
// The numeric value doubles as the sort order of the announcement
// (day staff first, night staff last).
type Shift int

const (
	ShiftDay   Shift = 1 // afternoon only
	ShiftAll   Shift = 2 // afternoon through closing
	ShiftNight Shift = 3 // evening only
)

// Keyword returns the label fragment the menu source uses for this shift.
func (s Shift) Keyword() string {
	switch s {
	case ShiftDay:
		return "午安"
	case ShiftAll:
		return "午晚安"
	default:
		return "晚安"
	}
}

// Emoji returns the glyph rendered next to each name in the announcement.
func (s Shift) Emoji() string {
	switch s {
	case ShiftDay:
		return "☀️"
	case ShiftAll:
		return "🌍"
	default:
		return "🌙"
	}
}

func (s Shift) Order() int { return int(s) }

func (s Shift) String() string {
	switch s {
	case ShiftDay:
		return "day"
	case ShiftAll:
		return "all"
	default:
		return "night"
	}
}

// Classify maps a raw category label to a shift.
//
// The combined keyword must be tested before the day keyword: a label
// carrying "午晚安" also matches the shorter night keyword, and ordering
// by specificity keeps the mapping unambiguous. Labels matching nothing
// fall back to the night shift.
func Classify(label string) Shift {
	switch {
	case strings.Contains(label, ShiftAll.Keyword()):
		return ShiftAll
	case strings.Contains(label, ShiftDay.Keyword()):
		return ShiftDay
	default:
		return ShiftNight
	}
}
