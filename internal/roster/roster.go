// Package roster turns the menu source's category snapshot into the day's
// staff roster ("fairies") and renders the channel announcement.
package roster

import "sort"

// dateTokenLen is the width of the date token leading category labels
// (e.g. "20240615午安").
const dateTokenLen = 8

// Fairy is one staff member on the day's roster. Values are immutable
// once parsed.
type Fairy struct {
	Name  string
	Shift Shift
}

// Category is one roster group as published by the menu source: a free-text
// label (date token + shift keyword) and the staff names filed under it.
type Category struct {
	Name  string
	Items []string
}

// Parse extracts the roster and its date token from the source categories.
//
// Categories are scanned in source order. The date token is taken from the
// FIRST label with at least 8 runes and never overwritten by later labels
// (first-wins keeps the result stable when the source appends categories).
// The returned roster is stably sorted by shift order, so entries within
// the same shift keep their source order.
//
// Empty or nil input yields an empty roster and an empty date.
func Parse(categories []Category) ([]Fairy, string) {
	var fairies []Fairy
	date := ""

	for _, c := range categories {
		if date == "" {
			if r := []rune(c.Name); len(r) >= dateTokenLen {
				date = string(r[:dateTokenLen])
			}
		}

		shift := Classify(c.Name)
		for _, name := range c.Items {
			fairies = append(fairies, Fairy{Name: name, Shift: shift})
		}
	}

	sort.SliceStable(fairies, func(i, j int) bool {
		return fairies[i].Shift.Order() < fairies[j].Shift.Order()
	})

	return fairies, date
}
