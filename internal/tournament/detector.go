package tournament

import (
	"slices"
	"sort"
	"strings"
	"time"
	"unicode"
)

// Summary is the part of an event the detector looks at.
type Summary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
}

type RoundInfo struct {
	Round       int `json:"round"`
	TotalRounds int `json:"total_rounds"`
}

type RawIngest struct {
	Event Summary
	Round RoundInfo
}

type Segment struct {
	Round   int       `json:"round"`
	Members []Summary `json:"members"`
}

// Ingest is one detected tournament. Segments are ordered by round and never empty.
type Ingest struct {
	TotalRounds int       `json:"total_rounds"`
	Name        string    `json:"name"`
	Segments    []Segment `json:"segments"`
}

// Detect groups round-tagged events into tournaments.
//
// Single-round events are their own tournament. Everything else is grouped by
// round count, then by a shared leading phrase of the title, so that
// "Catan Championship - Qualifier" and "Catan Championship - Final" end up in
// the same "Catan Championship" tournament. Unrelated series that share a long
// leading phrase and round count are merged as well.
func Detect(events []RawIngest) []Ingest {
	var out []Ingest

	byTotal := map[int][]*RawIngest{}
	var totals []int
	for i := range events {
		e := &events[i]
		total := e.Round.TotalRounds
		if total <= 1 {
			out = append(out, Ingest{
				TotalRounds: 1,
				Name:        e.Event.Title,
				Segments:    []Segment{{Round: 1, Members: []Summary{e.Event}}},
			})
			continue
		}
		if _, ok := byTotal[total]; !ok {
			totals = append(totals, total)
		}
		byTotal[total] = append(byTotal[total], e)
	}

	slices.Sort(totals)
	for _, total := range totals {
		out = append(out, detectWithinTotal(total, byTotal[total])...)
	}
	return out
}

type sanitizedEvent struct {
	title   string
	removed []int
	event   *RawIngest
}

type prefixGroup struct {
	// prefixSize is -1 until two differing titles establish it.
	prefixSize int
	entries    []*sanitizedEvent
}

func detectWithinTotal(total int, events []*RawIngest) []Ingest {
	if len(events) == 0 {
		return nil
	}

	entries := make([]sanitizedEvent, len(events))
	for i, e := range events {
		title, removed := sanitizeTitle(e.Event.Title)
		entries[i] = sanitizedEvent{title: title, removed: removed, event: e}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].title < entries[j].title })

	groups := []*prefixGroup{{prefixSize: -1, entries: []*sanitizedEvent{&entries[0]}}}
	for i := 1; i < len(entries); i++ {
		prev, cur := &entries[i-1], &entries[i]
		group := groups[len(groups)-1]
		cpl := commonPrefixLength(prev.title, cur.title)

		switch {
		case prev.title == cur.title:
			group.entries = append(group.entries, cur)
		case group.prefixSize >= 0 && cpl >= group.prefixSize:
			group.entries = append(group.entries, cur)
		case group.prefixSize < 0 && cpl > 0:
			group.prefixSize = cpl
			group.entries = append(group.entries, cur)
		default:
			groups = append(groups, &prefixGroup{prefixSize: -1, entries: []*sanitizedEvent{cur}})
		}
	}

	out := make([]Ingest, 0, len(groups))
	for _, group := range groups {
		sort.SliceStable(group.entries, func(i, j int) bool {
			return group.entries[i].event.Event.StartTime.Before(group.entries[j].event.Event.StartTime)
		})

		initial := group.entries[0]
		title := initial.event.Event.Title
		length := len(title)
		if group.prefixSize >= 0 {
			length = originalPrefixLength(group.prefixSize, initial.removed)
			if length > len(title) {
				length = len(title)
			}
		}

		segments := make([]Segment, total)
		for i := range segments {
			segments[i].Round = i + 1
		}
		for _, e := range group.entries {
			round := e.event.Round.Round
			if round < 1 {
				round = 1
			}
			if round > total {
				round = total
			}
			segments[round-1].Members = append(segments[round-1].Members, e.event.Event)
		}

		nonEmpty := segments[:0]
		for _, s := range segments {
			if len(s.Members) > 0 {
				nonEmpty = append(nonEmpty, s)
			}
		}

		out = append(out, Ingest{
			TotalRounds: total,
			Name:        trimNonAlphanumeric(title[:length]),
			Segments:    nonEmpty,
		})
	}
	return out
}

// sanitizeTitle lowercases title, keeps only [a-z0-9 ] and collapses runs of
// spaces. It also returns the byte offsets of title that were dropped, every
// byte of a dropped multi-byte character included.
func sanitizeTitle(title string) (string, []int) {
	var b strings.Builder
	var removed []int
	endsWithSpace := true

	for i := 0; i < len(title); i++ {
		c := title[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
			endsWithSpace = false
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
			endsWithSpace = false
		case c == ' ' && !endsWithSpace:
			b.WriteByte(' ')
			endsWithSpace = true
		default:
			removed = append(removed, i)
		}
	}
	return b.String(), removed
}

// commonPrefixLength counts matching leading characters, but only when the
// match covers at least one whole word.
func commonPrefixLength(a, b string) int {
	n := 0
	spaceSeen := false
	for n < len(a) && n < len(b) && a[n] == b[n] {
		if a[n] == ' ' {
			spaceSeen = true
		}
		n++
	}
	if !spaceSeen {
		return 0
	}
	return n
}

// originalPrefixLength maps a prefix length of the sanitized title back to a
// byte length of the original title.
func originalPrefixLength(sanitized int, removed []int) int {
	n := sanitized
	for _, idx := range removed {
		if idx > n {
			break
		}
		n++
	}
	return n
}

func trimNonAlphanumeric(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
