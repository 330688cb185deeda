package services

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tbexpress/freight-booking-backend/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StationMatch is a successful resolution: the canonical station plus the
// exact span (canonical name or alias) that matched, for later stripping.
type StationMatch struct {
	Station     *models.Station
	MatchedSpan string
}

// StationResolver maps free text (recipient lines, address fragments) to a
// canonical station. It is pure: no store access, no state beyond the
// immutable station list.
type StationResolver struct {
	// stations sorted by canonical-name length descending, aliases of each
	// station sorted by length descending. Longest-first is a
	// disambiguation policy: many aliases are substrings of longer ones,
	// and shortest-first would silently over-generalize.
	stations []models.Station
}

// NewStationResolver builds a resolver over the canonical station list.
func NewStationResolver() *StationResolver {
	stations := make([]models.Station, len(models.Stations))
	copy(stations, models.Stations)
	sort.SliceStable(stations, func(i, j int) bool {
		return utf8.RuneCountInString(stations[i].Name) > utf8.RuneCountInString(stations[j].Name)
	})
	for i := range stations {
		aliases := make([]string, len(stations[i].Aliases))
		copy(aliases, stations[i].Aliases)
		sort.SliceStable(aliases, func(a, b int) bool {
			return utf8.RuneCountInString(aliases[a]) > utf8.RuneCountInString(aliases[b])
		})
		stations[i].Aliases = aliases
	}
	return &StationResolver{stations: stations}
}

// Resolve finds the station whose canonical name, or failing that alias,
// occurs as a substring of text after normalization. Canonical names of all
// stations are tried before any alias. Returns nil when nothing matches.
func (r *StationResolver) Resolve(text string) *StationMatch {
	normText := Normalize(text)
	if normText == "" {
		return nil
	}

	for i := range r.stations {
		if strings.Contains(normText, Normalize(r.stations[i].Name)) {
			return &StationMatch{Station: &r.stations[i], MatchedSpan: r.stations[i].Name}
		}
	}
	for i := range r.stations {
		for _, alias := range r.stations[i].Aliases {
			if strings.Contains(normText, Normalize(alias)) {
				return &StationMatch{Station: &r.stations[i], MatchedSpan: alias}
			}
		}
	}
	return nil
}

// StripMatch removes the matched span from the original, un-normalized
// text: the span's normalized form is located inside the normalized
// original, the hit is mapped back onto original runes, deleted, and the
// surrounding whitespace tidied. Used to recover a pure recipient name once
// its embedded address hint is removed.
func (r *StationResolver) StripMatch(original, matchedSpan string) string {
	normSpan := Normalize(matchedSpan)
	if normSpan == "" {
		return strings.TrimSpace(original)
	}

	normText, offsets := normalizeWithOffsets(original)
	byteIdx := strings.Index(normText, normSpan)
	if byteIdx < 0 {
		return strings.TrimSpace(original)
	}

	startRune := utf8.RuneCountInString(normText[:byteIdx])
	endRune := startRune + utf8.RuneCountInString(normSpan) - 1

	origStart := offsets[startRune].start
	origEnd := offsets[endRune].end

	stripped := original[:origStart] + " " + original[origEnd:]
	return strings.Join(strings.Fields(stripped), " ")
}

// span maps one normalized rune back to a byte range of the original text.
type span struct {
	start int
	end   int
}

// Normalize lowercases, strips diacritics and collapses internal
// whitespace. Applied identically to inputs, canonical names and aliases
// before any comparison.
func Normalize(s string) string {
	out, _ := normalizeWithOffsets(s)
	return out
}

// normalizeWithOffsets normalizes rune by rune, recording for each emitted
// rune the byte range it came from, so matches on the normalized text can
// be mapped back onto the original.
func normalizeWithOffsets(s string) (string, []span) {
	var b strings.Builder
	var offsets []span

	pendingSpace := false
	emitted := false
	byteIdx := 0
	for _, r := range s {
		size := utf8.RuneLen(r)
		if unicode.IsSpace(r) {
			pendingSpace = emitted
			byteIdx += size
			continue
		}
		for _, nr := range foldRune(r) {
			if pendingSpace {
				b.WriteRune(' ')
				// The space stands for skipped whitespace; anchor it to the
				// rune that follows so stripping stays contiguous.
				offsets = append(offsets, span{start: byteIdx, end: byteIdx})
				pendingSpace = false
			}
			b.WriteRune(nr)
			offsets = append(offsets, span{start: byteIdx, end: byteIdx + size})
			emitted = true
		}
		byteIdx += size
	}
	return b.String(), offsets
}

// foldRune lowercases one rune and strips its combining marks. đ is handled
// explicitly: NFD does not decompose it.
func foldRune(r rune) []rune {
	r = unicode.ToLower(r)
	if r == 'đ' {
		return []rune{'d'}
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, string(r))
	if err != nil || folded == "" {
		return []rune{r}
	}
	return []rune(folded)
}
