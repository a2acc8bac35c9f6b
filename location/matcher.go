package location

import (
	"sort"
	"strings"

	"github.com/civica/policyrag/core"
)

// Score contributions per match level. The most specific level wins and
// the total is capped at 1.0.
const (
	districtScore = 1.0
	cityScore     = 0.7
	provinceScore = 0.3
	maxScore      = 1.0
)

// extractWindow is how many leading characters of a passage are scanned
// when inferring its region.
const extractWindow = 200

// Matcher resolves place names against a gazetteer and scores passages
// by locality.
type Matcher struct {
	gazetteer Gazetteer
	suffixes  []string

	cityProvince map[string]string // city -> province
	cityShort    map[string]string // city -> short name
	cityNames    []string          // full names, longest first
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithSuffixes overrides the city-name suffixes used for short-name
// matching. Default is DefaultSuffixes.
func WithSuffixes(suffixes []string) Option {
	return func(m *Matcher) {
		m.suffixes = suffixes
	}
}

// NewMatcher builds a matcher from the given gazetteer.
func NewMatcher(gazetteer Gazetteer, opts ...Option) *Matcher {
	m := &Matcher{
		gazetteer:    gazetteer,
		suffixes:     DefaultSuffixes,
		cityProvince: map[string]string{},
		cityShort:    map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, province := range gazetteer.Provinces {
		for _, city := range province.Cities {
			m.cityProvince[city.Name] = province.Name
			m.cityShort[city.Name] = m.shortName(city.Name)
			m.cityNames = append(m.cityNames, city.Name)
		}
	}

	// Longest first so "North Springfield" wins over "Springfield".
	sort.SliceStable(m.cityNames, func(i, j int) bool {
		return len(m.cityNames[i]) > len(m.cityNames[j])
	})

	return m
}

// Parse resolves a free-form location string to a structured Location.
// The most specific names found win; unknown strings yield a zero value.
func (m *Matcher) Parse(s string) core.Location {
	lower := strings.ToLower(s)
	var loc core.Location

	// Gazetteer order, not map order, so ambiguous strings resolve the
	// same way every run.
	for _, province := range m.gazetteer.Provinces {
		for _, city := range province.Cities {
			for _, district := range city.Districts {
				if containsFold(lower, district) {
					loc.District = district
					loc.City = city.Name
					loc.Province = province.Name
					return loc
				}
			}
		}
	}
	for _, city := range m.cityNames {
		if containsFold(lower, city) || containsFold(lower, m.cityShort[city]) {
			loc.City = city
			loc.Province = m.cityProvince[city]
			return loc
		}
	}
	for _, province := range m.gazetteer.Provinces {
		if containsFold(lower, province.Name) {
			loc.Province = province.Name
			return loc
		}
	}
	return loc
}

// Score rates how well a passage matches the caller's location, in
// [0, 1]. District mentions score highest, then city, then province.
func (m *Matcher) Score(text string, loc core.Location) float64 {
	lower := strings.ToLower(text)
	score := 0.0

	if loc.District != "" && containsFold(lower, loc.District) {
		score += districtScore
	}
	if loc.City != "" {
		if containsFold(lower, loc.City) || containsFold(lower, m.shortName(loc.City)) {
			score += cityScore
		}
	}
	if loc.Province != "" && containsFold(lower, loc.Province) {
		score += provinceScore
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

// Rerank blends each result's prior score with its location score under
// the given weight and reorders. A caller location without a city leaves
// the input unchanged.
func (m *Matcher) Rerank(results []core.RankedResult, loc core.Location, weight float64) []core.RankedResult {
	if !loc.HasCity() || weight <= 0 || len(results) == 0 {
		return results
	}
	if weight > 1 {
		weight = 1
	}

	reranked := make([]core.RankedResult, len(results))
	for i, res := range results {
		locScore := m.Score(res.Chunk.Text, loc)
		res.LocationScore = locScore
		res.FinalScore = res.FinalScore*(1-weight) + locScore*weight
		reranked[i] = res
	}

	// Stable so score ties keep the incoming rank order.
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].FinalScore > reranked[j].FinalScore
	})
	return reranked
}

// Keywords returns the place names of a location, most specific first,
// including the city short name when it differs.
func (m *Matcher) Keywords(loc core.Location) []string {
	var keywords []string
	if loc.District != "" {
		keywords = append(keywords, loc.District)
	}
	if loc.City != "" {
		keywords = append(keywords, loc.City)
		if short := m.shortName(loc.City); short != loc.City {
			keywords = append(keywords, short)
		}
	}
	if loc.Province != "" {
		keywords = append(keywords, loc.Province)
	}
	return keywords
}

// ExtractRegion infers the region a passage is about by scanning its
// opening characters for a known city name.
func (m *Matcher) ExtractRegion(text string) core.Location {
	runes := []rune(text)
	if len(runes) > extractWindow {
		runes = runes[:extractWindow]
	}
	head := strings.ToLower(string(runes))

	for _, city := range m.cityNames {
		if containsFold(head, city) || containsFold(head, m.cityShort[city]) {
			return core.Location{
				Province: m.cityProvince[city],
				City:     city,
			}
		}
	}
	return core.Location{}
}

func (m *Matcher) shortName(city string) string {
	for _, suffix := range m.suffixes {
		if trimmed := strings.TrimSuffix(city, suffix); trimmed != city && trimmed != "" {
			return trimmed
		}
	}
	return city
}

// containsFold reports whether lowerText contains name, ignoring case on
// the name side. lowerText must already be lowercased.
func containsFold(lowerText, name string) bool {
	if name == "" {
		return false
	}
	return strings.Contains(lowerText, strings.ToLower(name))
}
