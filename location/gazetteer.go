package location

// City is a city and its districts as listed in a gazetteer.
type City struct {
	Name      string
	Districts []string
}

// Province is a province and its cities.
type Province struct {
	Name   string
	Cities []City
}

// Gazetteer is the administrative hierarchy the matcher resolves place
// names against. Callers supply their own; the zero value matches
// nothing.
type Gazetteer struct {
	Provinces []Province
}

// DefaultSuffixes are the city-name suffixes trimmed when deriving a
// short name, so "Springfield City" also matches passages that just say
// "Springfield".
var DefaultSuffixes = []string{" City", "市"}
