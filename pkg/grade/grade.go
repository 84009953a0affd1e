package grade

import "strings"

// Unknown is the rank assigned to labels outside a scale.
const Unknown = 0

// Scale is an ordered, immutable mapping from grade label to ordinal rank.
// Ranks start at 1 and increase with quality.
type Scale struct {
	name   string
	labels []string
	ranks  map[string]int
}

func newScale(name string, labels ...string) *Scale {
	s := &Scale{
		name:   name,
		labels: labels,
		ranks:  make(map[string]int, len(labels)),
	}
	for i, l := range labels {
		s.ranks[l] = i + 1
	}
	return s
}

var (
	Cut     = newScale("cut", "Fair", "Good", "Very Good", "Premium", "Ideal")
	Color   = newScale("color", "J", "I", "H", "G", "F", "E", "D")
	Clarity = newScale("clarity", "I1", "SI2", "SI1", "VS2", "VS1", "VVS2", "VVS1", "IF")
)

func (s *Scale) Name() string { return s.name }

// Encode returns the rank of label, or Unknown when the label is not on the scale.
// Matching is exact and case-sensitive.
func (s *Scale) Encode(label string) int {
	if r, ok := s.ranks[label]; ok {
		return r
	}
	return Unknown
}

func (s *Scale) Contains(label string) bool {
	_, ok := s.ranks[label]
	return ok
}

// Label is the inverse of Encode.
func (s *Scale) Label(rank int) (string, bool) {
	if rank < 1 || rank > len(s.labels) {
		return "", false
	}
	return s.labels[rank-1], true
}

// Labels returns a copy of the labels in ascending rank order.
func (s *Scale) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Len is the number of grades on the scale.
func (s *Scale) Len() int { return len(s.labels) }

// Descending lists labels best first, the order used in user-facing messages.
func (s *Scale) Descending() []string {
	out := make([]string, len(s.labels))
	for i, l := range s.labels {
		out[len(s.labels)-1-i] = l
	}
	return out
}

func (s *Scale) String() string {
	return s.name + "[" + strings.Join(s.labels, " < ") + "]"
}
