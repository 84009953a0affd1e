package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDocumentedRanks(t *testing.T) {
	cases := []struct {
		scale *Scale
		want  map[string]int
	}{
		{Cut, map[string]int{"Fair": 1, "Good": 2, "Very Good": 3, "Premium": 4, "Ideal": 5}},
		{Color, map[string]int{"J": 1, "I": 2, "H": 3, "G": 4, "F": 5, "E": 6, "D": 7}},
		{Clarity, map[string]int{"I1": 1, "SI2": 2, "SI1": 3, "VS2": 4, "VS1": 5, "VVS2": 6, "VVS1": 7, "IF": 8}},
	}
	for _, tc := range cases {
		t.Run(tc.scale.Name(), func(t *testing.T) {
			require.Equal(t, len(tc.want), tc.scale.Len())
			for label, rank := range tc.want {
				assert.Equal(t, rank, tc.scale.Encode(label), label)
				back, ok := tc.scale.Label(rank)
				assert.True(t, ok)
				assert.Equal(t, label, back)
			}
		})
	}
}

func TestEncodeUnknownIsZero(t *testing.T) {
	for _, s := range []*Scale{Cut, Color, Clarity} {
		for _, label := range []string{"", "Excellent", "ideal", "d", "VVS3", " IF", "Very  Good"} {
			assert.Equal(t, Unknown, s.Encode(label), "%s/%q", s.Name(), label)
			assert.False(t, s.Contains(label))
		}
	}
}

func TestRanksAreContiguous(t *testing.T) {
	for _, s := range []*Scale{Cut, Color, Clarity} {
		for i, l := range s.Labels() {
			assert.Equal(t, i+1, s.Encode(l))
		}
		_, ok := s.Label(0)
		assert.False(t, ok)
		_, ok = s.Label(s.Len() + 1)
		assert.False(t, ok)
	}
}

func TestLabelsReturnsCopy(t *testing.T) {
	l := Cut.Labels()
	l[0] = "Broken"
	assert.Equal(t, 1, Cut.Encode("Fair"))
	assert.Equal(t, []string{"IF", "VVS1", "VVS2", "VS1", "VS2", "SI1", "SI2", "I1"}, Clarity.Descending())
}
