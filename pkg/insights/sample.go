package insights

import (
	"github.com/google/btree"

	"github.com/lad94220/ML-Lab1/pkg/common"
)

// sampleItem orders points by carat, then price, then source position so
// duplicates survive in the tree.
type sampleItem struct {
	carat float64
	price float64
	seq   int
}

func (i sampleItem) Less(than btree.Item) bool {
	o := than.(sampleItem)
	if i.carat != o.carat {
		return i.carat < o.carat
	}
	if i.price != o.price {
		return i.price < o.price
	}
	return i.seq < o.seq
}

// sampleIndex is an ordered set of carat/price points.
type sampleIndex struct {
	tree *btree.BTree
}

func newSampleIndex(degree int) *sampleIndex {
	return &sampleIndex{tree: btree.New(degree)}
}

func (s *sampleIndex) Put(seq int, d common.Diamond) {
	s.tree.ReplaceOrInsert(sampleItem{carat: d.Carat, price: d.Price, seq: seq})
}

func (s *sampleIndex) Len() int { return s.tree.Len() }

// Points returns the indexed points in ascending carat order.
func (s *sampleIndex) Points() []CaratPoint {
	out := make([]CaratPoint, 0, s.tree.Len())
	s.tree.Ascend(func(i btree.Item) bool {
		item := i.(sampleItem)
		out = append(out, CaratPoint{Carat: item.carat, Price: item.price})
		return true
	})
	return out
}

// strideSample picks at most limit rows spread evenly across rows.
func strideSample(rows []common.Diamond, limit int) *sampleIndex {
	idx := newSampleIndex(16)
	n := len(rows)
	if limit <= 0 || n == 0 {
		return idx
	}
	if n <= limit {
		for i, d := range rows {
			idx.Put(i, d)
		}
		return idx
	}
	step := float64(n) / float64(limit)
	for k := 0; k < limit; k++ {
		i := int(float64(k) * step)
		idx.Put(i, rows[i])
	}
	return idx
}
