// Package insights aggregates the training dataset for the dashboard:
// a carat/price scatter sample and mean price per grade.
package insights

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lad94220/ML-Lab1/pkg/common"
	"github.com/lad94220/ML-Lab1/pkg/dataset"
	"github.com/lad94220/ML-Lab1/pkg/grade"
	"github.com/lad94220/ML-Lab1/pkg/logging"
	"github.com/lad94220/ML-Lab1/pkg/storage"
)

// DefaultSampleSize is the scatter sample size and its upper bound.
const DefaultSampleSize = 500

var ErrEmptyDataset = errors.New("insights: dataset has no rows")

type CaratPoint struct {
	Carat float64 `json:"carat"`
	Price float64 `json:"price"`
}

type CutAverage struct {
	Cut      string  `json:"cut"`
	AvgPrice float64 `json:"avgPrice"`
}

type ColorAverage struct {
	Color    string  `json:"color"`
	AvgPrice float64 `json:"avgPrice"`
}

type ClarityAverage struct {
	Clarity  string  `json:"clarity"`
	AvgPrice float64 `json:"avgPrice"`
}

// Insights is the /api/insights payload. Grade lists follow ascending rank
// order and only contain grades present in the data.
type Insights struct {
	CaratData   []CaratPoint     `json:"caratData"`
	CutData     []CutAverage     `json:"cutData"`
	ColorData   []ColorAverage   `json:"colorData"`
	ClarityData []ClarityAverage `json:"clarityData"`

	Rows int `json:"-"`
}

// Build loads rows into store and aggregates them. The store is truncated first.
func Build(rows []common.Diamond, store storage.Backend, sampleSize int) (*Insights, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	if err := store.Truncate(); err != nil {
		return nil, fmt.Errorf("truncate store: %w", err)
	}
	if err := store.BatchWrite(rows); err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	n, err := store.Count()
	if err != nil {
		return nil, fmt.Errorf("count store: %w", err)
	}

	out := &Insights{
		CaratData: strideSample(rows, clampSampleSize(sampleSize)).Points(),
		Rows:      n,
	}

	err = eachAverage(store, storage.GroupCut, grade.Cut, func(label string, avg float64) {
		out.CutData = append(out.CutData, CutAverage{Cut: label, AvgPrice: avg})
	})
	if err != nil {
		return nil, err
	}
	err = eachAverage(store, storage.GroupColor, grade.Color, func(label string, avg float64) {
		out.ColorData = append(out.ColorData, ColorAverage{Color: label, AvgPrice: avg})
	})
	if err != nil {
		return nil, err
	}
	err = eachAverage(store, storage.GroupClarity, grade.Clarity, func(label string, avg float64) {
		out.ClarityData = append(out.ClarityData, ClarityAverage{Clarity: label, AvgPrice: avg})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// eachAverage calls fn in the scale's rank order for every grade with rows.
func eachAverage(store storage.Backend, column string, scale *grade.Scale, fn func(string, float64)) error {
	avgs, err := store.AverageBy(column)
	if err != nil {
		return fmt.Errorf("average by %s: %w", column, err)
	}
	for rank, label := range scale.Labels() {
		if avg, ok := avgs[rank+1]; ok {
			fn(label, avg)
		}
	}
	return nil
}

// Service computes Insights from a CSV file on first use and memoises the
// outcome, including a failure, for the life of the process.
type Service struct {
	csvPath    string
	dbPath     string
	sampleSize int

	once   sync.Once
	result *Insights
	err    error
}

func NewService(csvPath, dbPath string, sampleSize int) *Service {
	sampleSize = clampSampleSize(sampleSize)
	if dbPath == "" {
		dbPath = ":memory:"
	}
	return &Service{csvPath: csvPath, dbPath: dbPath, sampleSize: sampleSize}
}

func (s *Service) Get() (*Insights, error) {
	s.once.Do(func() {
		s.result, s.err = s.compute()
		if s.err != nil {
			logging.Error().Err(s.err).Str("path", s.csvPath).Msg("insights unavailable")
			return
		}
		logging.Info().Int("rows", s.result.Rows).Str("path", s.csvPath).Msg("insights computed")
	})
	return s.result, s.err
}

func (s *Service) compute() (*Insights, error) {
	rows, err := dataset.ReadFile(s.csvPath)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	store, err := storage.NewSQLiteBackend(s.dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return Build(rows, store, s.sampleSize)
}

// clampSampleSize maps non-positive and oversized values to DefaultSampleSize.
func clampSampleSize(n int) int {
	if n <= 0 || n > DefaultSampleSize {
		return DefaultSampleSize
	}
	return n
}
