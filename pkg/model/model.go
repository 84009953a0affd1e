package model

// Feature positions in the model input vector.
const (
	LogCarat = iota
	CutRank
	ColorRank
	ClarityRank
	NumFeatures
)

// FeatureNames follows the column order used for training.
var FeatureNames = [NumFeatures]string{"log_carat", "cut", "color", "clarity"}

// Features is one model input row.
type Features [NumFeatures]float64

// Regressor maps a feature row to log-price. Implementations must be safe for
// concurrent readers once constructed.
type Regressor interface {
	Predict(x Features) float64
}
