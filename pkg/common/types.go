package common

// Diamond is one dataset row. Grades are stored as ordinal ranks
// (see package grade); 0 never appears in a loaded dataset.
type Diamond struct {
	Carat   float64
	Cut     int
	Color   int
	Clarity int
	Price   float64
}
