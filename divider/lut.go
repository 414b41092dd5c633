package divider

import (
	"fmt"
	"math"
)

// Coefficients holds the packed IEEE-754 single-precision bit patterns of one
// lookup-table interval's constant and linear Chebyshev terms, c0 and c1.
// Each element is stored zero-extended into a uint64, mirroring the
// uint64_t packing used by the original lookup table header.
type Coefficients [2]uint64

const (
	approxDomainMin = 1.0
	approxDomainMax = 2.0
)

// BuildChebyshevLUT constructs a degree-1 (table width 2) Chebyshev
// interpolation of rcp(x) over the approximation domain [1, 2), split into
// numIntervals equal-width sub-intervals. numIntervals must be a power of
// two of at least 2.
//
// This is the closed-form equivalent of lut/gen_lut.py's
// chebyshev.chebinterpolate(deg=1) followed by cheb2poly: for degree 1 the
// Chebyshev basis (T0 = 1, T1 = x) is already the power basis, so
// interpolating at the two degree-1 Chebyshev nodes and solving the 2x2
// system directly reproduces gen_lut.py's table without requiring a
// numerical linear-algebra dependency.
func BuildChebyshevLUT(numIntervals int) ([]Coefficients, error) {
	if numIntervals < 2 {
		return nil, fmt.Errorf("divider: numIntervals must be >= 2, got %d", numIntervals)
	}
	if numIntervals&(numIntervals-1) != 0 {
		return nil, fmt.Errorf("divider: numIntervals must be a power of two, got %d", numIntervals)
	}

	width := (approxDomainMax - approxDomainMin) / float64(numIntervals)

	// Chebyshev nodes of the first kind for degree 1: cos((2i+1)*pi/4), i = 0, 1.
	x0 := math.Cos(math.Pi / 4)
	x1 := math.Cos(3 * math.Pi / 4) // == -x0

	table := make([]Coefficients, numIntervals)
	for i := 0; i < numIntervals; i++ {
		lo := approxDomainMin + float64(i)*width
		hi := lo + width
		mid := (lo + hi) / 2
		halfWidth := (hi - lo) / 2

		f0 := chebyshevReciprocal(x0, halfWidth, mid)
		f1 := chebyshevReciprocal(x1, halfWidth, mid)

		// Solve c0 + c1*x0 = f0, c0 + c1*x1 = f1 with x1 == -x0.
		c1 := (f0 - f1) / (x0 - x1)
		c0 := f0 - c1*x0

		table[i] = Coefficients{
			uint64(math.Float32bits(float32(c0))),
			uint64(math.Float32bits(float32(c1))),
		}
	}
	return table, nil
}

func chebyshevReciprocal(x, halfWidth, mid float64) float64 {
	xLocal := x*halfWidth + mid
	return 1.0 / xLocal
}

// DefaultLUT is the 8-interval table used by the firmware's default Divider
// and the calc REPL, mirroring gen_lut.py's num_intervals = 8 default and
// the Divider(DIVIDER_LUT, 23, 23) construction in parser.cpp.
var DefaultLUT = mustBuildDefaultLUT()

func mustBuildDefaultLUT() []Coefficients {
	lut, err := BuildChebyshevLUT(8)
	if err != nil {
		panic(err)
	}
	return lut
}
