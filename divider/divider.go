// Package divider implements a hardware-style approximate IEEE-754
// single-precision reciprocal and division unit.
//
// Division is implemented as a*rcp(b). rcp(x) is approximated by range
// reduction to [1, 2) followed by a piecewise linear (Chebyshev) polynomial
// evaluated with fixed-width integer arithmetic, so that the result is
// bit-reproducible across platforms: it is a software model of a
// synthesizable reciprocal pipeline, not a call to the platform's native
// division instruction.
package divider

import (
	"fmt"
	"math"
)

const (
	exponentSize = 8
	mantissaSize = 23
	exponentBias = 127
)

// Divider is an immutable, thread-safe approximate reciprocal/division unit.
type Divider struct {
	lut              []Coefficients
	constantTermSize uint8
	linearTermSize   uint8
	tableDepth       uint8
}

// New constructs a Divider from a lookup table and the explicit mantissa
// widths of the constant and linear Chebyshev terms packed into each row.
//
// Construction fails if the table has fewer than two intervals, or if its
// depth is not a power of two. A row failing to carry exactly two
// coefficients is not a reachable failure mode in Go: Coefficients is a
// fixed [2]uint64, so that shape is enforced by the type system rather than
// at construction time.
func New(lut []Coefficients, constantTermSize, linearTermSize uint8) (*Divider, error) {
	if len(lut) < 2 {
		return nil, fmt.Errorf("divider: lookup table must have at least two intervals, got %d", len(lut))
	}
	if len(lut) > math.MaxUint8 {
		return nil, fmt.Errorf("divider: lookup table depth %d exceeds maximum of %d", len(lut), math.MaxUint8)
	}
	if len(lut)&(len(lut)-1) != 0 {
		return nil, fmt.Errorf("divider: lookup table depth must be a power of two, got %d", len(lut))
	}

	owned := make([]Coefficients, len(lut))
	copy(owned, lut)

	return &Divider{
		lut:              owned,
		constantTermSize: constantTermSize,
		linearTermSize:   linearTermSize,
		tableDepth:       uint8(len(lut)),
	}, nil
}

// Reciprocal approximates 1/x, preserving IEEE-754 special-value semantics
// at the boundary: ±Inf maps to copysign(0, x), NaN maps to NaN, and any
// subnormal or zero input maps to copysign(+Inf, x).
func (d *Divider) Reciprocal(x float32) float32 {
	xf := float64(x)
	switch {
	case math.IsInf(xf, 0):
		return float32(math.Copysign(0, xf))
	case math.IsNaN(xf):
		return float32(math.NaN())
	}

	bits := math.Float32bits(x)
	exponent, mantissa := reduceRange(bits)

	// Biased exponent of 0 covers every subnormal and zero value: it is the
	// one case fpclassify leaves after ruling out NaN and Inf above.
	if exponent == 0 {
		return float32(math.Copysign(math.Inf(1), xf))
	}

	numIntervalBits := d.numIntervalBits()
	xLocalSize := mantissaSize - numIntervalBits
	lutIndex, sLocal, xLocal := readMantissa(mantissa, numIntervalBits, xLocalSize)

	yLocal := d.approximate(lutIndex, sLocal, xLocal)
	absResult := d.expandRange(exponent, yLocal)
	return float32(math.Copysign(float64(absResult), xf))
}

// Divide approximates numerator/denominator as numerator * Reciprocal(denominator).
func (d *Divider) Divide(numerator, denominator float32) float32 {
	return numerator * d.Reciprocal(denominator)
}

// numIntervalBits returns k = ceil(log2(tableDepth)): the number of bits of
// the input mantissa used to index the lookup table.
func (d *Divider) numIntervalBits() uint8 {
	var k uint8
	for (uint8(1) << k) < d.tableDepth {
		k++
	}
	return k
}

// reduceRange extracts the raw biased exponent and raw mantissa bits of an
// IEEE-754 single-precision value via a well-defined bit-cast, never an
// aliasing pointer cast.
func reduceRange(bits uint32) (exponent uint8, mantissa uint32) {
	const exponentMask = uint32(1)<<exponentSize - 1
	const mantissaMask = uint32(1)<<mantissaSize - 1
	exponent = uint8((bits >> mantissaSize) & exponentMask)
	mantissa = bits & mantissaMask
	return exponent, mantissa
}

// readMantissa splits the input mantissa into a lookup table index and a
// signed-magnitude Chebyshev argument centered on the interval's midpoint.
func readMantissa(mantissa uint32, numIntervalBits, xLocalSize uint8) (lutIndex uint8, sLocal bool, xLocal uint32) {
	intervalMask := uint32(1)<<numIntervalBits - 1
	xLocalMask := uint32(1)<<xLocalSize - 1

	lutIndex = uint8((mantissa >> xLocalSize) & intervalMask)
	xLocal = mantissa & xLocalMask

	halfwayMask := uint32(1) << (xLocalSize - 1)
	isNegative := xLocal&halfwayMask == 0
	if isNegative {
		xLocal |= halfwayMask
		xLocal = (^xLocal) & xLocalMask
		xLocal++
	} else {
		xLocal &^= halfwayMask
	}

	return lutIndex, isNegative, xLocal
}

// readCoefficient unpacks a lookup-table coefficient's sign, unbiased
// exponent, and explicit mantissa (with the implied leading 1 applied unless
// the coefficient encodes a denormal, i.e. biasedExponent == 0).
func readCoefficient(coefficient uint64, termSize uint8) (sign bool, exponent int, mantissa uint64) {
	exponentMask := uint64(1)<<exponentSize - 1
	mantissaMask := uint64(1)<<termSize - 1

	sign = (coefficient>>(exponentSize+termSize))&1 != 0
	biasedExponent := (coefficient >> termSize) & exponentMask
	exponent = int(biasedExponent) - exponentBias

	var impliedBit uint64
	if biasedExponent > 0 {
		impliedBit = 1
	}
	mantissa = coefficient & mantissaMask
	mantissa |= impliedBit << termSize

	return sign, exponent, mantissa
}

// alignMantissa right-shifts (or left-shifts, if the adjustment exceeds the
// common exponent) a mantissa so it is expressed relative to e_common.
func alignMantissa(mantissa uint64, eCommon, adjustment int) uint64 {
	shift := eCommon - adjustment
	if shift > 0 {
		return mantissa >> uint(shift)
	}
	return mantissa << uint(-shift)
}

// approximate performs the order-1 Chebyshev polynomial evaluation in fixed-
// width integer arithmetic, returning the binary result y_local.
func (d *Divider) approximate(lutIndex uint8, sLocal bool, xLocal uint32) int64 {
	xLocalSize := int(mantissaSize - d.numIntervalBits())
	coeffs := d.lut[lutIndex]

	sConstant, eConstant, mConstant := readCoefficient(coeffs[0], d.constantTermSize)
	sLinear, eLinear, mLinear := readCoefficient(coeffs[1], d.linearTermSize)

	sM0 := int64(1)
	if sConstant {
		sM0 = -1
	}
	m0 := mConstant

	sM1 := int64(1)
	if sLinear != sLocal {
		sM1 = -1
	}
	m1 := mLinear * uint64(xLocal)

	adjustment0 := eConstant
	adjustment1 := eLinear - (xLocalSize - 1)

	eCommon := adjustment0
	if adjustment1 > eCommon {
		eCommon = adjustment1
	}

	m0Aligned := alignMantissa(m0, eCommon, adjustment0)
	m1Aligned := alignMantissa(m1, eCommon, adjustment1)

	return sM0*int64(m0Aligned) + sM1*int64(m1Aligned)
}

// expandRange reverses the range reduction: it rescales y_local by the
// original exponent and by the explicit width of y_local (the constant
// term's mantissa width plus one, since the constant term dominates).
func (d *Divider) expandRange(exponent uint8, yLocal int64) float32 {
	unbiasedExponent := int(exponent) - exponentBias
	exponentContribution := math.Exp2(float64(-unbiasedExponent))
	mantissaContribution := float64(yLocal) / math.Exp2(float64(d.constantTermSize)+1)
	return float32(exponentContribution * mantissaContribution)
}
