package simtime

import (
	"math"
	"math/big"
	"math/bits"
)

// int128 is a two's complement signed 128-bit integer. The zero value is 0.
type int128 struct {
	hi int64
	lo uint64
}

var (
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	mask64    = new(big.Int).SetUint64(math.MaxUint64)
)

func i128(v int64) int128 {
	if v < 0 {
		return int128{hi: -1, lo: uint64(v)}
	}
	return int128{lo: uint64(v)}
}

func (a int128) add(b int128) int128 {
	lo, carry := bits.Add64(a.lo, b.lo, 0)
	return int128{hi: a.hi + b.hi + int64(carry), lo: lo}
}

func (a int128) sub(b int128) int128 {
	lo, borrow := bits.Sub64(a.lo, b.lo, 0)
	return int128{hi: a.hi - b.hi - int64(borrow), lo: lo}
}

func (a int128) neg() int128 {
	return int128{}.sub(a)
}

func (a int128) sign() int {
	switch {
	case a.hi < 0:
		return -1
	case a.hi == 0 && a.lo == 0:
		return 0
	default:
		return 1
	}
}

func (a int128) cmp(b int128) int {
	switch {
	case a.hi < b.hi:
		return -1
	case a.hi > b.hi:
		return 1
	case a.lo < b.lo:
		return -1
	case a.lo > b.lo:
		return 1
	default:
		return 0
	}
}

// abs returns the magnitude as an unsigned (hi, lo) pair.
func (a int128) abs() (uint64, uint64) {
	if a.hi < 0 {
		n := a.neg()
		return uint64(n.hi), n.lo
	}
	return uint64(a.hi), a.lo
}

// mul64 multiplies by m, wrapping on overflow past 128 bits.
func (a int128) mul64(m int64) int128 {
	neg := (a.sign() < 0) != (m < 0)
	uhi, ulo := a.abs()
	um := uint64(m)
	if m < 0 {
		um = uint64(-m)
	}
	carry, lo := bits.Mul64(ulo, um)
	hi := uhi*um + carry
	r := int128{hi: int64(hi), lo: lo}
	if neg {
		return r.neg()
	}
	return r
}

// divmod64 performs floored division by d > 0: a = q*d + r with 0 <= r < d.
func (a int128) divmod64(d int64) (int128, int64) {
	ud := uint64(d)
	uhi, ulo := a.abs()
	qhi := uhi / ud
	r := uhi % ud
	qlo, rem := bits.Div64(r, ulo, ud)
	q := int128{hi: int64(qhi), lo: qlo}
	if a.sign() >= 0 {
		return q, int64(rem)
	}
	q = q.neg()
	if rem == 0 {
		return q, 0
	}
	return q.sub(i128(1)), d - int64(rem)
}

// int64 reports the value as an int64 when it fits.
func (a int128) int64() (int64, bool) {
	v := int64(a.lo)
	if (a.hi == 0 && v >= 0) || (a.hi == -1 && v < 0) {
		return v, true
	}
	return 0, false
}

func (a int128) float64() float64 {
	uhi, ulo := a.abs()
	f := float64(uhi)*(1<<64) + float64(ulo)
	if a.sign() < 0 {
		return -f
	}
	return f
}

func (a int128) big() *big.Int {
	v := new(big.Int).Lsh(big.NewInt(a.hi), 64)
	return v.Add(v, new(big.Int).SetUint64(a.lo))
}

func fromBig(v *big.Int) (int128, bool) {
	if v.Cmp(minInt128) < 0 || v.Cmp(maxInt128) > 0 {
		return int128{}, false
	}
	lo := new(big.Int).And(v, mask64).Uint64()
	hi := new(big.Int).Rsh(v, 64).Int64()
	return int128{hi: hi, lo: lo}, true
}
