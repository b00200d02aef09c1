package sales

import (
	"math"

	"gonum.org/v1/gonum/mathext/prng"
)

// normalSource draws Gaussian values from a 32-bit Mersenne Twister using
// the Marsaglia polar method. The second value of each pair is cached, so the
// stream for a seed is the same one the classic NumPy RandomState produces.
type normalSource struct {
	mt       *prng.MT19937
	hasSpare bool
	spare    float64
}

func newNormalSource(seed uint32) *normalSource {
	mt := prng.NewMT19937()
	mt.Seed(uint64(seed))
	return &normalSource{mt: mt}
}

// float64 returns a value in [0, 1) with 53 bits of resolution.
func (s *normalSource) float64() float64 {
	a := s.mt.Uint32() >> 5
	b := s.mt.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) / 9007199254740992.0
}

func (s *normalSource) gauss() float64 {
	if s.hasSpare {
		s.hasSpare = false
		return s.spare
	}

	var x1, x2, r2 float64
	for {
		x1 = 2.0*s.float64() - 1.0
		x2 = 2.0*s.float64() - 1.0
		r2 = x1*x1 + x2*x2
		if r2 < 1.0 && r2 != 0.0 {
			break
		}
	}

	f := math.Sqrt(-2.0 * math.Log(r2) / r2)
	s.spare = f * x1
	s.hasSpare = true
	return f * x2
}

// Normal fills n draws from N(mean, std).
func (s *normalSource) Normal(mean, std float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + std*s.gauss()
	}
	return out
}
