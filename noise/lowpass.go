package noise

import "math"

// Fixed design parameters of the band-limiting filter (spec §4.12:
// "3rd-order Chebyshev at ~500 Hz with 1 dB ripple").
const (
	chebyshevRippleDB = 1.0
	chebyshevCutoffHz = 500.0
)

// lowpassSection is one second-order direct-form-I IIR section (two
// input and two output history samples), the same state/coefficient shape as trm.BandpassFilter's
// biquad, generalized from a fixed-formula bandpass to a designed
// lowpass.
type lowpassSection struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

func (s *lowpassSection) filter(input float64) float64 {
	output := s.b0*input + s.b1*s.x1 + s.b2*s.x2 - s.a1*s.y1 - s.a2*s.y2
	s.x2, s.x1 = s.x1, input
	s.y2, s.y1 = s.y1, output
	return output
}

func (s *lowpassSection) reset() {
	s.x1, s.x2, s.y1, s.y2 = 0, 0, 0, 0
}

// firstOrderSection is the odd real pole left over from the
// 3rd-order cascade.
type firstOrderSection struct {
	b0, b1 float64
	a1     float64
	x1, y1 float64
}

func (s *firstOrderSection) filter(input float64) float64 {
	output := s.b0*input + s.b1*s.x1 - s.a1*s.y1
	s.x1 = input
	s.y1 = output
	return output
}

func (s *firstOrderSection) reset() {
	s.x1, s.y1 = 0, 0
}

// LowpassFilter is the fixed 3rd-order Chebyshev type I low-pass of
// spec §4.12, realized as a cascade of one real-pole section and one
// conjugate-pole-pair biquad, designed once per sample rate via the
// bilinear transform of the analog prototype.
type LowpassFilter struct {
	first  firstOrderSection
	second lowpassSection
}

// NewLowpassFilter designs the cascade for sampleRate.
func NewLowpassFilter(sampleRate float64) *LowpassFilter {
	warpedWc := 2 * sampleRate * math.Tan(math.Pi*chebyshevCutoffHz/sampleRate)
	realPole, conjPole := chebyshev3Poles(chebyshevRippleDB, warpedWc)
	return &LowpassFilter{
		first:  bilinearFirstOrder(realPole, sampleRate),
		second: bilinearSecondOrder(conjPole, sampleRate),
	}
}

// Filter runs one sample through the cascade.
func (f *LowpassFilter) Filter(input float64) float64 {
	return f.second.filter(f.first.filter(input))
}

// Reset clears the filter's delay lines, leaving its design
// coefficients untouched.
func (f *LowpassFilter) Reset() {
	f.first.reset()
	f.second.reset()
}

// chebyshev3Poles returns the one real pole and one representative of
// the conjugate pair of the analog Chebyshev type I prototype of
// order 3, scaled to cutoff (rad/s) cutoffRad.
func chebyshev3Poles(rippleDB, cutoffRad float64) (realPole float64, conjPole complex128) {
	epsilon := math.Sqrt(math.Pow(10, rippleDB/10) - 1)
	mu := math.Asinh(1/epsilon) / 3
	sh, ch := math.Sinh(mu), math.Cosh(mu)

	const thetaReal = math.Pi / 2 // k=1 of theta_k = pi*(2k+1)/(2n), n=3
	const thetaConj = math.Pi / 6 // k=0

	realPole = -sh * math.Sin(thetaReal) * cutoffRad
	sigma := -sh * math.Sin(thetaConj) * cutoffRad
	omega := ch * math.Cos(thetaConj) * cutoffRad
	conjPole = complex(sigma, omega)
	return realPole, conjPole
}

// bilinearFirstOrder maps a real analog pole p (unity DC gain,
// H(s) = -p/(s-p)) to a digital first-order section via the bilinear
// transform s = 2*fs*(z-1)/(z+1).
func bilinearFirstOrder(p, fs float64) firstOrderSection {
	d := 2*fs - p
	b := -p / d
	a1 := -(2*fs + p) / d
	return firstOrderSection{b0: b, b1: b, a1: a1}
}

// bilinearSecondOrder maps a conjugate analog pole pair p, conj(p)
// (unity DC gain, H(s) = |p|^2/(s^2 - 2*Re(p)*s + |p|^2)) to a digital
// biquad via the same bilinear transform.
func bilinearSecondOrder(p complex128, fs float64) lowpassSection {
	c := 2 * fs
	sigma, omega := real(p), imag(p)
	wn2 := sigma*sigma + omega*omega

	a0 := c*c - 2*sigma*c + wn2
	b0 := wn2 / a0
	b1 := 2 * wn2 / a0
	b2 := wn2 / a0
	a1 := (-2*c*c + 2*wn2) / a0
	a2 := (c*c + 2*sigma*c + wn2) / a0
	return lowpassSection{b0: b0, b1: b1, b2: b2, a1: a1, a2: a2}
}
