package projection

import "math"

const (
	epsilon   = 1e-6
	halfPi    = math.Pi / 2
	quarterPi = math.Pi / 4
	radians   = math.Pi / 180
	degrees   = 180 / math.Pi
)

// rawProjection is a unit-scale spherical projection. Inputs are rotated
// longitude/latitude in radians; outputs are projected plane coordinates
// before scale/translate. invert reports ok=false when the plane point has
// no spherical preimage.
type rawProjection interface {
	project(lambda, phi float64) (x, y float64)
	invert(x, y float64) (lambda, phi float64, ok bool)
}

// ---------------------------------------------------------------------------
// Cylindrical

type mercatorRaw struct{}

func (mercatorRaw) project(lambda, phi float64) (float64, float64) {
	return lambda, math.Log(math.Tan((halfPi + phi) / 2))
}

func (mercatorRaw) invert(x, y float64) (float64, float64, bool) {
	return x, 2*math.Atan(math.Exp(y)) - halfPi, true
}

type equirectangularRaw struct{}

func (equirectangularRaw) project(lambda, phi float64) (float64, float64) {
	return lambda, phi
}

func (equirectangularRaw) invert(x, y float64) (float64, float64, bool) {
	return x, y, true
}

// cylindricalEqualAreaRaw is the degenerate fallback for conic-equal-area
// when the standard parallels are symmetric about the equator.
type cylindricalEqualAreaRaw struct {
	cosPhi0 float64
}

func (c cylindricalEqualAreaRaw) project(lambda, phi float64) (float64, float64) {
	return lambda * c.cosPhi0, math.Sin(phi) / c.cosPhi0
}

func (c cylindricalEqualAreaRaw) invert(x, y float64) (float64, float64, bool) {
	s := y * c.cosPhi0
	if s < -1 || s > 1 {
		return 0, 0, false
	}
	return x / c.cosPhi0, math.Asin(s), true
}

// ---------------------------------------------------------------------------
// Conic

type conicConformalRaw struct {
	n, f float64
}

// newConicConformalRaw builds a Lambert conformal conic for the given
// standard parallels (radians). Equal parallels degrade to the single-cone
// case; n == 0 degrades to Mercator.
func newConicConformalRaw(phi0, phi1 float64) rawProjection {
	cy0 := math.Cos(phi0)
	var n float64
	if math.Abs(phi0-phi1) < epsilon {
		n = math.Sin(phi0)
	} else {
		n = math.Log(cy0/math.Cos(phi1)) /
			math.Log(math.Tan(quarterPi+phi1/2)/math.Tan(quarterPi+phi0/2))
	}
	if math.Abs(n) < epsilon {
		return mercatorRaw{}
	}
	f := cy0 * math.Pow(math.Tan(quarterPi+phi0/2), n) / n
	return conicConformalRaw{n: n, f: f}
}

func (c conicConformalRaw) project(lambda, phi float64) (float64, float64) {
	// Clamp latitudes at the poles to keep tan finite.
	if c.f > 0 {
		if phi < -halfPi+epsilon {
			phi = -halfPi + epsilon
		}
	} else if phi > halfPi-epsilon {
		phi = halfPi - epsilon
	}
	r := c.f / math.Pow(math.Tan(quarterPi+phi/2), c.n)
	return r * math.Sin(c.n*lambda), c.f - r*math.Cos(c.n*lambda)
}

func (c conicConformalRaw) invert(x, y float64) (float64, float64, bool) {
	fy := c.f - y
	r := sign(c.n) * math.Sqrt(x*x+fy*fy)
	if r == 0 {
		return 0, sign(c.n) * halfPi, true
	}
	l := math.Atan2(x, math.Abs(fy)) * sign(fy)
	if fy*c.n < 0 {
		l -= math.Pi * sign(x) * sign(fy)
	}
	phi := 2*math.Atan(math.Pow(c.f/r, 1/c.n)) - halfPi
	return l / c.n, phi, !math.IsNaN(phi)
}

type conicEqualAreaRaw struct {
	n, c, r0 float64
}

// newConicEqualAreaRaw builds an Albers-style equal-area conic for the given
// standard parallels (radians).
func newConicEqualAreaRaw(phi0, phi1 float64) rawProjection {
	sy0 := math.Sin(phi0)
	n := (sy0 + math.Sin(phi1)) / 2
	if math.Abs(n) < epsilon {
		return cylindricalEqualAreaRaw{cosPhi0: math.Cos(phi0)}
	}
	c := 1 + sy0*(2*n-sy0)
	return conicEqualAreaRaw{n: n, c: c, r0: math.Sqrt(c) / n}
}

func (p conicEqualAreaRaw) project(lambda, phi float64) (float64, float64) {
	r := math.Sqrt(p.c-2*p.n*math.Sin(phi)) / p.n
	return r * math.Sin(p.n*lambda), p.r0 - r*math.Cos(p.n*lambda)
}

func (p conicEqualAreaRaw) invert(x, y float64) (float64, float64, bool) {
	r0y := p.r0 - y
	l := math.Atan2(x, math.Abs(r0y)) * sign(r0y)
	if r0y*p.n < 0 {
		l -= math.Pi * sign(x) * sign(r0y)
	}
	s := (p.c - (x*x+r0y*r0y)*p.n*p.n) / (2 * p.n)
	if s < -1 || s > 1 {
		return 0, 0, false
	}
	return l / p.n, math.Asin(s), true
}

// ---------------------------------------------------------------------------
// Azimuthal

// azimuthalScaleRaw covers the azimuthal projections expressible as
// k(cosλ·cosφ) radial scaling, paired with an inverse angular mapping.
type azimuthalScaleRaw struct {
	scale func(cosLambdaCosPhi float64) float64
	angle func(z float64) float64 // plane distance → angular distance
}

func (a azimuthalScaleRaw) project(lambda, phi float64) (float64, float64) {
	cx, cy := math.Cos(lambda), math.Cos(phi)
	k := a.scale(cx * cy)
	if math.IsInf(k, 0) {
		return 2, 0
	}
	return k * cy * math.Sin(lambda), k * math.Sin(phi)
}

func (a azimuthalScaleRaw) invert(x, y float64) (float64, float64, bool) {
	z := math.Sqrt(x*x + y*y)
	c := a.angle(z)
	if math.IsNaN(c) {
		return 0, 0, false
	}
	sc, cc := math.Sin(c), math.Cos(c)
	var phi float64
	if z != 0 {
		s := y * sc / z
		if s < -1 || s > 1 {
			return 0, 0, false
		}
		phi = math.Asin(s)
	}
	return math.Atan2(x*sc, z*cc), phi, true
}

func newAzimuthalEqualAreaRaw() rawProjection {
	return azimuthalScaleRaw{
		scale: func(cxcy float64) float64 { return math.Sqrt(2 / (1 + cxcy)) },
		angle: func(z float64) float64 { return 2 * math.Asin(z/2) },
	}
}

func newAzimuthalEquidistantRaw() rawProjection {
	return azimuthalScaleRaw{
		scale: func(cxcy float64) float64 {
			c := math.Acos(cxcy)
			if c == 0 {
				return 1
			}
			return c / math.Sin(c)
		},
		angle: func(z float64) float64 { return z },
	}
}

type stereographicRaw struct{}

func (stereographicRaw) project(lambda, phi float64) (float64, float64) {
	cy := math.Cos(phi)
	k := 1 + math.Cos(lambda)*cy
	return cy * math.Sin(lambda) / k, math.Sin(phi) / k
}

func (stereographicRaw) invert(x, y float64) (float64, float64, bool) {
	return azimuthalScaleRaw{
		angle: func(z float64) float64 { return 2 * math.Atan(z) },
	}.invert(x, y)
}

// ---------------------------------------------------------------------------
// Pseudocylindrical

type sinusoidalRaw struct{}

func (sinusoidalRaw) project(lambda, phi float64) (float64, float64) {
	return lambda * math.Cos(phi), phi
}

func (sinusoidalRaw) invert(x, y float64) (float64, float64, bool) {
	c := math.Cos(y)
	if math.Abs(c) < epsilon {
		return 0, y, true
	}
	return x / c, y, true
}

type naturalEarthRaw struct{}

func (naturalEarthRaw) project(lambda, phi float64) (float64, float64) {
	phi2 := phi * phi
	phi4 := phi2 * phi2
	x := lambda * (0.8707 - 0.131979*phi2 + phi4*(-0.013791+phi4*(0.003971*phi2-0.001529*phi4)))
	y := phi * (1.007226 + phi2*(0.015085+phi4*(-0.044475+0.028874*phi2-0.005916*phi4)))
	return x, y
}

func (naturalEarthRaw) invert(x, y float64) (float64, float64, bool) {
	phi := y
	// Newton iteration on the odd polynomial in phi.
	for i := 0; i < 25; i++ {
		phi2 := phi * phi
		phi4 := phi2 * phi2
		delta := (phi*(1.007226+phi2*(0.015085+phi4*(-0.044475+0.028874*phi2-0.005916*phi4))) - y) /
			(1.007226 + phi2*(0.015085*3+phi4*(-0.044475*7+0.028874*9*phi2-0.005916*11*phi4)))
		phi -= delta
		if math.Abs(delta) < epsilon {
			break
		}
	}
	phi2 := phi * phi
	phi4 := phi2 * phi2
	denom := 0.8707 - 0.131979*phi2 + phi4*(-0.013791+phi4*(0.003971*phi2-0.001529*phi4))
	if denom == 0 {
		return 0, 0, false
	}
	return x / denom, phi, true
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
