package projection

import "math"

// rotation is a three-axis spherical rotation (yaw, pitch, roll in radians)
// applied to longitude/latitude before the raw projection.
type rotation struct {
	deltaLambda   float64
	rotatesSphere bool // pitch or roll present
	cosDeltaPhi   float64
	sinDeltaPhi   float64
	cosDeltaGamma float64
	sinDeltaGamma float64
}

func newRotation(deltaLambda, deltaPhi, deltaGamma float64) rotation {
	return rotation{
		deltaLambda:   normalizeLambda(deltaLambda),
		rotatesSphere: deltaPhi != 0 || deltaGamma != 0,
		cosDeltaPhi:   math.Cos(deltaPhi),
		sinDeltaPhi:   math.Sin(deltaPhi),
		cosDeltaGamma: math.Cos(deltaGamma),
		sinDeltaGamma: math.Sin(deltaGamma),
	}
}

func (r rotation) identity() bool {
	return r.deltaLambda == 0 && !r.rotatesSphere
}

func (r rotation) forward(lambda, phi float64) (float64, float64) {
	lambda = normalizeLambda(lambda + r.deltaLambda)
	if !r.rotatesSphere {
		return lambda, phi
	}
	cosPhi := math.Cos(phi)
	x := math.Cos(lambda) * cosPhi
	y := math.Sin(lambda) * cosPhi
	z := math.Sin(phi)
	k := z*r.cosDeltaPhi + x*r.sinDeltaPhi
	return math.Atan2(y*r.cosDeltaGamma-k*r.sinDeltaGamma, x*r.cosDeltaPhi-z*r.sinDeltaPhi),
		math.Asin(clamp1(k*r.cosDeltaGamma + y*r.sinDeltaGamma))
}

func (r rotation) inverse(lambda, phi float64) (float64, float64) {
	if r.rotatesSphere {
		cosPhi := math.Cos(phi)
		x := math.Cos(lambda) * cosPhi
		y := math.Sin(lambda) * cosPhi
		z := math.Sin(phi)
		k := z*r.cosDeltaGamma - y*r.sinDeltaGamma
		lambda = math.Atan2(y*r.cosDeltaGamma+z*r.sinDeltaGamma, x*r.cosDeltaPhi+k*r.sinDeltaPhi)
		phi = math.Asin(clamp1(k*r.cosDeltaPhi - x*r.sinDeltaPhi))
	}
	return normalizeLambda(lambda - r.deltaLambda), phi
}

// normalizeLambda wraps a longitude into (-π, π].
func normalizeLambda(lambda float64) float64 {
	for lambda > math.Pi {
		lambda -= 2 * math.Pi
	}
	for lambda <= -math.Pi {
		lambda += 2 * math.Pi
	}
	return lambda
}

func clamp1(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
