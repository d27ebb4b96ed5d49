package functions

import "math"

// score damped by a gaussian of the distance, sigma is the distance at
// which the score falls to exp(-2)
func Gaussian(score float64, distance float64, sigma float64) float64 {
	return score * math.Exp(-math.Pow(distance*2, 2)/2/math.Pow(sigma, 2))
}
