package service

import (
	"math"

	"taxi-booking-service/internal/model"
)

const (
	DefaultBaseFare = 50.0
	DefaultPerKm    = 15.0
)

type FareCalculator struct {
	Base  float64
	PerKm float64
}

func NewFareCalculator(base, perKm float64) FareCalculator {
	return FareCalculator{Base: base, PerKm: perKm}
}

// Fare returns Base + distanceKm*PerKm rounded to cents.
func (c FareCalculator) Fare(distanceKm float64) (float64, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm < 0 {
		return 0, invalid("distance must be a non-negative number")
	}
	return roundCents(c.Base + distanceKm*c.PerKm), nil
}

func (c FareCalculator) Estimate(distanceKm float64) (*model.FareEstimate, error) {
	fare, err := c.Fare(distanceKm)
	if err != nil {
		return nil, err
	}
	return &model.FareEstimate{
		DistanceKm: distanceKm,
		BaseFare:   c.Base,
		PerKm:      c.PerKm,
		Fare:       fare,
	}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
