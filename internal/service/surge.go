package service

import (
	"context"
	"log"
	"math"

	"rideflux/internal/config"
	"rideflux/internal/domain"
	"rideflux/internal/geo"
	"rideflux/internal/redis"
)

// SurgeService computes zone surge multipliers from demand counters and
// nearby driver supply.
type SurgeService struct {
	surgeStore    redis.SurgeStoreInterface
	locationStore redis.LocationStoreInterface
	cfg           config.SurgeConfig
}

// NewSurgeService creates a new SurgeService.
func NewSurgeService(surgeStore redis.SurgeStoreInterface, locationStore redis.LocationStoreInterface, cfg config.SurgeConfig) *SurgeService {
	return &SurgeService{
		surgeStore:    surgeStore,
		locationStore: locationStore,
		cfg:           cfg,
	}
}

// RecordDemand counts a ride request against the pickup's zone. Failures
// only dull the surge signal, so they are logged and dropped.
func (s *SurgeService) RecordDemand(ctx context.Context, lat, lng float64) {
	zone := geo.ZoneKey(lat, lng)
	if err := s.surgeStore.RecordDemand(ctx, zone); err != nil {
		log.Printf("surge: record demand for zone %s: %v", zone, err)
	}
}

// GetMultiplier returns the surge multiplier for a pickup point, serving
// the cached value when fresh. Store failures fall back to 1.0.
func (s *SurgeService) GetMultiplier(ctx context.Context, lat, lng float64, vehicle domain.VehicleClass) float64 {
	zone := geo.ZoneKey(lat, lng)

	cached, ok, err := s.surgeStore.GetMultiplier(ctx, zone)
	if err != nil {
		log.Printf("surge: multiplier cache read for zone %s: %v", zone, err)
		return 1.0
	}
	if ok {
		return cached
	}

	return s.computeMultiplier(ctx, lat, lng, vehicle, zone)
}

func (s *SurgeService) computeMultiplier(ctx context.Context, lat, lng float64, vehicle domain.VehicleClass, zone string) float64 {
	demand, err := s.surgeStore.GetDemand(ctx, zone)
	if err != nil {
		log.Printf("surge: demand read for zone %s: %v", zone, err)
		return 1.0
	}

	supply, err := s.locationStore.CountNearby(ctx, lat, lng, vehicle, s.cfg.SupplyRadiusKm)
	if err != nil {
		log.Printf("surge: supply count for zone %s: %v", zone, err)
		return 1.0
	}

	var multiplier float64
	if supply == 0 {
		if demand > 0 {
			multiplier = s.cfg.MaxMultiplier
		} else {
			multiplier = 1.0
		}
	} else {
		ratio := float64(demand) / float64(supply)
		multiplier = 1.0 + (ratio-1.0)*0.5
		if multiplier > s.cfg.MaxMultiplier {
			multiplier = s.cfg.MaxMultiplier
		}
		if multiplier < 1.0 {
			multiplier = 1.0
		}
	}

	multiplier = math.Round(multiplier*100) / 100

	if err := s.surgeStore.SetMultiplier(ctx, zone, multiplier); err != nil {
		log.Printf("surge: multiplier cache write for zone %s: %v", zone, err)
	}
	return multiplier
}
