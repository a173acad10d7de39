package geo

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/sells-group/wifisurvey/internal/model"
)

// MetersPerDegreeLat is the flat-earth conversion used for projection.
const MetersPerDegreeLat = 111320.0

// minCosLat bounds the longitude scale near the poles, where a meter of
// easting spans an unbounded number of degrees.
const minCosLat = 1e-9

// Rand is the random source used for projection. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Projector places an access point at a random point inside the disk of its
// estimated distance around the observer. Repeated sightings of one access
// point therefore spread over the disk instead of stacking on a ring.
type Projector struct {
	mu  sync.Mutex
	rng Rand
}

// NewProjector returns a Projector drawing from rng.
func NewProjector(rng Rand) *Projector {
	return &Projector{rng: rng}
}

// NewSeededProjector returns a Projector backed by a PCG source. A zero seed
// draws a random one.
func NewSeededProjector(seed uint64) *Projector {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return NewProjector(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Project returns an estimated position for an access point at distance meters
// from the observer. A nil bearing draws one uniformly from [0, 2π). The
// radial offset is drawn uniformly from [0, distance]. Returns false for an
// unusable (negative) distance.
func (p *Projector) Project(observer model.GeoPosition, distance float64, bearing *float64) (model.GeoPosition, bool) {
	if distance < 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return model.GeoPosition{}, false
	}

	p.mu.Lock()
	var theta float64
	if bearing != nil {
		theta = *bearing
	} else {
		theta = p.rng.Float64() * 2 * math.Pi
	}
	r := p.rng.Float64() * distance
	p.mu.Unlock()

	dLat := r * math.Cos(theta) / MetersPerDegreeLat
	var dLon float64
	if cosLat := math.Cos(degToRad(observer.Latitude)); math.Abs(cosLat) >= minCosLat {
		dLon = r * math.Sin(theta) / (MetersPerDegreeLat * cosLat)
	}

	return model.GeoPosition{
		Latitude:       observer.Latitude + dLat,
		Longitude:      observer.Longitude + dLon,
		AccuracyMeters: distance,
		Provenance:     model.ProvenanceEstimated,
	}, true
}
