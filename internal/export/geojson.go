package export

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/wifisurvey/internal/cluster"
	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/snapshot"
)

// Feature kinds.
const (
	KindCluster     = "cluster"
	KindAccessPoint = "access_point"
	KindObserver    = "observer"
)

// GeoJSONOptions selects what goes into the feature collection.
type GeoJSONOptions struct {
	// Members adds one point per positioned access point.
	Members bool
	// Observer adds the observer position.
	Observer bool
}

func point(p model.GeoPosition) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{p.Longitude, p.Latitude})
}

func clusterFeature(c *cluster.Cluster) *geojson.Feature {
	return &geojson.Feature{
		ID:       c.SSID,
		Geometry: point(*c.Center),
		Properties: map[string]interface{}{
			"kind":                   KindCluster,
			"ssid":                   c.SSID,
			"network_count":          c.NetworkCount,
			"primary_security":       c.PrimarySecurityType.String(),
			"is_open":                c.IsOpen,
			"risk":                   c.OverallRisk.String(),
			"risk_color":             c.OverallRisk.Color(),
			"average_rssi":           c.AverageRSSI,
			"bands":                  c.Bands,
			"channels":               c.Channels,
			"coverage_radius_meters": c.CoverageRadius,
			"accuracy_meters":        c.Center.AccuracyMeters,
			"snippet":                MapSnippet(c),
		},
	}
}

func memberFeature(o model.Observation) *geojson.Feature {
	return &geojson.Feature{
		ID:       o.BSSID,
		Geometry: point(*o.Position),
		Properties: map[string]interface{}{
			"kind":            KindAccessPoint,
			"ssid":            o.SSID,
			"bssid":           o.BSSID,
			"rssi":            o.RSSI,
			"channel":         o.Channel,
			"band":            o.Band,
			"security":        o.Security.String(),
			"risk":            o.Risk.String(),
			"risk_color":      o.Risk.Color(),
			"distance_meters": o.DistanceMeters,
			"accuracy_meters": o.Position.AccuracyMeters,
		},
	}
}

// FeatureCollection builds the map layer of a snapshot: one point per placed
// cluster, riskiest first. Clusters without a centroid are left out.
func FeatureCollection(snap *snapshot.Snapshot, opts GeoJSONOptions) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	if opts.Observer {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       "observer",
			Geometry: point(snap.ObserverPosition),
			Properties: map[string]interface{}{
				"kind":            KindObserver,
				"accuracy_meters": snap.ObserverPosition.AccuracyMeters,
			},
		})
	}
	for _, c := range snap.Clusters.Sorted() {
		if !c.Placed() {
			continue
		}
		fc.Features = append(fc.Features, clusterFeature(c))
		if !opts.Members {
			continue
		}
		for _, m := range c.Members {
			if m.Position != nil {
				fc.Features = append(fc.Features, memberFeature(m))
			}
		}
	}
	return fc
}

// GeoJSON encodes the snapshot's map layer.
func GeoJSON(snap *snapshot.Snapshot, opts GeoJSONOptions) ([]byte, error) {
	data, err := FeatureCollection(snap, opts).MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "export: encode geojson")
	}
	return data, nil
}
