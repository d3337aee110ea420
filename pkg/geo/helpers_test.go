package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
)

func rect(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

func feature(tag string, g orb.Geometry) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties["type"] = tag
	return f
}

func collection(t *testing.T, features ...*geojson.Feature) []byte {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	return data
}

// asset spans 2 degrees of longitude, so the projection scale is 10
func asset() *geojson.Feature {
	return feature("asset", rect(0, 0, 2, 1))
}
