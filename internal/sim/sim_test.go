package sim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarfield-data/radiomc/internal/config"
	"github.com/polarfield-data/radiomc/internal/detector"
	"github.com/polarfield-data/radiomc/internal/event"
	"github.com/polarfield-data/radiomc/internal/medium"
	"github.com/polarfield-data/radiomc/internal/randomness"
	"github.com/polarfield-data/radiomc/internal/rundb"
	"github.com/polarfield-data/radiomc/internal/units"
)

var testIce = medium.Uniform{N: 1.78}

func testDetector() *detector.Description {
	return &detector.Description{
		Stations: []detector.Station{
			{ID: 11, Channels: []detector.Channel{
				{ID: 0, Z: -100},
			}},
		},
	}
}

// vertexAtViewingAngle places a vertex so that the direct path to
// (0, 0, channelZ) views the shower axis at the given angle.
func vertexAtViewingAngle(zenith, view, distance, channelZ float64) (x, y, z float64) {
	ax := -math.Sin(zenith)
	az := -math.Cos(zenith)
	// rotate the axis by the viewing angle around y
	vx := ax*math.Cos(view) + az*math.Sin(view)
	vz := -ax*math.Sin(view) + az*math.Cos(view)
	return -distance * vx, 0, channelZ - distance*vz
}

func singleShowerDataset(x, y, z, zenith float64) *event.Dataset {
	return &event.Dataset{
		EventGroupIDs:   []int64{1},
		ShowerIDs:       []int64{0},
		NInteraction:    []int32{1},
		XX:              []float64{x},
		YY:              []float64{y},
		ZZ:              []float64{z},
		VertexTimes:     []float64{0},
		Zeniths:         []float64{zenith},
		Azimuths:        []float64{0},
		Flavors:         []int32{event.FlavorNuMu},
		Energies:        []float64{5e18 * units.EV},
		ShowerEnergies:  []float64{1e18 * units.EV},
		ShowerTypes:     []string{event.ShowerHadronic},
		InteractionType: []string{event.InteractionCC},
		Inelasticity:    []float64{0.2},
		Attrs:           event.Attributes{NEvents: 1, TotalNumberOfEvents: 1, StartEventID: 1},
	}
}

func TestRunTriggersNearCone(t *testing.T) {
	randomness.SetGlobalSeed(1234)
	cfg := config.EmptyRunConfig()
	e := New(cfg, testDetector(), testIce)

	thetaC := math.Acos(1 / 1.78)
	zenith := 55.8 * units.Deg
	// place the vertex 2 degrees off the cone
	x, y, z := vertexAtViewingAngle(zenith, thetaC+2*units.Deg, 800, -100)
	ds := singleShowerDataset(x, y, z, zenith)

	res, err := e.Run(context.Background(), ds)
	require.NoError(t, err)

	require.NotEmpty(t, res.Triggers, "EeV shower 800m away must trigger")
	assert.Equal(t, int64(1), res.NTriggered)
	assert.Equal(t, 1, res.Triggered.Len())

	tr := res.Triggers[0]
	assert.Equal(t, int64(1), tr.EventGroupID)
	assert.Equal(t, 11, tr.StationID)
	assert.Equal(t, 1.0, tr.Weight, "downgoing events carry full weight")
	assert.GreaterOrEqual(t, tr.Amplitude, cfg.GetTriggerThreshold())
	assert.Greater(t, tr.TravelTime, 0.0)
	assert.InDelta(t, thetaC, tr.ViewingAngle, 3*units.Deg)
	assert.Equal(t, 1.0, res.SumWeights)
}

func TestRunRespectsViewingAngleCut(t *testing.T) {
	randomness.SetGlobalSeed(1234)
	cfg := config.EmptyRunConfig()
	e := New(cfg, testDetector(), testIce)

	zenith := 55.8 * units.Deg
	// 40 degrees off the cone, far outside the default 15 degree window
	x, y, z := vertexAtViewingAngle(zenith, math.Acos(1/1.78)+40*units.Deg, 800, -100)
	ds := singleShowerDataset(x, y, z, zenith)

	res, err := e.Run(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.NTriggered)
	assert.Empty(t, res.Triggers)
	assert.Zero(t, res.Triggered.Len())
}

func TestRunChannelThresholdOverride(t *testing.T) {
	randomness.SetGlobalSeed(1234)
	cfg := config.EmptyRunConfig()

	high := 1e9
	det := testDetector()
	det.Stations[0].Channels = append(det.Stations[0].Channels,
		detector.Channel{ID: 1, Z: -100, TriggerThresholdMicroVolt: &high})
	e := New(cfg, det, testIce)

	zenith := 55.8 * units.Deg
	x, y, z := vertexAtViewingAngle(zenith, math.Acos(1/1.78)+2*units.Deg, 800, -100)
	res, err := e.Run(context.Background(), singleShowerDataset(x, y, z, zenith))
	require.NoError(t, err)

	require.NotEmpty(t, res.Triggers)
	for _, tr := range res.Triggers {
		assert.Equal(t, 0, tr.ChannelID, "only the default-threshold channel may fire")
	}
}

func TestRunSkipsPlaceholderRows(t *testing.T) {
	cfg := config.EmptyRunConfig()
	e := New(cfg, testDetector(), testIce)

	ds := singleShowerDataset(0, 0, -500, 1.0)
	ds.ShowerEnergies[0] = 0
	ds.InteractionType[0] = ""

	res, err := e.Run(context.Background(), ds)
	require.NoError(t, err)
	assert.Empty(t, res.Triggers)
}

func TestRunParallelMatchesAccounting(t *testing.T) {
	randomness.SetGlobalSeed(1234)
	workers := 4
	cfg := &config.RunConfig{Workers: &workers}
	e := New(cfg, testDetector(), testIce)

	zenith := 55.8 * units.Deg
	var ds *event.Dataset
	for i := 0; i < 12; i++ {
		// alternate between on-cone and far off-cone geometries
		view := math.Acos(1/1.78) + 2*units.Deg
		if i%2 == 1 {
			view += 38 * units.Deg
		}
		x, y, z := vertexAtViewingAngle(zenith, view, 800, -100)
		one := singleShowerDataset(x, y, z, zenith)
		one.EventGroupIDs[0] = int64(i + 1)
		if ds == nil {
			ds = one
		} else {
			ds.Append(one)
		}
	}
	ds.Attrs.NEvents = 12
	ds.Attrs.TotalNumberOfEvents = 12

	res, err := e.Run(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.NTriggered, "every on-cone group must trigger")
	assert.Equal(t, 6, res.Triggered.Len())
	assert.Equal(t, 6.0, res.SumWeights)
}

func TestRunParallelReproducible(t *testing.T) {
	workers := 8
	cfg := &config.RunConfig{Workers: &workers}

	zenith := 55.8 * units.Deg
	view := math.Acos(1/1.78) + 2*units.Deg
	build := func() *event.Dataset {
		var ds *event.Dataset
		for i := 0; i < 20; i++ {
			x, y, z := vertexAtViewingAngle(zenith, view, 800, -100)
			one := singleShowerDataset(x, y, z, zenith)
			one.EventGroupIDs[0] = int64(i + 1)
			if ds == nil {
				ds = one
			} else {
				ds.Append(one)
			}
		}
		ds.Attrs.NEvents = 20
		ds.Attrs.TotalNumberOfEvents = 20
		return ds
	}

	run := func() []rundb.Trigger {
		randomness.SetGlobalSeed(4321)
		res, err := New(cfg, testDetector(), testIce).Run(context.Background(), build())
		require.NoError(t, err)
		return res.Triggers
	}

	first := run()
	second := run()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].EventGroupID, second[i].EventGroupID)
		assert.Equal(t, first[i].Amplitude, second[i].Amplitude,
			"amplitudes of group %d differ between identically seeded runs", first[i].EventGroupID)
	}
}

func TestRunRejectsEmptyDetector(t *testing.T) {
	cfg := config.EmptyRunConfig()
	e := New(cfg, &detector.Description{}, testIce)
	_, err := e.Run(context.Background(), singleShowerDataset(0, 0, -500, 1.0))
	require.Error(t, err)
}

func TestGroupRanges(t *testing.T) {
	ds := &event.Dataset{EventGroupIDs: []int64{1, 1, 2, 5, 5, 5}}
	got := groupRanges(ds)
	want := []groupRange{{0, 2}, {2, 3}, {3, 6}}
	require.Equal(t, want, got)

	assert.Empty(t, groupRanges(&event.Dataset{}))
}

func TestSimpleWeight(t *testing.T) {
	e := 1e18 * units.EV
	if got := SimpleWeight(60*units.Deg, e); got != 1 {
		t.Errorf("downgoing weight = %g, want 1", got)
	}
	up := SimpleWeight(170*units.Deg, e)
	if up <= 0 || up >= 1e-6 {
		t.Errorf("nearly vertical upgoing weight = %g, want essentially zero", up)
	}
	// absorption grows with energy
	nearHorizon := SimpleWeight(95*units.Deg, 1e17*units.EV)
	if hi := SimpleWeight(95*units.Deg, 1e19*units.EV); hi >= nearHorizon {
		t.Errorf("weight at higher energy %g not below %g", hi, nearHorizon)
	}
}

func TestNoiseRMS(t *testing.T) {
	base := NoiseRMS(300, 500*units.Megahertz)
	if base <= 0 {
		t.Fatalf("noise rms = %g", base)
	}
	if NoiseRMS(600, 500*units.Megahertz) <= base {
		t.Error("noise must grow with temperature")
	}
	if NoiseRMS(300, units.Gigahertz) <= base {
		t.Error("noise must grow with bandwidth")
	}

	// the default threshold sits above the default noise floor
	cfg := config.EmptyRunConfig()
	if floor := noiseSigma * base; floor >= cfg.GetTriggerThreshold() {
		t.Errorf("default noise floor %g exceeds default threshold %g", floor, cfg.GetTriggerThreshold())
	}
}

func TestEffectiveThreshold(t *testing.T) {
	ch := detector.ResolvedChannel{
		NoiseTemperature: 300,
		Bandwidth:        500 * units.Megahertz,
		TriggerThreshold: 45 * units.MicroVolt / units.Meter,
	}
	if got := effectiveThreshold(ch); got != ch.TriggerThreshold {
		t.Errorf("threshold = %g, want configured %g", got, ch.TriggerThreshold)
	}

	// a threshold below the noise floor is raised to it
	ch.TriggerThreshold = 1 * units.MicroVolt / units.Meter
	want := noiseSigma * NoiseRMS(300, 500*units.Megahertz)
	if got := effectiveThreshold(ch); got != want {
		t.Errorf("threshold = %g, want noise floor %g", got, want)
	}
}
