// Command generate draws a neutrino event list and writes it to one or more
// event files for simulation.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/polarfield-data/radiomc/internal/config"
	"github.com/polarfield-data/radiomc/internal/event"
	"github.com/polarfield-data/radiomc/internal/eventio"
	"github.com/polarfield-data/radiomc/internal/evtgen"
	"github.com/polarfield-data/radiomc/internal/randomness"
	"github.com/polarfield-data/radiomc/internal/units"
)

func parseFlavors(s string) ([]int32, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid flavor '%s': %w", p, err)
		}
		out = append(out, int32(v))
	}
	return out, nil
}

func buildVolume(geometry string, rMin, rMax, xMin, xMax, yMin, yMax, zMin, zMax float64) (evtgen.Volume, error) {
	switch geometry {
	case "cylinder":
		return evtgen.Cylinder(rMin, rMax, zMin, zMax), nil
	case "box":
		return evtgen.Box(xMin, xMax, yMin, yMax, zMin, zMax), nil
	}
	return evtgen.Volume{}, fmt.Errorf("unknown geometry %q", geometry)
}

func main() {
	var (
		out          = flag.String("out", "events.arrow", "output event file")
		nEvents      = flag.Int64("n", 1000, "number of events to generate")
		eMin         = flag.Float64("emin", 1e17, "minimum energy in eV")
		eMax         = flag.Float64("emax", 1e19, "maximum energy in eV")
		spectrum     = flag.String("spectrum", "log_uniform", "energy spectrum (log_uniform, E-<gamma>, IceCube-nu-2017, GZK-1, GZK-1+IceCube-nu-2017)")
		flavors      = flag.String("flavors", "", "comma separated PDG codes, empty for all neutrino flavors")
		interaction  = flag.String("interaction", "ccnc", "interaction mode: ccnc, cc or nc")
		thetaMin     = flag.Float64("thetamin", 0, "minimum zenith in degrees")
		thetaMax     = flag.Float64("thetamax", 180, "maximum zenith in degrees")
		phiMin       = flag.Float64("phimin", 0, "minimum azimuth in degrees")
		phiMax       = flag.Float64("phimax", 360, "maximum azimuth in degrees")
		geometry     = flag.String("geometry", "cylinder", "fiducial volume shape: cylinder or box")
		rMin         = flag.Float64("rmin", 0, "cylinder inner radius in m")
		rMax         = flag.Float64("rmax", 4000, "cylinder outer radius in m")
		xMin         = flag.Float64("xmin", -2000, "box x lower bound in m")
		xMax         = flag.Float64("xmax", 2000, "box x upper bound in m")
		yMin         = flag.Float64("ymin", -2000, "box y lower bound in m")
		yMax         = flag.Float64("ymax", 2000, "box y upper bound in m")
		zMin         = flag.Float64("zmin", -2700, "bottom of the volume in m")
		zMax         = flag.Float64("zmax", 0, "top of the volume in m")
		deposited    = flag.Bool("deposited", false, "treat energies as deposited instead of neutrino energies")
		muons        = flag.Bool("muons", false, "generate atmospheric surface muons instead of neutrinos")
		startEventID = flag.Int64("start-event-id", 0, "id of the first event group")
		nPerFile     = flag.Int64("n-per-file", 0, "split output into files of this many events, 0 for a single file")
		startFileID  = flag.Int("start-file-id", 0, "numbering offset for part files")
		configPath   = flag.String("config", "", "run configuration JSON")
		seed         = flag.Int64("seed", 0, "override the random seed, 0 uses the config value")
	)
	flag.Parse()

	cfg := config.EmptyRunConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *seed != 0 {
		randomness.SetGlobalSeed(*seed)
	} else {
		randomness.SetGlobalSeed(cfg.GetSeed())
	}

	fl, err := parseFlavors(*flavors)
	if err != nil {
		log.Fatalf("parse flavors: %v", err)
	}
	vol, err := buildVolume(*geometry, *rMin, *rMax, *xMin, *xMax, *yMin, *yMax, *zMin, *zMax)
	if err != nil {
		log.Fatalf("build volume: %v", err)
	}

	p := evtgen.Params{
		NEvents:      *nEvents,
		StartEventID: *startEventID,
		Flavors:      fl,
		EMin:         *eMin * units.EV,
		EMax:         *eMax * units.EV,
		Spectrum:     *spectrum,
		Interaction:  *interaction,
		ThetaMin:     *thetaMin * units.Deg,
		ThetaMax:     *thetaMax * units.Deg,
		PhiMin:       *phiMin * units.Deg,
		PhiMax:       *phiMax * units.Deg,
		Volume:       vol,
		Deposited:    *deposited,
	}

	var ds *event.Dataset
	if *muons {
		ds, err = evtgen.GenerateSurfaceMuons(p)
	} else {
		ds, err = evtgen.GenerateEventList(p)
	}
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	files, err := eventio.WriteSplit(*out, ds, *nPerFile, *startFileID)
	if err != nil {
		log.Fatalf("write: %v", err)
	}
	log.Printf("wrote %d showers to %d file(s)", ds.Len(), len(files))
}
