// Package eventio reads and writes event sets as Arrow IPC files.
//
// Each file holds one record batch per write with a fixed columnar schema,
// one row per shower. The run attributes travel as schema metadata so that a
// file is self-describing: merging and effective volume bookkeeping only need
// the file itself.
package eventio

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/polarfield-data/radiomc/internal/event"
)

// Format version written into every file.
const (
	VersionMajor = 2
	VersionMinor = 2
)

// header documents the column conventions, mirroring the comment block the
// original text event lists carried.
const header = `all quantities are in internal units (meters, nanoseconds, eV, radians);
coordinate origin at the surface, x towards Easting, y towards Northing, z upwards;
zenith/azimuth point to where the particle came from;
flavors use PDG codes (12 nu_e, 14 nu_mu, 16 nu_tau, negative for anti-particles)`

// Column indices in the file schema.
const (
	colEventGroupID = iota
	colShowerID
	colNInteraction
	colX
	colY
	colZ
	colVertexTime
	colZenith
	colAzimuth
	colFlavor
	colEnergy
	colShowerEnergy
	colShowerType
	colInteractionType
	colInelasticity
	numCols
)

func fields() []arrow.Field {
	return []arrow.Field{
		{Name: "event_group_id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "shower_id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "n_interaction", Type: arrow.PrimitiveTypes.Int32},
		{Name: "x", Type: arrow.PrimitiveTypes.Float64},
		{Name: "y", Type: arrow.PrimitiveTypes.Float64},
		{Name: "z", Type: arrow.PrimitiveTypes.Float64},
		{Name: "vertex_time", Type: arrow.PrimitiveTypes.Float64},
		{Name: "zenith", Type: arrow.PrimitiveTypes.Float64},
		{Name: "azimuth", Type: arrow.PrimitiveTypes.Float64},
		{Name: "flavor", Type: arrow.PrimitiveTypes.Int32},
		{Name: "energy", Type: arrow.PrimitiveTypes.Float64},
		{Name: "shower_energy", Type: arrow.PrimitiveTypes.Float64},
		{Name: "shower_type", Type: arrow.BinaryTypes.String},
		{Name: "interaction_type", Type: arrow.BinaryTypes.String},
		{Name: "inelasticity", Type: arrow.PrimitiveTypes.Float64},
	}
}

// Schema returns the Arrow schema for an event file carrying the given
// attributes as metadata.
func Schema(attrs event.Attributes) *arrow.Schema {
	return SchemaWithMetadata(attrs, nil)
}

// SchemaWithMetadata returns the event file schema with additional metadata
// entries, for example the detector description of a simulation run. Extra
// keys must not collide with attribute keys.
func SchemaWithMetadata(attrs event.Attributes, extra map[string]string) *arrow.Schema {
	md := attrsToMetadata(attrs)
	if len(extra) > 0 {
		keys := append([]string{}, md.Keys()...)
		vals := append([]string{}, md.Values()...)
		names := make([]string, 0, len(extra))
		for k := range extra {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			keys = append(keys, k)
			vals = append(vals, extra[k])
		}
		md = arrow.NewMetadata(keys, vals)
	}
	return arrow.NewSchema(fields(), &md)
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func attrsToMetadata(a event.Attributes) arrow.Metadata {
	flavors, _ := json.Marshal(a.Flavors)
	keys := []string{
		"version_major", "version_minor", "header",
		"n_events", "total_number_of_events", "start_event_id",
		"flavors", "emin", "emax",
		"thetamin", "thetamax", "phimin", "phimax",
		"deposited",
		"fiducial_rmin", "fiducial_rmax",
		"fiducial_xmin", "fiducial_xmax", "fiducial_ymin", "fiducial_ymax",
		"fiducial_zmin", "fiducial_zmax",
		"volume",
	}
	vals := []string{
		strconv.Itoa(VersionMajor), strconv.Itoa(VersionMinor), header,
		strconv.FormatInt(a.NEvents, 10), strconv.FormatInt(a.TotalNumberOfEvents, 10), strconv.FormatInt(a.StartEventID, 10),
		string(flavors), fmtFloat(a.EMin), fmtFloat(a.EMax),
		fmtFloat(a.ThetaMin), fmtFloat(a.ThetaMax), fmtFloat(a.PhiMin), fmtFloat(a.PhiMax),
		strconv.FormatBool(a.Deposited),
		fmtFloat(a.FiducialRMin), fmtFloat(a.FiducialRMax),
		fmtFloat(a.FiducialXMin), fmtFloat(a.FiducialXMax), fmtFloat(a.FiducialYMin), fmtFloat(a.FiducialYMax),
		fmtFloat(a.FiducialZMin), fmtFloat(a.FiducialZMax),
		fmtFloat(a.Volume),
	}
	return arrow.NewMetadata(keys, vals)
}

func metadataToAttrs(md arrow.Metadata) (event.Attributes, error) {
	var a event.Attributes
	get := func(key string) (string, bool) {
		i := md.FindKey(key)
		if i < 0 {
			return "", false
		}
		return md.Values()[i], true
	}
	getInt := func(key string, dst *int64) error {
		s, ok := get(key)
		if !ok {
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("attribute %s: %w", key, err)
		}
		*dst = v
		return nil
	}
	getFloat := func(key string, dst *float64) error {
		s, ok := get(key)
		if !ok {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("attribute %s: %w", key, err)
		}
		*dst = v
		return nil
	}

	if s, ok := get("version_major"); ok {
		a.VersionMajor, _ = strconv.Atoi(s)
	}
	if s, ok := get("version_minor"); ok {
		a.VersionMinor, _ = strconv.Atoi(s)
	}
	if err := getInt("n_events", &a.NEvents); err != nil {
		return a, err
	}
	if err := getInt("total_number_of_events", &a.TotalNumberOfEvents); err != nil {
		return a, err
	}
	if err := getInt("start_event_id", &a.StartEventID); err != nil {
		return a, err
	}
	if s, ok := get("flavors"); ok {
		if err := json.Unmarshal([]byte(s), &a.Flavors); err != nil {
			return a, fmt.Errorf("attribute flavors: %w", err)
		}
	}
	if s, ok := get("deposited"); ok {
		a.Deposited = s == "true"
	}
	floatAttrs := map[string]*float64{
		"emin": &a.EMin, "emax": &a.EMax,
		"thetamin": &a.ThetaMin, "thetamax": &a.ThetaMax,
		"phimin": &a.PhiMin, "phimax": &a.PhiMax,
		"fiducial_rmin": &a.FiducialRMin, "fiducial_rmax": &a.FiducialRMax,
		"fiducial_xmin": &a.FiducialXMin, "fiducial_xmax": &a.FiducialXMax,
		"fiducial_ymin": &a.FiducialYMin, "fiducial_ymax": &a.FiducialYMax,
		"fiducial_zmin": &a.FiducialZMin, "fiducial_zmax": &a.FiducialZMax,
		"volume": &a.Volume,
	}
	for key, dst := range floatAttrs {
		if err := getFloat(key, dst); err != nil {
			return a, err
		}
	}
	return a, nil
}
