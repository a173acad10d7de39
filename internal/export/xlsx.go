package export

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/wifisurvey/internal/geo"
	"github.com/sells-group/wifisurvey/internal/snapshot"
)

// Workbook sheet names.
const (
	SheetClusters     = "Clusters"
	SheetAccessPoints = "Access Points"
	SheetSpectrum     = "Spectrum"
)

var (
	clusterHeader = []string{
		"SSID", "Access Points", "Primary Security", "Open", "Risk", "Average RSSI",
		"Min RSSI", "Max RSSI", "Bands", "Channels", "Latitude", "Longitude",
		"Accuracy (m)", "Coverage (m)",
	}
	accessPointHeader = []string{
		"SSID", "BSSID", "RSSI", "Signal", "Frequency (MHz)", "Channel", "Band",
		"Capabilities", "Security", "Risk", "Distance (m)", "Latitude", "Longitude",
	}
)

type sheetWriter struct {
	sheet *xlsx.Sheet
}

func addSheet(f *xlsx.File, name string, header []string) (*sheetWriter, error) {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "export: add sheet %s", name)
	}
	w := &sheetWriter{sheet: sheet}
	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}
	return w, nil
}

// row appends a row; cells are typed by the Go value.
func (w *sheetWriter) row(vals ...interface{}) {
	r := w.sheet.AddRow()
	for _, v := range vals {
		c := r.AddCell()
		switch x := v.(type) {
		case int:
			c.SetInt(x)
		case float64:
			c.SetFloat(x)
		case bool:
			c.SetBool(x)
		case nil:
		default:
			c.SetString(toString(x))
		}
	}
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case interface{ String() string }:
		return x.String()
	default:
		return ""
	}
}

// Workbook builds the XLSX workbook of a snapshot.
func Workbook(snap *snapshot.Snapshot) (*xlsx.File, error) {
	f := xlsx.NewFile()

	clusters, err := addSheet(f, SheetClusters, clusterHeader)
	if err != nil {
		return nil, err
	}
	aps, err := addSheet(f, SheetAccessPoints, accessPointHeader)
	if err != nil {
		return nil, err
	}
	spec, err := addSheet(f, SheetSpectrum, []string{"Metric", "Value"})
	if err != nil {
		return nil, err
	}

	for _, c := range snap.Clusters.Sorted() {
		var lat, lon, acc interface{}
		if c.Center != nil {
			lat, lon, acc = c.Center.Latitude, c.Center.Longitude, c.Center.AccuracyMeters
		}
		clusters.row(
			c.SSID, c.NetworkCount, c.PrimarySecurityType, c.IsOpen, c.OverallRisk,
			c.AverageRSSI, c.MinRSSI, c.MaxRSSI, strings.Join(c.Bands, "+"), joinInts(c.Channels),
			lat, lon, acc, c.CoverageRadius,
		)
		for _, m := range c.Members {
			var mlat, mlon, dist interface{}
			if m.Position != nil {
				mlat, mlon = m.Position.Latitude, m.Position.Longitude
			}
			if m.HasDistance() {
				dist = m.DistanceMeters
			}
			aps.row(
				m.SSID, m.BSSID, m.RSSI, geo.SignalQuality(m.RSSI), m.FrequencyMHz, m.Channel, m.Band,
				m.Capabilities, m.Security, m.Risk, dist, mlat, mlon,
			)
		}
	}

	spec.row("Observations", snap.Spectrum.ObservationCount)
	spec.row("Scan radius (m)", snap.Spectrum.ScanRadiusMeters)
	spec.row("Density (per km²)", snap.Spectrum.DensityPerKm2)
	spec.row("Recommended channel", snap.Spectrum.RecommendedChannel)
	spec.row("Secure", snap.Security.Secure())
	spec.row("Vulnerable", snap.Security.Vulnerable())
	for _, band := range snap.Spectrum.Bands() {
		spec.row("Band "+band, snap.Spectrum.BandCounts[band])
	}

	return f, nil
}

// WriteXLSX writes the snapshot workbook to w.
func WriteXLSX(w io.Writer, snap *snapshot.Snapshot) error {
	f, err := Workbook(snap)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}
