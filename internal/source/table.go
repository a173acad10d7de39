package source

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/spectrum"
)

// Sighting tables have one access point per row, either WiGLE exports or
// sheets with the same columns. A table is one survey, so all rows form a
// single batch: the earliest capture time is the batch time and the observer
// position is taken from the earliest row that carries one.

type column int

const (
	colBSSID column = iota
	colSSID
	colCapabilities
	colCapturedAt
	colFrequency
	colChannel
	colRSSI
	colLatitude
	colLongitude
	colAccuracy
	colType
)

var columnAliases = map[string]column{
	"mac":              colBSSID,
	"bssid":            colBSSID,
	"ssid":             colSSID,
	"authmode":         colCapabilities,
	"capabilities":     colCapabilities,
	"firstseen":        colCapturedAt,
	"captured_at":      colCapturedAt,
	"frequency":        colFrequency,
	"frequency_mhz":    colFrequency,
	"channel":          colChannel,
	"rssi":             colRSSI,
	"currentlatitude":  colLatitude,
	"latitude":         colLatitude,
	"currentlongitude": colLongitude,
	"longitude":        colLongitude,
	"accuracymeters":   colAccuracy,
	"accuracy_meters":  colAccuracy,
	"type":             colType,
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

type tableHeader map[column]int

func parseHeader(cells []string) (tableHeader, error) {
	h := make(tableHeader)
	for i, c := range cells {
		if col, ok := columnAliases[strings.ToLower(strings.TrimSpace(c))]; ok {
			if _, dup := h[col]; !dup {
				h[col] = i
			}
		}
	}
	for _, required := range []column{colBSSID, colRSSI} {
		if _, ok := h[required]; !ok {
			return nil, eris.New("source: table header needs bssid and rssi columns")
		}
	}
	_, hasFreq := h[colFrequency]
	_, hasChan := h[colChannel]
	if !hasFreq && !hasChan {
		return nil, eris.New("source: table header needs a frequency or channel column")
	}
	return h, nil
}

func (h tableHeader) cell(row []string, col column) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h tableHeader) number(row []string, col column) (float64, error) {
	s := h.cell(row, col)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// rowsToBatches folds table rows into one batch.
func rowsToBatches(rows [][]string) ([]model.ObservationBatch, error) {
	// WiGLE files open with a pre-header line.
	for len(rows) > 0 && strings.HasPrefix(strings.TrimSpace(firstCell(rows[0])), "WigleWifi") {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, nil
	}
	h, err := parseHeader(rows[0])
	if err != nil {
		return nil, err
	}

	var (
		batch    model.ObservationBatch
		observed time.Time
		hasPos   bool
	)
	for i, row := range rows[1:] {
		line := i + 2
		if t := h.cell(row, colType); t != "" && !strings.EqualFold(t, "WIFI") {
			continue
		}
		if isBlank(row) {
			continue
		}

		s, pos, at, err := h.sighting(row)
		if err != nil {
			return nil, eris.Wrapf(err, "source: table row %d", line)
		}
		batch.Sightings = append(batch.Sightings, s)

		if !at.IsZero() && (batch.CapturedAt.IsZero() || at.Before(batch.CapturedAt)) {
			batch.CapturedAt = at
		}
		if !hasLocation(pos) {
			continue
		}
		if !hasPos || (!at.IsZero() && (observed.IsZero() || at.Before(observed))) {
			batch.ObserverPosition = pos
			observed = at
			hasPos = true
		}
	}
	if len(batch.Sightings) == 0 {
		return nil, nil
	}
	return []model.ObservationBatch{batch}, nil
}

func hasLocation(pos model.GeoPosition) bool {
	return pos.Latitude != 0 || pos.Longitude != 0
}

func (h tableHeader) sighting(row []string) (model.RawSighting, model.GeoPosition, time.Time, error) {
	var s model.RawSighting
	var pos model.GeoPosition

	rssi, err := strconv.Atoi(h.cell(row, colRSSI))
	if err != nil {
		return s, pos, time.Time{}, eris.Wrap(err, "rssi")
	}
	freq, err := h.number(row, colFrequency)
	if err != nil {
		return s, pos, time.Time{}, eris.Wrap(err, "frequency")
	}
	if freq == 0 {
		ch, err := h.number(row, colChannel)
		if err != nil {
			return s, pos, time.Time{}, eris.Wrap(err, "channel")
		}
		freq = float64(spectrum.FrequencyFor(int(ch)))
	}
	lat, err := h.number(row, colLatitude)
	if err != nil {
		return s, pos, time.Time{}, eris.Wrap(err, "latitude")
	}
	lon, err := h.number(row, colLongitude)
	if err != nil {
		return s, pos, time.Time{}, eris.Wrap(err, "longitude")
	}
	acc, err := h.number(row, colAccuracy)
	if err != nil {
		return s, pos, time.Time{}, eris.Wrap(err, "accuracy")
	}
	at, err := parseTime(h.cell(row, colCapturedAt))
	if err != nil {
		return s, pos, time.Time{}, err
	}

	s = model.RawSighting{
		SSID:         h.cell(row, colSSID),
		BSSID:        h.cell(row, colBSSID),
		RSSI:         rssi,
		FrequencyMHz: int(freq),
		Capabilities: h.cell(row, colCapabilities),
	}
	pos = model.GeoPosition{Latitude: lat, Longitude: lon, AccuracyMeters: acc, Provenance: model.ProvenanceMeasured}
	return s, pos, at, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("capture time %q", s)
}

func firstCell(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func decodeCSV(data []byte) ([]model.ObservationBatch, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "source: read csv")
	}
	return rowsToBatches(rows)
}

// decodeXLSX reads the sheet named "Sightings", or the first sheet.
func decodeXLSX(data []byte) ([]model.ObservationBatch, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "source: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, nil
	}
	sheet := f.Sheets[0]
	if named, ok := f.Sheet["Sightings"]; ok {
		sheet = named
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = c.String()
		}
		rows = append(rows, cells)
	}
	return rowsToBatches(rows)
}
