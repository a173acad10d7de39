package source

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/wifisurvey/internal/model"
)

// Format is a batch file encoding.
type Format string

// Supported batch file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var formatsByExt = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".csv":  FormatCSV,
	".xlsx": FormatXLSX,
}

// FormatFor picks the format from a file extension. Unknown extensions are
// read as YAML.
func FormatFor(path string) Format {
	if f, ok := formatsByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return FormatYAML
}

func isBatchFile(name string) bool {
	_, ok := formatsByExt[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Decode reads batches in the given format. JSON and YAML documents hold one
// batch or a list of batches; CSV and XLSX hold a sighting table.
func Decode(r io.Reader, format Format) ([]model.ObservationBatch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "source: read batch")
	}

	var batches []model.ObservationBatch
	switch format {
	case FormatJSON:
		batches, err = decodeJSON(data)
	case FormatYAML:
		batches, err = decodeYAML(data)
	case FormatCSV:
		batches, err = decodeCSV(data)
	case FormatXLSX:
		batches, err = decodeXLSX(data)
	default:
		return nil, eris.Errorf("source: unknown format %q", format)
	}
	if err != nil {
		return nil, err
	}

	for i := range batches {
		if batches[i].ObserverPosition.Provenance == "" {
			batches[i].ObserverPosition.Provenance = model.ProvenanceMeasured
		}
		if err := batches[i].Validate(); err != nil {
			return nil, eris.Wrapf(err, "source: batch %d", i)
		}
	}
	return batches, nil
}

func decodeJSON(data []byte) ([]model.ObservationBatch, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var batches []model.ObservationBatch
		if err := json.Unmarshal(trimmed, &batches); err != nil {
			return nil, eris.Wrap(err, "source: decode batch list")
		}
		return batches, nil
	}
	var b model.ObservationBatch
	if err := json.Unmarshal(trimmed, &b); err != nil {
		return nil, eris.Wrap(err, "source: decode batch")
	}
	return []model.ObservationBatch{b}, nil
}

func decodeYAML(data []byte) ([]model.ObservationBatch, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "source: parse yaml")
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var batches []model.ObservationBatch
		if err := root.Decode(&batches); err != nil {
			return nil, eris.Wrap(err, "source: decode batch list")
		}
		return batches, nil
	}
	var b model.ObservationBatch
	if err := root.Decode(&b); err != nil {
		return nil, eris.Wrap(err, "source: decode batch")
	}
	return []model.ObservationBatch{b}, nil
}

// LoadFile decodes all batches in a file.
func LoadFile(path string) ([]model.ObservationBatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	batches, err := Decode(f, FormatFor(path))
	if err != nil {
		return nil, eris.Wrapf(err, "source: load %s", path)
	}
	return batches, nil
}

// ExpandPaths replaces directories with the batch files they contain, in
// name order. Plain files are kept as given.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, eris.Wrapf(err, "source: stat %s", p)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := listBatchFiles(p)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func listBatchFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read dir %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !isBatchFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// LoadPaths decodes every batch from the given files and directories.
func LoadPaths(paths ...string) ([]model.ObservationBatch, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, err
	}
	var batches []model.ObservationBatch
	for _, f := range files {
		bs, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		batches = append(batches, bs...)
	}
	return batches, nil
}
