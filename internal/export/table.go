package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sells-group/wifisurvey/internal/snapshot"
)

// Table writes one row per cluster, riskiest first.
func Table(out io.Writer, snap *snapshot.Snapshot) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SSID\tAPS\tSECURITY\tRISK\tAVG_RSSI\tBANDS\tCENTER\tCOVERAGE_M")
	for _, c := range snap.Clusters.Sorted() {
		center := "-"
		if c.Center != nil {
			center = fmt.Sprintf("%.6f,%.6f", c.Center.Latitude, c.Center.Longitude)
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\t%s\t%.0f\n",
			c.SSID,
			c.NetworkCount,
			c.PrimarySecurityType,
			c.OverallRisk,
			c.AverageRSSI,
			joinBands(c.Bands),
			center,
			c.CoverageRadius,
		)
	}
	return w.Flush()
}

func joinBands(bands []string) string {
	if len(bands) == 0 {
		return "-"
	}
	return strings.Join(bands, "+")
}
