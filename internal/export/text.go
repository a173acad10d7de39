// Package export renders snapshots for people and other tools: text blocks,
// terminal tables, GeoJSON, and XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/wifisurvey/internal/cluster"
	"github.com/sells-group/wifisurvey/internal/geo"
	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/snapshot"
)

// OpenMarker flags open clusters in map snippets.
const OpenMarker = "⚠️ OPEN"

var printer = message.NewPrinter(language.English)

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func securityNames(types []model.SecurityType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// MapSnippet is the one-line marker caption for a cluster, such as
// "2.4GHz+5GHz • WPA2 • 3 APs".
func MapSnippet(c *cluster.Cluster) string {
	sec := c.PrimarySecurityType.String()
	if c.IsOpen {
		sec = OpenMarker
	}
	return fmt.Sprintf("%s • %s • %d APs", strings.Join(c.Bands, "+"), sec, c.NetworkCount)
}

// ClusterDetail writes the full description of a cluster and its members.
func ClusterDetail(w io.Writer, c *cluster.Cluster) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Network Cluster: %s\n", c.SSID)
	b.WriteString(strings.Repeat("=", 20) + "\n\n")
	fmt.Fprintf(&b, "Access Points: %d\n", c.NetworkCount)
	fmt.Fprintf(&b, "Security: %s\n", securityNames(c.SecurityTypes))
	fmt.Fprintf(&b, "Risk Level: %s\n", c.OverallRisk.Description())
	fmt.Fprintf(&b, "Signal Range: %d to %d dBm\n", c.MinRSSI, c.MaxRSSI)
	fmt.Fprintf(&b, "Frequencies: %s MHz\n", joinInts(c.Frequencies))
	fmt.Fprintf(&b, "Channels: %s\n", joinInts(c.Channels))
	fmt.Fprintf(&b, "Coverage: ~%.0f m radius\n", c.CoverageRadius)
	b.WriteString("\nAccess Points Details:\n")
	for i, m := range c.Members {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, m.BSSID)
		fmt.Fprintf(&b, "   Signal: %d dBm | Channel: %d\n", m.RSSI, m.Channel)
		fmt.Fprintf(&b, "   Security: %s\n", m.Security)
		if m.Position != nil {
			fmt.Fprintf(&b, "   Distance: ~%.0f m\n", m.DistanceMeters)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// ShareText is the short plain-text description of a cluster.
func ShareText(c *cluster.Cluster) string {
	var b strings.Builder
	fmt.Fprintf(&b, "WiFi Network Cluster: %s\n", c.SSID)
	fmt.Fprintf(&b, "Access Points: %d\n", c.NetworkCount)
	fmt.Fprintf(&b, "Security Types: %s\n", securityNames(c.SecurityTypes))
	fmt.Fprintf(&b, "Risk Level: %s\n", c.OverallRisk.Description())
	fmt.Fprintf(&b, "Signal Range: %d to %d dBm\n", c.MinRSSI, c.MaxRSSI)
	fmt.Fprintf(&b, "Coverage Radius: ~%.0f m\n", c.CoverageRadius)
	return b.String()
}

// ObservationText is the short plain-text description of one access point.
func ObservationText(o model.Observation) string {
	var b strings.Builder
	b.WriteString("WiFi Network Information:\n")
	fmt.Fprintf(&b, "SSID: %s\n", o.SSID)
	fmt.Fprintf(&b, "Security: %s\n", o.Security)
	fmt.Fprintf(&b, "Risk Level: %s\n", o.Risk.Description())
	fmt.Fprintf(&b, "Signal: %d dBm (%s)\n", o.RSSI, geo.SignalQuality(o.RSSI))
	fmt.Fprintf(&b, "Band: %s\n", o.Band)
	fmt.Fprintf(&b, "Frequency: %d MHz\n", o.FrequencyMHz)
	if o.HasDistance() {
		fmt.Fprintf(&b, "Distance: ~%.1f m\n", o.DistanceMeters)
	} else {
		b.WriteString("Distance: unknown\n")
	}
	return b.String()
}

// Summary writes the cycle-level overview of a snapshot.
func Summary(w io.Writer, snap *snapshot.Snapshot) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Cycle %d (%s)\n", snap.CycleSeq, snap.CapturedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Active networks: %d\n", len(snap.Observations))
	fmt.Fprintf(&b, "Network groups: %d (%d on map)\n", len(snap.Clusters), len(snap.Clusters.Placed()))
	fmt.Fprintf(&b, "Secure: %d\n", snap.Security.Secure())
	fmt.Fprintf(&b, "Vulnerable: %d\n", snap.Security.Vulnerable())
	b.WriteString(printer.Sprintf("Density: %.1f networks/km²\n", snap.Spectrum.DensityPerKm2))
	fmt.Fprintf(&b, "Recommended channel: %d\n", snap.Spectrum.RecommendedChannel)
	for _, band := range snap.Spectrum.Bands() {
		fmt.Fprintf(&b, "  %s: %d\n", band, snap.Spectrum.BandCounts[band])
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Text writes the summary followed by every cluster's detail block, riskiest
// first.
func Text(w io.Writer, snap *snapshot.Snapshot) error {
	if err := Summary(w, snap); err != nil {
		return err
	}
	for _, c := range snap.Clusters.Sorted() {
		if _, err := fmt.Fprintf(w, "\n%s\n", MapSnippet(c)); err != nil {
			return err
		}
		if err := ClusterDetail(w, c); err != nil {
			return err
		}
	}
	return nil
}
