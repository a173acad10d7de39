package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/wifisurvey/internal/spectrum"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <capabilities>",
	Short: "Classify a capability string and assess its risk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatClassify(os.Stdout, classifyCapabilities(args[0]))
		return nil
	},
}

var distanceCmd = &cobra.Command{
	Use:   "distance <rssi> <frequency-mhz>",
	Short: "Estimate the distance to an access point from its signal strength",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rssi, err := strconv.Atoi(args[0])
		if err != nil {
			return eris.Wrapf(err, "distance: parse rssi %q", args[0])
		}
		freq, err := parseFrequency(args[1])
		if err != nil {
			return err
		}
		formatDistance(os.Stdout, estimate(rssi, freq))
		return nil
	},
}

var channelCmd = &cobra.Command{
	Use:   "channel <frequency-mhz>",
	Short: "Show the band and channel of a frequency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		freq, err := parseFrequency(args[0])
		if err != nil {
			return err
		}
		formatChannel(os.Stdout, freq)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(distanceCmd)
	rootCmd.AddCommand(channelCmd)
}

func parseFrequency(s string) (int, error) {
	freq, err := strconv.Atoi(s)
	if err != nil {
		return 0, eris.Wrapf(err, "parse frequency %q", s)
	}
	if freq <= 0 {
		return 0, eris.Errorf("frequency must be positive, got %d", freq)
	}
	return freq, nil
}

func orNone(vals []string) string {
	if len(vals) == 0 {
		return "none"
	}
	return strings.Join(vals, ", ")
}

// formatClassify writes a classification to out.
func formatClassify(out io.Writer, r classifyResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Security:\t%s\n", r.SecurityType)
	_, _ = fmt.Fprintf(w, "Risk:\t%s (%s)\n", r.RiskDescription, r.Risk)
	_, _ = fmt.Fprintf(w, "WPS:\t%t\n", r.Detail.HasWPS)
	_, _ = fmt.Fprintf(w, "Encryption:\t%s\n", orNone(r.Detail.EncryptionMethods))
	_, _ = fmt.Fprintf(w, "Authentication:\t%s\n", orNone(r.Detail.AuthenticationMethods))
	_ = w.Flush()
}

// formatDistance writes a distance estimate to out.
func formatDistance(out io.Writer, r distanceResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if r.Available {
		_, _ = fmt.Fprintf(w, "Distance:\t~%.1f m\n", r.DistanceMeters)
	} else {
		_, _ = fmt.Fprintln(w, "Distance:\tunavailable")
	}
	_, _ = fmt.Fprintf(w, "Signal:\t%d dBm (%s, %d%%)\n", r.RSSI, r.SignalQuality, r.SignalPercentage)
	_, _ = fmt.Fprintf(w, "Band:\t%s\n", r.Band)
	_, _ = fmt.Fprintf(w, "Channel:\t%d\n", r.Channel)
	_ = w.Flush()
}

// formatChannel writes the band and channel of freq to out.
func formatChannel(out io.Writer, freq int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Frequency:\t%d MHz\n", freq)
	_, _ = fmt.Fprintf(w, "Band:\t%s\n", spectrum.BandFor(freq))
	if ch := spectrum.ChannelFor(freq); ch > 0 {
		_, _ = fmt.Fprintf(w, "Channel:\t%d\n", ch)
	} else {
		_, _ = fmt.Fprintln(w, "Channel:\tnone")
	}
	_ = w.Flush()
}
