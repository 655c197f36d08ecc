package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satjeet/ClinePythonDividis/internal/chart"
	"github.com/satjeet/ClinePythonDividis/internal/domain"
)

const barWidth = 20

func (c *cli) radarCmd() *cobra.Command {
	var asChart bool
	cmd := &cobra.Command{
		Use:   "radar",
		Short: "Show the vital radar from your survey results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			r := c.ws.Radar
			fetchErr := r.FetchRadarValues(cmd.Context())

			// A failed fetch still shows the zeroed radar before reporting.
			values := r.Values()
			switch {
			case asChart:
				if err := c.printJSON(r.Option()); err != nil {
					return err
				}
			case c.asJSON:
				if err := c.printJSON(map[string]any{"values": values}); err != nil {
					return err
				}
			default:
				printRadar(c, values)
			}

			if fetchErr != nil {
				return failed(fetchErr, r.Err())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asChart, "chart", false, "print the radar chart option document")
	return cmd
}

func printRadar(c *cli, values []float64) {
	values = chart.ChartValues(values)
	tw := newTable(c.out)
	for i, area := range domain.VitalAreas {
		v := values[i]
		n := int(v / 100 * barWidth)
		if n < 0 {
			n = 0
		}
		if n > barWidth {
			n = barWidth
		}
		fmt.Fprintf(tw, "%s\t%5.1f\t%s\n", area, v, strings.Repeat("█", n)+strings.Repeat("·", barWidth-n))
	}
	_ = tw.Flush()
}
