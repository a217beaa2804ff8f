package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/enerviz/pkg/render/sankey"
)

// newSankeyCmd creates the sankey command.
func newSankeyCmd() *cobra.Command {
	var (
		resultsPath string
		timestep    int
		output      string
	)

	cmd := &cobra.Command{
		Use:   "sankey [system.json]",
		Short: "Build a sankey flow diagram from optimization results",
		Long: `Build a sankey diagram payload from an energy system and its
optimization results.

Flow results pair a (source, target) connection with a value series,
one value per timestep. With --ts the diagram shows a single timestep;
without it the series are summed over the whole horizon. The payload is
written as JSON suitable for plotly-style sankey traces.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSankey(cmd.Context(), args[0], resultsPath, timestep, output)
		},
	}

	cmd.Flags().StringVarP(&resultsPath, "results", "r", "", "flow results file (required)")
	cmd.Flags().IntVar(&timestep, "ts", sankey.AllTimesteps, "timestep to show (default: sum over all timesteps)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.MarkFlagRequired("results")

	return cmd
}

func runSankey(ctx context.Context, input, resultsPath string, timestep int, output string) error {
	logger := loggerFromContext(ctx)

	_, system, err := loadSystem(input, logger)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(resultsPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", resultsPath, err)
	}
	results, err := sankey.ReadResults(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("load %s: %w", resultsPath, err)
	}

	payload := sankey.Build(system, results, timestep, logger)
	data, err := payload.Marshal()
	if err != nil {
		return err
	}

	if output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Built sankey diagram for %s", input)
	printFile(output)
	printDetail("%d labels · %d links", len(payload.Labels), len(payload.Values))
	return nil
}
