package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/config"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/display"
	"github.com/spf13/cobra"
)

var planFile string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the resolved benchmark plan",
	Long: `Resolve the benchmark plan the same way "run" does and print the
rounds it would execute, without launching anything.`,
	Example: `  # Show the built-in default matrix
  wasmbench plan

  # Show a custom plan
  wasmbench plan --plan bench.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFile, "plan", "", "benchmark plan YAML")
}

func runPlan(cmd *cobra.Command, args []string) {
	res, err := config.Load(planFile)
	if err != nil {
		exitError(err.Error())
	}

	if jsonOutput {
		out, _ := json.MarshalIndent(res.Plan, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Printf("plan: %s\n", planSource(res))
	display.RenderPlan(os.Stdout, res.Plan)
}

func planSource(res *config.LoadResult) string {
	if res.Path != "" {
		return res.Path
	}
	return "built-in default"
}
