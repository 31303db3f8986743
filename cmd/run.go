package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/flowsheet-sim/flowsheet-sim/sim"
)

var (
	projectFile string // Path to the YAML project file
	outputFile  string // Optional path for the JSON run record
	versionID   string // Version id recorded on the run
)

// runCmd executes the full pipeline: validate, solve, evaluate, cost.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full flowsheet simulation",
	Run: func(cmd *cobra.Command, args []string) {
		if projectFile == "" {
			logrus.Fatalf("No project file provided. Use --project.")
		}
		project, err := LoadProject(projectFile)
		if err != nil {
			logrus.Fatalf("unable to load project: %v", err)
		}

		rec := sim.Run(project, versionID)
		printRunRecord(rec)

		if outputFile != "" {
			data, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				logrus.Fatalf("unable to marshal run record: %v", err)
			}
			if err := os.WriteFile(outputFile, data, 0o644); err != nil {
				logrus.Fatalf("unable to write run record: %v", err)
			}
			logrus.Infof("Run record written to %s", outputFile)
		}

		if rec.Status == sim.RunError {
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&projectFile, "project", "", "Path to the YAML project file")
	runCmd.Flags().StringVar(&outputFile, "output", "", "Write the run record as JSON to this path")
	runCmd.Flags().StringVar(&versionID, "version-id", "", "Project version id to stamp on the run record")
	rootCmd.AddCommand(runCmd)
}

// printRunRecord displays the run summary in the style of a simulation
// report: status, KPIs, spec results, violations, and cost totals.
func printRunRecord(rec *sim.RunRecord) {
	fmt.Println("=== Simulation Run ===")
	fmt.Printf("Run ID      : %s\n", rec.ID)
	fmt.Printf("Status      : %s\n", rec.Status)
	fmt.Printf("Converged   : %v\n", rec.Converged)
	if rec.Error != "" {
		fmt.Printf("Error       : %s\n", rec.Error)
	}
	for _, d := range rec.Diagnostics {
		fmt.Printf("  [%s/%s] %s\n", d.Severity, d.Category, d.Message)
	}
	if rec.Status != sim.RunDone {
		return
	}

	fmt.Println("--- KPIs ---")
	names := make([]string, 0, len(rec.KPIs))
	for name := range rec.KPIs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-20s: %.4g\n", name, rec.KPIs[name])
	}

	if len(rec.SpecResults) > 0 {
		fmt.Println("--- Specs ---")
		for _, s := range rec.SpecResults {
			status := "PASS"
			if !s.Pass {
				status = "FAIL"
			}
			fmt.Printf("%-20s: achieved %.4g vs target %.4g [%s]\n", s.SpecID, s.Achieved, s.Target, status)
		}
	}

	if len(rec.Violations) > 0 {
		fmt.Println("--- Violations ---")
		for _, v := range rec.Violations {
			fmt.Printf("  %s\n", v.Message)
		}
	} else {
		fmt.Println("No constraint violations.")
	}

	fmt.Println("--- Economics ---")
	fmt.Printf("Equipment CAPEX     : $%.0f\n", rec.CAPEX.Total)
	fmt.Printf("Installed CAPEX     : $%.0f\n", rec.Economics.InstalledCAPEX)
	fmt.Printf("Total annual cost   : $%.0f/yr\n", rec.Economics.TotalAnnualCost)
	fmt.Printf("COM proxy           : $%.0f/yr\n", rec.COM)
}
