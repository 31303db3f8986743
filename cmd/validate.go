package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/flowsheet-sim/flowsheet-sim/sim"
)

var validateProjectFile string // Path to the YAML project file

// validateCmd runs the pre-flight checks without solving.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a project file without solving it",
	Run: func(cmd *cobra.Command, args []string) {
		if validateProjectFile == "" {
			logrus.Fatalf("No project file provided. Use --project.")
		}
		project, err := LoadProject(validateProjectFile)
		if err != nil {
			logrus.Fatalf("unable to load project: %v", err)
		}

		result := sim.Validate(project)
		for _, d := range result.Diagnostics {
			fmt.Printf("[%s/%s] %s\n", d.Severity, d.Category, d.Message)
		}
		if result.Valid {
			fmt.Println("Project is valid.")
			return
		}
		fmt.Println("Project has validation errors.")
		os.Exit(1)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateProjectFile, "project", "", "Path to the YAML project file")
	rootCmd.AddCommand(validateCmd)
}
