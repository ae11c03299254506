// Package main is the entry point for the platewise backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "platewise",
	Short: "Meal photo and description nutrition analysis",
	Long: `platewise turns a meal description and optional photo into a complete,
bounded nutrient profile. Verified macros come from Nutritionix and
OpenFoodFacts; the remaining nutrients are estimated by a language model.

Run "platewise serve" for the HTTP API or "platewise analyze" for a single meal.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config.yaml, ./config/config.yaml or /etc/platewise/config.yaml)")
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
