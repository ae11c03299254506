package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/platewise/backend/internal/domain"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one meal and print its nutrient profile as JSON",
	Example: `  platewise analyze --description "chicken burrito and a can of coke"
  platewise analyze --photo https://example.com/lunch.jpg --force-micros`,
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		photo, _ := cmd.Flags().GetString("photo")
		forceMicros, _ := cmd.Flags().GetBool("force-micros")

		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		profile, err := a.service.Analyze(cmd.Context(), &domain.MealRequest{
			Description: description,
			PhotoRef:    photo,
			ForceMicros: forceMicros,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	},
}

func init() {
	analyzeCmd.Flags().String("description", "", "free-text meal description")
	analyzeCmd.Flags().String("photo", "", "photo URL or data URI")
	analyzeCmd.Flags().Bool("force-micros", false, "always run nutrient estimation")

	rootCmd.AddCommand(analyzeCmd)
}
