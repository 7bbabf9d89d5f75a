package cmd

import (
	"fmt"
	"strings"

	"github.com/campaignops/routeflow/internal/specialist"
	"github.com/spf13/cobra"
)

var specialistsCmd = &cobra.Command{
	Use:   "specialists",
	Short: "List the registered specialist agents",
	Long: `List the specialist agents the router can select, with the
keyword patterns the deterministic fallback matches against.`,
	RunE: runSpecialists,
}

var specialistsKeywords bool

func init() {
	rootCmd.AddCommand(specialistsCmd)

	specialistsCmd.Flags().BoolVarP(&specialistsKeywords, "keywords", "k", false, "Show fallback keyword patterns")
}

func runSpecialists(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	registry := specialist.DemoRegistry()

	fmt.Fprintln(out, titleStyle.Render("Specialists"))
	fmt.Fprintln(out)

	for _, p := range specialist.Profiles() {
		status := okStyle.Render("registered")
		if !registry.Has(p.ID) {
			status = errorStyle.Render("missing")
		}
		fmt.Fprintf(out, "%s  %s\n", titleStyle.Render(string(p.ID)), status)
		fmt.Fprintln(out, "  "+p.Description)
		if specialistsKeywords {
			fmt.Fprintln(out, mutedStyle.Render("  keywords: "+strings.Join(p.Keywords, ", ")))
		}
		fmt.Fprintln(out)
	}

	return nil
}
