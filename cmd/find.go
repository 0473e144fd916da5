package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/blueprintfinder/sdeexport/internal/utils"
	"github.com/blueprintfinder/sdeexport/pkg/export"
	"github.com/blueprintfinder/sdeexport/pkg/sde"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const nothingBuildable = "It is impossible to build anything using the provided assets."

// findCmd lists the blueprints an asset list can build
var findCmd = &cobra.Command{
	Use:   "find",
	Short: "List blueprints buildable from an asset list read on stdin",
	Long: `Reads an asset list from stdin, one "name<TAB>quantity" line per item as
copied from the game client, and lists the blueprints that can be built from
it either directly or through the products of other buildable blueprints.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		if input == "" {
			input = viper.GetString("output")
		}
		completeness, _ := cmd.Flags().GetFloat64("completeness")
		if completeness < 0 || completeness > 100 {
			return fmt.Errorf("completeness must be between 0 and 100, got %g", completeness)
		}
		lang, _ := cmd.Flags().GetString("lang")
		if lang != "" && sde.LanguageIndex(lang) < 0 {
			return fmt.Errorf("unknown language %q", lang)
		}

		data, err := os.ReadFile(input)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("export file not found: %s", input)
			}
			return err
		}
		idx, err := export.OpenIndex(data)
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}

		assets, err := idx.ParseAssets(cmd.InOrStdin())
		if err != nil {
			return err
		}
		for _, name := range assets.Unresolved {
			utils.Log.WithField("item", name).Warn("Unknown item, skipped")
		}
		if lang == "" {
			lang = assets.Language
		}

		printFindResults(cmd.OutOrStdout(), idx, idx.Find(assets.Materials, completeness), lang)
		return nil
	},
}

func printFindResults(out io.Writer, idx *export.Index, results []export.FindResult, lang string) {
	if len(results) == 0 {
		fmt.Fprintln(out, nothingBuildable)
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BLUEPRINT\tTYPE\tMATCH\tCOMPLETENESS")
	for _, r := range results {
		match := "indirect"
		if r.Direct {
			match = "direct"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d%%\n", idx.Name(r.Blueprint.TypeID, lang), r.Blueprint.TypeID, match, r.Completeness)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().String("input", "", "Export document to read (default: the --output path)")
	findCmd.Flags().Float64("completeness", 100, "Minimum share of materials, in percent, that must be owned or buildable")
	findCmd.Flags().String("lang", "", "Language for blueprint names (default: the language of the asset list)")
}
