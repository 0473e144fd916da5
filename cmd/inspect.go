package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/blueprintfinder/sdeexport/pkg/collector"
	"github.com/blueprintfinder/sdeexport/pkg/export"
	"github.com/blueprintfinder/sdeexport/pkg/sde"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// inspectCmd reads an existing export and shows what it holds for one type
var inspectCmd = &cobra.Command{
	Use:   "inspect <typeID>",
	Short: "Show the names and blueprints an export holds for a type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeID, err := cast.ToInt64E(args[0])
		if err != nil {
			return fmt.Errorf("invalid type ID %q", args[0])
		}
		input, _ := cmd.Flags().GetString("input")
		if input == "" {
			input = viper.GetString("output")
		}
		lang, _ := cmd.Flags().GetString("lang")

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
		ins, err := idx.Inspect(typeID)
		if err != nil {
			return err
		}

		printInspection(os.Stdout, idx, ins, lang)
		return nil
	},
}

func printInspection(out io.Writer, idx *export.Index, ins *export.Inspection, lang string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TYPE\t%d\n", ins.TypeID)
	for i, l := range sde.Languages {
		fmt.Fprintf(w, "%s\t%s\n", l, ins.Names[i])
	}
	w.Flush()

	if ins.Blueprint != nil {
		fmt.Fprintln(out, "\n--> Blueprint")
		printItems(out, idx, "MATERIAL", ins.Blueprint.Materials, lang)
		printItems(out, idx, "PRODUCT", ins.Blueprint.Products, lang)
	}
	if len(ins.ProducedBy) > 0 {
		fmt.Fprintln(out, "\n--> Produced by")
		printTypes(out, idx, ins.ProducedBy, lang)
	}
	if len(ins.UsedBy) > 0 {
		fmt.Fprintln(out, "\n--> Used by")
		printTypes(out, idx, ins.UsedBy, lang)
	}
}

func printItems(out io.Writer, idx *export.Index, header string, items []collector.Item, lang string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tTYPE\tQUANTITY\n", header)
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%d\t%d\n", idx.Name(it.TypeID, lang), it.TypeID, it.Quantity)
	}
	w.Flush()
}

func printTypes(out io.Writer, idx *export.Index, ids []int64, lang string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, id := range ids {
		fmt.Fprintf(w, "%d\t%s\n", id, idx.Name(id, lang))
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("input", "", "Export document to read (default: the --output path)")
	inspectCmd.Flags().String("lang", sde.DefaultLanguage, "Language used for related type names")
}
