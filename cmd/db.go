package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/blueprintfinder/sdeexport/pkg/storage"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultDBPath = "data/export.sqlite"

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Query a SQLite database written with --sqlite",
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints statistics about the blueprints and names in the database.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExistingDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(context.Background())
		if err != nil {
			return err
		}

		if stats.Blueprints == 0 && stats.Types == 0 {
			fmt.Println("No data in the database to generate stats.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "BLUEPRINTS\tMATERIALS\tPRODUCTS\tTYPES\t")
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t\n", stats.Blueprints, stats.Materials, stats.Products, stats.Types)
		fmt.Fprintln(w, " \t \t \t \t")
		fmt.Fprintln(w, "LANGUAGE\tNAMED\t")
		for _, l := range stats.Languages {
			fmt.Fprintf(w, "%s\t%d\t\n", l.Language, l.Named)
		}
		w.Flush()

		return nil
	},
}

// dbFindCmd resolves a localized name to type IDs
var dbFindCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Find the types whose name matches exactly in any language",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExistingDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		matches, err := db.FindTypesByName(context.Background(), args[0])
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no type named %q", args[0])
		}
		for _, m := range matches {
			fmt.Printf("%d  %s  %s\n", m.TypeID, m.Language, m.Name)
		}
		return nil
	},
}

// usesCmd lists the blueprints consuming a type
var usesCmd = &cobra.Command{
	Use:   "uses <typeID>",
	Short: "List the blueprints that consume a type as a material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeID, err := cast.ToInt64E(args[0])
		if err != nil {
			return fmt.Errorf("invalid type ID %q", args[0])
		}
		db, err := openExistingDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		ids, err := db.BlueprintsUsing(context.Background(), typeID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func openExistingDB(cmd *cobra.Command) (*storage.DB, error) {
	dbPath, _ := cmd.Flags().GetString("dbpath")
	if dbPath == "" {
		dbPath = viper.GetString("sqlite")
	}
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database file not found: %s", dbPath)
	}
	return storage.Open(dbPath)
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(statsCmd)
	dbCmd.AddCommand(dbFindCmd)
	dbCmd.AddCommand(usesCmd)
	dbCmd.PersistentFlags().String("dbpath", "", "Path to SQLite DB file (default: the --sqlite path, else "+defaultDBPath+")")
}
