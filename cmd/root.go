package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blueprintfinder/sdeexport/internal/utils"
	"github.com/blueprintfinder/sdeexport/pkg/pipeline"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd runs the export when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sdeexport",
	Short: "Builds the compact blueprint finder data file from the static data export.",
	Long: `sdeexport reads data/blueprints.yaml and data/typeIDs.yaml, keeps the manufacturing
blueprints and the names of every type they reference, and writes data/export.json.`,
	Args: cobra.NoArgs,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sdeexport.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "debug", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("blueprints", pipeline.DefaultBlueprintsPath, "Blueprints source document")
	rootCmd.PersistentFlags().String("types", pipeline.DefaultTypesPath, "Type records source document")
	rootCmd.PersistentFlags().String("output", pipeline.DefaultOutputPath, "Export document to write")
	rootCmd.PersistentFlags().String("sqlite", "", "Also write the export into this SQLite database")

	for _, key := range []string{"loglevel", "blueprints", "types", "output", "sqlite"} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".sdeexport")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("sdeexport")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %s\n", err)
			os.Exit(1)
		}
	}

	// Init log library
	if err := utils.SetLogLevel(viper.GetString("loglevel")); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func exportOptions() pipeline.Options {
	return pipeline.Options{
		BlueprintsPath: viper.GetString("blueprints"),
		TypesPath:      viper.GetString("types"),
		OutputPath:     viper.GetString("output"),
		SQLitePath:     viper.GetString("sqlite"),
	}
}

func runExport(ctx context.Context) error {
	sum, err := pipeline.Run(ctx, exportOptions())
	if err != nil {
		return err
	}
	utils.Log.WithFields(logrus.Fields{
		"blueprints": sum.BlueprintsExported,
		"names":      sum.NamesExported,
	}).Info("Export complete")
	return nil
}
