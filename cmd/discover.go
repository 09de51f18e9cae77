package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/discovery"
	"github.com/ucformula/sponsor-scout/internal/filtering"
	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

const reportSize = 10

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Search for potential sponsors and store them",
	Run: func(cmd *cobra.Command, _ []string) {
		discover(cmd)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().BoolP("analyze", "a", false, "score the stored sponsors after discovery and print the best ones")
	discoverCmd.Flags().StringP("output", "o", "", "also dump the discovered sponsors to this JSON file")
	discoverCmd.Flags().Bool("no-extract", false, "do not visit sponsor websites for contact details")
	discoverCmd.Flags().Int("workers", 0, "concurrent website fetches per query (default is discovery.workers from the config)")

	viper.BindPFlag("discovery.workers", discoverCmd.Flags().Lookup("workers"))
}

func discover(cmd *cobra.Command) {
	ctx := context.Background()

	a := bootstrap(ctx)
	defer a.close(ctx)
	logger := a.logger

	if noExtract, _ := cmd.Flags().GetBool("no-extract"); noExtract {
		a.config.Discovery.Extract = false
	}

	pipeline, err := a.pipeline()
	if err != nil {
		logger.Fatal(
			"loading serper api key",
			zap.Error(err),
			zap.String("hint", "set SERPER_API_KEY or SERPER_API_KEY_FILE environment variable or the 'serper.api-key-file' key in the configuration file"),
		)
	}

	list, err := pipeline.Discover(ctx)
	if err != nil {
		logger.Fatal("discovery failed", zap.Error(err))
	}

	logger.Info("found potential sponsors", zap.Int("count", list.Len()))

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := list.DumpToFile(output); err != nil {
			logger.Fatal("dump results to file", zap.Error(err))
		}
		logger.Info("dumping result to file", zap.String("filename", output))
	}

	if analyze, _ := cmd.Flags().GetBool("analyze"); !analyze {
		return
	}

	analyzed, err := discovery.Analyze(ctx, a.store, logger)
	if err != nil {
		logger.Fatal("analyzing sponsors", zap.Error(err))
	}

	top, err := filtering.Run(ctx, &a.config.Filters, filtering.Deps{Logger: logger}, filtering.Configure(&a.config.Filters, filtering.Analyzed()), analyzed.Clone())
	if err != nil {
		logger.Fatal("filtering analyzed sponsors", zap.Error(err))
	}

	printReport(logger, top)
}

func printReport(logger *zap.Logger, list *sponsor.Candidates) {
	pretty, _ := json.MarshalIndent(list.Report(reportSize), "", "  ")
	logger.Info(string(pretty), zap.Int("sponsors count", list.Len()))
}
