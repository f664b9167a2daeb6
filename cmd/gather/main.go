package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/frederic-klein/gather/internal/snapshot"
)

var (
	configPath    string
	kickstartPath string
	snapshotPath  string
	verbose       bool

	// flag overrides for config values
	flagName     string
	flagVersion  string
	flagFlavor   string
	flagArch     string
	flagDestDir  string
	flagCacheDir string
	flagWorkers  int
	selfHosting  bool
	fullTree     bool
	debuginfo    bool
	noSource     bool
	noDownload   bool
	forceRefresh bool
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "gather",
		Short:         "Compute and download the package set of a distribution compose",
		Long:          "gather resolves a kickstart package manifest against repository metadata into a closed set of binary, source and debuginfo packages, and downloads them into a compose tree.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	composeCmd := &cobra.Command{
		Use:   "compose",
		Short: "Resolve a kickstart manifest and populate the compose tree",
		RunE:  runCompose,
	}
	f := composeCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "Compose config file (YAML)")
	f.StringVarP(&kickstartPath, "kickstart", "k", "", "Kickstart file with repo lines and a %packages section")
	f.StringVarP(&snapshotPath, "list", "o", "", "Output compose list path (default <destdir>/<version>/<flavor>/logs/<arch>.packages)")
	f.StringVar(&flagName, "name", "", "Product name")
	f.StringVar(&flagVersion, "ver", "", "Product version")
	f.StringVar(&flagFlavor, "flavor", "", "Product flavor")
	f.StringVar(&flagArch, "arch", "", "Compose architecture")
	f.StringVar(&flagDestDir, "destdir", "", "Destination directory of the compose tree")
	f.StringVar(&flagCacheDir, "cachedir", "", "Metadata cache directory")
	f.IntVarP(&flagWorkers, "workers", "w", 0, "Parallel download workers")
	f.BoolVar(&selfHosting, "selfhosting", false, "Also gather the build dependencies of every source package")
	f.BoolVar(&fullTree, "fulltree", false, "Also gather every binary built from a gathered source package")
	f.BoolVar(&debuginfo, "debuginfo", false, "Also gather debuginfo packages")
	f.BoolVar(&noSource, "nosource", false, "Do not download source packages")
	f.BoolVar(&noDownload, "nodownload", false, "Only write the compose list")
	f.BoolVar(&forceRefresh, "force", false, "Ignore cached repository metadata")
	_ = composeCmd.MarkFlagRequired("kickstart")

	verifyCmd := &cobra.Command{
		Use:   "verify <list>",
		Short: "Check the digest of a compose list",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}

	rootCmd.AddCommand(composeCmd, verifyCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runVerify(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening compose list: %w", err)
	}
	defer file.Close()

	s, err := snapshot.NewParser(file).Parse()
	if err != nil {
		return fmt.Errorf("verifying %s: %w", args[0], err)
	}

	fmt.Printf("%s: %d binaries, %d sources, %d debuginfo\n", args[0], len(s.Binaries), len(s.Sources), len(s.Debuginfo))
	return nil
}
