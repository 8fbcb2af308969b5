package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tacogips/hoppla/internal/app"
	"github.com/tacogips/hoppla/internal/build"
	"github.com/tacogips/hoppla/internal/debug"
)

// Version information, overridden by main from ldflags.
var (
	Version   = build.Version()
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	globalNoColor bool
	globalQuiet   bool
	globalDebug   bool
)

// Transform flags
var (
	flagTemplate    string
	flagDestination string
	flagInput       string
	flagInputFile   string
	flagForce       bool
	flagDelimiter   string
	flagIncludeRoot string
	flagInteractive bool
)

// stdin is the input source for "--input ''", replaced in tests.
var stdin io.Reader = os.Stdin

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hoppla",
	Short: "Scaffold a project from a template directory",
	Long: `hoppla renders a template directory into a destination directory.

Files ending in .hop.tmpl (or .hop.ejs) are rendered with "<% ... %>" tags and
lose the suffix. Everything else is copied verbatim. A "hopplaconfig" file at
the template root sets default input, raw and exclude globs and lifecycle
hooks; "<name>.hopplaconfig" files and "###hopplaconfig ... hopplaconfig###"
headers configure single entries.

Examples:
  hoppla -t ./templates/go-service -d ./my-service -i '{name: my-service}'
  hoppla -t ./templates/go-service --input-file values.yaml --force
  echo 'name: demo' | hoppla -t ./templates/go-service -d demo -i ''
  hoppla -t ./templates/go-service --interactive`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.SetNoColor(globalNoColor)
		debug.SetQuiet(globalQuiet)
		debug.SetDebug(globalDebug)
	},
	RunE: runTransform,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&globalNoColor, FlagNoColor, false, DescNoColor)
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, FlagQuiet, "q", false, DescQuiet)
	rootCmd.PersistentFlags().BoolVar(&globalDebug, FlagDebug, false, DescDebug)

	// Transform flags
	rootCmd.Flags().StringVarP(&flagTemplate, FlagTemplate, "t", "", DescTemplate)
	rootCmd.Flags().StringVarP(&flagDestination, FlagDestination, "d", ".", DescDestination)
	rootCmd.Flags().StringVarP(&flagInput, FlagInput, "i", "", DescInput)
	rootCmd.Flags().StringVar(&flagInputFile, FlagInputFile, "", DescInputFile)
	rootCmd.Flags().BoolVarP(&flagForce, FlagForce, "f", false, DescForce)
	rootCmd.Flags().StringVar(&flagDelimiter, FlagDelimiter, "", DescDelimiter)
	rootCmd.Flags().StringVar(&flagIncludeRoot, FlagIncludeRoot, "", DescIncludeRoot)
	rootCmd.Flags().BoolVar(&flagInteractive, FlagInteractive, false, DescInteractive)
	_ = rootCmd.MarkFlagRequired(FlagTemplate)

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
	input, err := loadInput(inputSource{
		File:      flagInputFile,
		Inline:    flagInput,
		InlineSet: cmd.Flags().Changed(FlagInput),
	}, stdin)
	if err != nil {
		return err
	}

	opts := app.Options{
		Template:    flagTemplate,
		Destination: flagDestination,
		Input:       input,
		Force:       flagForce,
		Render:      renderOverrides(flagDelimiter, flagIncludeRoot, globalDebug),
	}

	if flagInteractive {
		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("--%s requires a terminal on stdin", FlagInteractive)
		}
		opts.Prompt = PromptForInput
	}

	printProgress(fmt.Sprintf("Rendering %s into %s", flagTemplate, flagDestination))
	if flagForce {
		printWarning("Force mode enabled - existing files will be replaced")
	}

	result, err := app.Transform(cmd.Context(), opts)
	if err != nil {
		printErrorMsg(fmt.Sprintf("Transformation failed: %v", err))
		return err
	}

	printSummary(result)
	return nil
}

// printError prints an error message to stderr
func printError(err error) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
