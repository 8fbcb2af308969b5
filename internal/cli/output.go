package cli

import (
	"fmt"
	"os"

	"github.com/tacogips/hoppla/internal/app"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
)

// printInfo prints an informational message
func printInfo(msg string) {
	if globalQuiet {
		return
	}
	fmt.Println(msg)
}

// printSuccess prints a success message
func printSuccess(msg string) {
	if globalQuiet {
		return
	}
	if globalNoColor {
		fmt.Printf("✓ %s\n", msg)
	} else {
		fmt.Printf("%s✓%s %s\n", colorGreen, colorReset, msg)
	}
}

// printWarning prints a warning message
func printWarning(msg string) {
	if globalQuiet {
		return
	}
	if globalNoColor {
		fmt.Printf("⚠ %s\n", msg)
	} else {
		fmt.Printf("%s⚠%s %s\n", colorYellow, colorReset, msg)
	}
}

// printErrorMsg prints an error message (different from printError which takes error type)
func printErrorMsg(msg string) {
	if globalNoColor {
		fmt.Fprintf(os.Stderr, "✗ %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "%s✗%s %s\n", colorRed, colorReset, msg)
	}
}

// printProgress prints a progress indicator
func printProgress(msg string) {
	if globalQuiet {
		return
	}
	if globalNoColor {
		fmt.Printf("→ %s\n", msg)
	} else {
		fmt.Printf("%s→%s %s\n", colorBlue, colorReset, msg)
	}
}

// printSummary prints the copy statistics of a finished run.
func printSummary(result *app.Result) {
	printSuccess("Project generated successfully")
	if result == nil || result.Copy == nil {
		return
	}
	copied := result.Copy

	printInfo("")
	printInfo("Summary:")
	printInfo(fmt.Sprintf("  Created: %d files, %d folders", copied.FilesCreated, copied.FoldersCreated))
	if copied.FilesSkipped > 0 || copied.FoldersSkipped > 0 {
		printInfo(fmt.Sprintf("  Skipped: %d files, %d folders (already exist)", copied.FilesSkipped, copied.FoldersSkipped))
	}
	if copied.FilesOverwritten > 0 || copied.FoldersOverwritten > 0 {
		printInfo(fmt.Sprintf("  Overwritten: %d files, %d folders", copied.FilesOverwritten, copied.FoldersOverwritten))
	}

	// Print any non-fatal errors
	if len(copied.Errors) > 0 {
		printWarning(fmt.Sprintf("%d errors occurred while copying:", len(copied.Errors)))
		for _, e := range copied.Errors {
			printWarning(fmt.Sprintf("  - %v", e))
		}
	}
}
