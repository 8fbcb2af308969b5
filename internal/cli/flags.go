package cli

// Common flag names and descriptions
const (
	// Flag names
	FlagTemplate    = "template"
	FlagDestination = "destination"
	FlagInput       = "input"
	FlagInputFile   = "input-file"
	FlagForce       = "force"
	FlagDelimiter   = "delimiter"
	FlagIncludeRoot = "include-root"
	FlagInteractive = "interactive"
	FlagNoColor     = "no-color"
	FlagQuiet       = "quiet"
	FlagDebug       = "debug"

	// Flag descriptions
	DescTemplate    = "Template directory"
	DescDestination = "Output directory"
	DescInput       = "Input data as YAML or JSON (reads stdin when empty)"
	DescInputFile   = "Input data file (.yaml, .yml, .json or .toml)"
	DescForce       = "Overwrite existing files and replace raw folders"
	DescDelimiter   = "Template tag delimiter character"
	DescIncludeRoot = "Directory include paths are resolved against"
	DescInteractive = "Prompt for top-level input values"
	DescNoColor     = "Disable colored output"
	DescQuiet       = "Suppress output"
	DescDebug       = "Enable debug logging"
)

// renderOverrides returns the render options set on the command line, keyed
// like config.RenderOptions. Empty values keep the template defaults.
func renderOverrides(delimiter, includeRoot string, debugMode bool) map[string]interface{} {
	overrides := map[string]interface{}{}
	if delimiter != "" {
		overrides["delimiter"] = delimiter
	}
	if includeRoot != "" {
		overrides["includeRoot"] = includeRoot
	}
	if debugMode {
		overrides["debug"] = true
	}
	return overrides
}
