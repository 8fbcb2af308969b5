package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
)

// askOne is survey.AskOne, replaced in tests.
var askOne = survey.AskOne

// PromptForInput interactively asks for the top-level scalar values of input,
// using the current values as defaults. Nested objects and lists are left
// alone. It returns the answers only.
func PromptForInput(input map[string]interface{}) (map[string]interface{}, error) {
	answers := make(map[string]interface{})

	// Sort names for consistent ordering
	names := make([]string, 0, len(input))
	for name, value := range input {
		if isScalar(value) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return answers, nil
	}

	fmt.Println()
	fmt.Println("Please provide values for template input:")
	fmt.Println()

	for _, name := range names {
		value, err := promptForValue(name, input[name])
		if err != nil {
			return nil, fmt.Errorf("failed to prompt for input %q: %w", name, err)
		}
		answers[name] = value
	}

	return answers, nil
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case nil, string, bool, int, int64, float64:
		return true
	default:
		return false
	}
}

// promptForValue prompts for one value, keeping the type of the default.
func promptForValue(name string, current interface{}) (interface{}, error) {
	switch v := current.(type) {
	case bool:
		return promptBool(name, v)
	case int:
		return promptInt(name, int64(v))
	case int64:
		return promptInt(name, v)
	case float64:
		return promptNumber(name, v)
	case string:
		return promptString(name, v)
	default:
		return promptString(name, "")
	}
}

func promptString(name, defaultVal string) (string, error) {
	var result string
	prompt := &survey.Input{
		Message: name,
		Default: defaultVal,
	}
	if err := askOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func promptBool(name string, defaultVal bool) (bool, error) {
	var result bool
	prompt := &survey.Confirm{
		Message: name,
		Default: defaultVal,
	}
	if err := askOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func promptInt(name string, defaultVal int64) (int64, error) {
	var result string
	prompt := &survey.Input{
		Message: name,
		Default: strconv.FormatInt(defaultVal, 10),
	}

	intValidator := func(val interface{}) error {
		str, ok := val.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", val)
		}
		if _, err := strconv.ParseInt(str, 10, 64); err != nil {
			return fmt.Errorf("must be an integer")
		}
		return nil
	}

	if err := askOne(prompt, &result, survey.WithValidator(intValidator)); err != nil {
		return 0, err
	}
	return strconv.ParseInt(result, 10, 64)
}

func promptNumber(name string, defaultVal float64) (float64, error) {
	var result string
	prompt := &survey.Input{
		Message: name,
		Default: strconv.FormatFloat(defaultVal, 'f', -1, 64),
	}

	floatValidator := func(val interface{}) error {
		str, ok := val.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", val)
		}
		if _, err := strconv.ParseFloat(str, 64); err != nil {
			return fmt.Errorf("must be a number")
		}
		return nil
	}

	if err := askOne(prompt, &result, survey.WithValidator(floatValidator)); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(result, 64)
}
