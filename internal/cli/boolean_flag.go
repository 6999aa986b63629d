package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName               = "bool"
	booleanFlagTrueLiteral            = "true"
	booleanFlagAcceptedValuesListing  = "true, false, yes, no, on, off, 1, 0"
	booleanFlagInvalidValueErrorLabel = "invalid boolean value"
	booleanFlagArgumentFormat         = "--%s=%s"
	longFlagPrefix                    = "--"
	shortFlagPrefix                   = "-"
	argumentTerminator                = "--"
)

var booleanFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// booleanFlagValue accepts the literals in booleanFlagLiterals so that
// "--copy no" and "--add-line-numbers=yes" both parse.
type booleanFlagValue struct {
	target  *bool
	flagKey string
}

func (value *booleanFlagValue) Set(input string) error {
	if value == nil || value.target == nil {
		return fmt.Errorf("%s %q", booleanFlagInvalidValueErrorLabel, input)
	}
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = booleanFlagTrueLiteral
	}
	parsed, ok := booleanFlagLiterals[normalized]
	if !ok {
		return fmt.Errorf("%s %q for --%s; accepted values: %s", booleanFlagInvalidValueErrorLabel, input, value.flagKey, booleanFlagAcceptedValuesListing)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

// registerBooleanFlag registers a literal-tolerant boolean flag. An empty
// shorthand registers the long form only.
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = defaultValue
	flagSet.VarP(&booleanFlagValue{target: target, flagKey: name}, name, shorthand, usage)
	if lookup := flagSet.Lookup(name); lookup != nil {
		lookup.DefValue = strconv.FormatBool(defaultValue)
		lookup.NoOptDefVal = booleanFlagTrueLiteral
	}
}

// normalizeBooleanFlagArguments joins "--flag value" into "--flag=value" for
// boolean flags when value is a recognized literal, because pflag never
// consumes a separate argument for flags with NoOptDefVal.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	booleanFlags := map[string]struct{}{}
	collectBooleanFlagNames(command, booleanFlags)
	if len(booleanFlags) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == argumentTerminator {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if strings.HasPrefix(currentArgument, longFlagPrefix) && !strings.Contains(currentArgument, "=") && index+1 < len(arguments) {
			flagName := strings.TrimPrefix(currentArgument, longFlagPrefix)
			nextArgument := arguments[index+1]
			if _, isBoolean := booleanFlags[flagName]; isBoolean && !strings.HasPrefix(nextArgument, shortFlagPrefix) {
				if _, isLiteral := booleanFlagLiterals[strings.ToLower(strings.TrimSpace(nextArgument))]; isLiteral {
					normalized = append(normalized, fmt.Sprintf(booleanFlagArgumentFormat, flagName, nextArgument))
					index++
					continue
				}
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

func collectBooleanFlagNames(command *cobra.Command, target map[string]struct{}) {
	visit := func(flagSet *pflag.FlagSet) {
		flagSet.VisitAll(func(flag *pflag.Flag) {
			if flag.Value != nil && flag.Value.Type() == booleanFlagTypeName {
				target[flag.Name] = struct{}{}
			}
		})
	}
	visit(command.PersistentFlags())
	visit(command.Flags())
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, target)
	}
}
