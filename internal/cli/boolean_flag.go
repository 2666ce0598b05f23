package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName              = "bool"
	booleanFlagTrueLiteral           = "true"
	booleanFlagAcceptedValuesListing = "true, false, yes, no, on, off, 1, 0"
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

// optionalBoolean is a boolean flag that remembers whether it was given, so an
// absent flag leaves the configured value in place.
type optionalBoolean struct {
	value   bool
	present bool
	name    string
}

func (flag *optionalBoolean) Set(input string) error {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = booleanFlagTrueLiteral
	}
	parsed, known := booleanFlagLiterals[normalized]
	if !known {
		return fmt.Errorf("invalid boolean value %q for --%s; accepted values: %s", input, flag.name, booleanFlagAcceptedValuesListing)
	}
	flag.value = parsed
	flag.present = true
	return nil
}

func (flag *optionalBoolean) String() string {
	return strconv.FormatBool(flag.value)
}

func (flag *optionalBoolean) Type() string {
	return booleanFlagTypeName
}

// apply overwrites target when the flag was given on the command line.
func (flag *optionalBoolean) apply(target *bool) {
	if flag.present {
		*target = flag.value
	}
}

func registerOptionalBoolean(flagSet *pflag.FlagSet, flag *optionalBoolean, name string, usage string) {
	flag.name = name
	flagSet.Var(flag, name, usage)
	if lookup := flagSet.Lookup(name); lookup != nil {
		lookup.NoOptDefVal = booleanFlagTrueLiteral
	}
}
