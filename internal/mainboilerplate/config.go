package mainboilerplate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
)

// MustParseConfig requires that the Parser parse from the combination of an
// optional INI file, configured environment bindings, and explicit flags.
// An INI file matching |configName| is searched for in:
//   - The current working directory, at the time of the call.
//   - ~/.config/linerotate (under the users's $HOME or %UserProfile% directory).
func MustParseConfig(parser *flags.Parser, configName string) []string {
	// Allow unknown options while parsing an INI file.
	var origOptions = parser.Options
	parser.Options |= flags.IgnoreUnknown

	if _, err := parseIniFile(parser, configName); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Restore original options for parsing argument flags.
	parser.Options = origOptions
	return MustParseArgs(parser, os.Args[1:])
}

// parseIniFile parses the first |configName| found, returning its path or ""
// if there is none.
func parseIniFile(parser *flags.Parser, configName string) (string, error) {
	var iniParser = flags.NewIniParser(parser)

	var prefixes = []string{
		".",
		filepath.Join(os.Getenv("HOME"), ".config", "linerotate"),
		filepath.Join(os.Getenv("UserProfile"), ".config", "linerotate"),
	}
	for _, prefix := range prefixes {
		var path = filepath.Join(prefix, configName)

		if err := iniParser.ParseFile(path); err == nil {
			return path, nil
		} else if os.IsNotExist(err) {
			// Pass.
		} else {
			return "", err
		}
	}
	return "", nil
}

// MustParseArgs requires that Parser be able to ParseArgs without error,
// returning the remaining arguments.
func MustParseArgs(parser *flags.Parser, args []string) []string {
	var rest, err = parser.ParseArgs(args)
	if err == nil {
		return rest
	}
	var flagErr, ok = err.(*flags.Error)
	if !ok {
		Must(err, "fatal error")
	}

	switch flagErr.Type {
	case flags.ErrDuplicatedFlag, flags.ErrTag, flags.ErrInvalidTag, flags.ErrShortNameTooLong, flags.ErrMarshal:
		// These error types indicate a problem in the configuration object
		// |parser| was asked to parse (eg, a developer error rather than input error).
		panic(err)

	case flags.ErrHelp:
		if parser.Options&flags.PrintErrors == 0 {
			parser.WriteHelp(os.Stderr)
		}
		fmt.Fprintf(os.Stderr, "\nVersion %s, built at %s.\n", Version, BuildDate)
		os.Exit(0)

	default:
		// Other error types indicate a problem of input. Generally, `go-flags`
		// already prints a helpful message and we can simply exit.
		os.Exit(1)
	}
	return nil
}
