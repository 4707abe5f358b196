// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/vgm2gbs/internal/config"
	"github.com/retroenv/vgm2gbs/internal/options"
)

// flagValues contains the raw values of flags that are merged into the
// program options after the configuration file and environment.
type flagValues struct {
	template  string
	rate      int
	tmaOffset int
	increase  int
	decrease  int
}

// ParseFlags parses command line flags and returns the program options.
// Settings are applied in the order defaults, config file, environment
// and explicitly passed flags.
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	opts := options.NewProgram()
	var values flagValues
	readOptionFlags(flags, &opts, &values)

	args, err := parseInterspersed(flags, os.Args[1:])
	if err != nil || (len(args) == 0 && opts.Batch == "") {
		msg := ""
		if err != nil && !errors.Is(err, flag.ErrHelp) {
			msg = err.Error()
		}
		return opts, &UsageError{flags: flags, msg: msg}
	}

	if err := validateArgs(args, opts.Batch != ""); err != nil {
		return opts, err
	}
	if len(args) > 0 {
		opts.Input = args[0]
	}
	if len(args) > 1 {
		opts.Output = args[1]
	}

	if opts.Config != "" {
		if err := config.LoadFile(opts.Config, &opts); err != nil {
			return opts, err
		}
	}
	if err := config.ApplyEnv(&opts); err != nil {
		return opts, err
	}

	if err := applyFlags(flags, &opts, values); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: vgm2gbs [options] <input .vgm/.vgz file> [output .gbs file]\n\n")
	if e.flags != nil {
		e.flags.SetOutput(os.Stdout)
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// parseInterspersed parses the flags and returns the positional arguments.
// Flags are accepted before, between and after the file arguments, all
// arguments following a "--" terminator are positional.
func parseInterspersed(flags *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := flags.Parse(args); err != nil {
			return nil, err
		}

		rest := flags.Args()
		consumed := args[:len(args)-len(rest)]
		if len(consumed) > 0 && consumed[len(consumed)-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}

		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// validateArgs checks the number of positional arguments
func validateArgs(args []string, batch bool) error {
	maxArgs := 2
	if batch {
		maxArgs = 0
	}
	if len(args) > maxArgs {
		return &UsageError{
			msg: fmt.Sprintf("Unexpected argument %s", args[maxArgs]),
		}
	}
	return nil
}

// applyFlags applies the explicitly passed flags to the options and
// validates the resulting values.
func applyFlags(flags *flag.FlagSet, opts *options.Program, values flagValues) error {
	var errs []error
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rom":
			opts.Template = values.template
		case "r":
			opts.EngineRate = values.rate
		case "t":
			opts.TMAOffset = values.tmaOffset
		case "ti":
			if values.increase <= 0 {
				errs = append(errs, fmt.Errorf("value %d of -ti is not a positive integer", values.increase))
			}
		case "td":
			if values.decrease <= 0 {
				errs = append(errs, fmt.Errorf("value %d of -td is not a positive integer", values.decrease))
			}
		}
	})

	opts.TMAOffset += values.increase - values.decrease

	if opts.EngineRate <= 0 {
		errs = append(errs, fmt.Errorf("engine rate %d is not a positive integer", opts.EngineRate))
	}
	return errors.Join(errs...)
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program, values *flagValues) {
	flags.StringVar(&opts.Output, "o", "", "name of the output .gbs file, defaults to the input file name with .gbs extension")
	flags.StringVar(&values.template, "rom", options.DefaultTemplate, "name of the playback engine template ROM file")
	flags.StringVar(&opts.Config, "c", "", "name of a TOML config file to read settings from")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically .gbs file naming, for example *.vgm")
	flags.IntVar(&values.rate, "r", options.DefaultEngineRate, "engine rate in Hz for songs that run at a rate that is not NTSC")
	flags.IntVar(&values.tmaOffset, "t", 0, "TMA offset for songs using custom timing")
	flags.IntVar(&values.increase, "ti", 0, "increase the TMA offset, compatibility option")
	flags.IntVar(&values.decrease, "td", 0, "decrease the TMA offset, compatibility option")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the generated output by reading it back and checking the patched values")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
