package cmd

import (
	"context"
	"io"
)

// Every verb is a Command.  The life cycle is: Add the options to a CLI, parse, Validate (which
// also applies defaults from the defaults file), then Perform.

type Command interface {
	// Return the name of the cpu profile file, if requested
	CpuProfileFile() string

	// Documentation, with formatting and line breaks
	Summary(out io.Writer)

	// Add all arguments including shared arguments
	Add(fs *CLI)

	// Validate all arguments including shared arguments
	Validate() error

	// The -v and -debug flags
	VerboseFlag() bool
	DebugFlag() bool

	Perform(ctx context.Context, stdout, stderr io.Writer) error
}
