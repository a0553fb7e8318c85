package cmd

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
)

// CLI is a flag.FlagSet whose options each belong to one named group.  Help lists the groups in
// a fixed order, the options of a group in name order.
type CLI struct {
	*flag.FlagSet
	currentGroup   string
	groupForOption map[string]string // option -> group name
}

// Every group must be listed here, in the order help presents them.
var groupOrder = []string{
	"application-control",
	"operation-selection",
	"data-source",
	"data-target",
	"development",
}

func CLIOutput() io.Writer {
	return flag.CommandLine.Output()
}

func NewCLI(verb string, command Command, name string, exitOnError bool) *CLI {
	handling := flag.ContinueOnError
	if exitOnError {
		handling = flag.ExitOnError
	}
	cli := &CLI{
		FlagSet:        flag.NewFlagSet(name, handling),
		groupForOption: make(map[string]string),
	}
	out := CLIOutput()
	cli.FlagSet.Usage = func() {
		fmt.Fprintf(out, "Usage: %s %s [options]\n\n", name, verb)
		command.Summary(out)
		fmt.Fprintln(out)
		for _, g := range cli.getSortedDefaults() {
			fmt.Fprintf(out, "\n%s options:\n\n", g.group)
			for _, l := range g.text {
				fmt.Fprintln(out, l)
			}
		}
	}
	return cli
}

// Call Group to tag subsequent options with the logical group they belong to, so that when help is
// printed, the options in the same group are presented together.

func (cli *CLI) Group(name string) {
	if !slices.Contains(groupOrder, name) {
		panic(fmt.Sprintf("Unknown group %s", name))
	}
	cli.currentGroup = name
}

func (cli *CLI) BoolVar(v *bool, name string, def bool, usage string) {
	cli.tag(name)
	cli.FlagSet.BoolVar(v, name, def, usage)
}

func (cli *CLI) IntVar(v *int, name string, def int, usage string) {
	cli.tag(name)
	cli.FlagSet.IntVar(v, name, def, usage)
}

func (cli *CLI) StringVar(v *string, name string, def string, usage string) {
	cli.tag(name)
	cli.FlagSet.StringVar(v, name, def, usage)
}

func (cli *CLI) Var(value flag.Value, name string, usage string) {
	cli.tag(name)
	cli.FlagSet.Var(value, name, usage)
}

func (cli *CLI) tag(option string) {
	if cli.currentGroup == "" {
		panic(fmt.Sprintf("No option group set when registering option %s", option))
	}
	if cli.groupForOption[option] != "" {
		panic(fmt.Sprintf("Multiple groups for option %s: %s and %s",
			option, cli.groupForOption[option], cli.currentGroup))
	}
	cli.groupForOption[option] = cli.currentGroup
}

type defaultGroup struct {
	group string
	text  []string
}

// The non-empty groups in presentation order.  Each option's text is laid out the way
// flag.PrintDefaults lays it out.

func (cli *CLI) getSortedDefaults() []defaultGroup {
	byGroup := make(map[string][]string)
	cli.FlagSet.VisitAll(func(f *flag.Flag) {
		group := cli.groupForOption[f.Name]
		if group == "" {
			panic(fmt.Sprintf("No group for option %s", f.Name))
		}
		byGroup[group] = append(byGroup[group], formatOption(f)...)
	})
	defaults := make([]defaultGroup, 0, len(byGroup))
	for _, g := range groupOrder {
		if text, found := byGroup[g]; found {
			defaults = append(defaults, defaultGroup{group: g, text: text})
		}
	}
	return defaults
}

func formatOption(f *flag.Flag) []string {
	argName, usage := flag.UnquoteUsage(f)
	head := "  -" + f.Name
	if argName != "" {
		head += " " + argName
	}
	lines := []string{head}
	for _, l := range strings.Split(usage, "\n") {
		lines = append(lines, "    \t"+l)
	}
	switch f.DefValue {
	case "", "false", "0":
	default:
		lines[len(lines)-1] += fmt.Sprintf(" (default %s)", f.DefValue)
	}
	return lines
}
