// `jobpower` -- attribute measured power to HPC jobs that had their nodes to themselves
//
// Run `jobpower help` for brief help, and `jobpower <verb> -h` for the options of a verb.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"jobpower/cmd"
	"jobpower/cmd/exclusive"
	"jobpower/cmd/occupancy"
	"jobpower/cmd/run"
	. "jobpower/common"
	"jobpower/utils/status"
)

// v0.1.0 - exclusivity and power attribution from CSV tables
// v0.2.0 - sonar and database sources, artifact stores, metrics

const JobpowerVersion = "0.2.0"

func main() {
	err := jobpower()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func jobpower() error {
	anyCmd := commandLine()

	if anyCmd.DebugFlag() {
		Log.LowerLevelTo(status.LogLevelDebug)
	} else if anyCmd.VerboseFlag() {
		Log.LowerLevelTo(status.LogLevelInfo)
	}

	if anyCmd.CpuProfileFile() != "" {
		f, err := os.Create(anyCmd.CpuProfileFile())
		if err != nil {
			return fmt.Errorf("Failed to create profile\n%w", err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return anyCmd.Perform(ctx, os.Stdout, os.Stderr)
}

func commandLine() cmd.Command {
	out := cmd.CLIOutput()

	if len(os.Args) < 2 {
		fmt.Fprintf(out, "Required operation missing, try `jobpower help`\n")
		os.Exit(2)
	}

	var command cmd.Command
	var verb = os.Args[1]
	switch verb {
	case "help", "-h":
		fmt.Fprintf(out, "Usage: %s command [options]\n", os.Args[0])
		fmt.Fprintf(out, "Commands:\n")
		fmt.Fprintf(out, "  run       - compute the power series of every exclusive job\n")
		fmt.Fprintf(out, "  exclusive - list the jobs that had their nodes to themselves\n")
		fmt.Fprintf(out, "  occupancy - print the occupancy of one node\n")
		fmt.Fprintf(out, "  version   - print information about the program\n")
		fmt.Fprintf(out, "  help      - print this message\n")
		fmt.Fprintf(out, "Each command accepts -h to further explain options.\n")
		os.Exit(0)
	case "run":
		command = new(run.RunCommand)
	case "exclusive":
		command = new(exclusive.ExclusiveCommand)
	case "occupancy":
		command = new(occupancy.OccupancyCommand)
	case "version":
		fmt.Printf("jobpower version(%s)\n", JobpowerVersion)
		os.Exit(0)
	default:
		fmt.Fprintf(out, "Unknown operation `%s`, try `jobpower help`\n", verb)
		os.Exit(2)
	}

	fs := cmd.NewCLI(verb, command, os.Args[0], true)
	command.Add(fs)
	fs.Parse(os.Args[2:])

	if rest := fs.Args(); len(rest) > 0 {
		fmt.Fprintf(out, "Rest arguments not accepted by `%s`.\n", verb)
		os.Exit(2)
	}

	err := command.Validate()
	if err != nil {
		fmt.Fprintf(out, "Bad arguments, try -h\n%v\n", err.Error())
		os.Exit(2)
	}

	return command
}
