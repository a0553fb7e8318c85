package run

import (
	"context"
	"fmt"
	"io"

	. "jobpower/cmd"
	"jobpower/pipeline"
)

type RunCommand struct {
	DevArgs
	VerboseArgs
	JobSourceArgs
	PowerSourceArgs
	DataTargetArgs
	OperationArgs
}

var _ = (Command)((*RunCommand)(nil))

func (rc *RunCommand) Add(fs *CLI) {
	rc.DevArgs.Add(fs)
	rc.VerboseArgs.Add(fs)
	rc.JobSourceArgs.Add(fs)
	rc.PowerSourceArgs.Add(fs)
	rc.DataTargetArgs.Add(fs)
	rc.OperationArgs.Add(fs)
}

func (rc *RunCommand) Validate() error {
	for _, v := range []func() error{
		rc.DevArgs.Validate,
		rc.VerboseArgs.Validate,
		rc.JobSourceArgs.Validate,
		rc.PowerSourceArgs.Validate,
		rc.DataTargetArgs.Validate,
		rc.OperationArgs.Validate,
	} {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (rc *RunCommand) Summary(out io.Writer) {
	fmt.Fprint(out, `Find the jobs that had their nodes to themselves and compute the power series of each.

The output is the job table restricted to those jobs, with a power_consumption column added.
`)
}

func (rc *RunCommand) Config() *pipeline.Config {
	cfg := new(pipeline.Config)
	rc.JobSourceArgs.Configure(cfg)
	rc.PowerSourceArgs.Configure(cfg)
	rc.DataTargetArgs.Configure(cfg)
	rc.OperationArgs.Configure(cfg)
	return cfg
}

func (rc *RunCommand) Perform(ctx context.Context, stdout, _ io.Writer) error {
	s, err := pipeline.Run(ctx, rc.Config())
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout,
		"run %s: %d jobs (%d malformed), %d exclusive, %d without power data, %d nodes\n",
		s.RunID, s.Jobs, s.MalformedJobs, s.Exclusive, s.NoData, s.Nodes)
	return nil
}
