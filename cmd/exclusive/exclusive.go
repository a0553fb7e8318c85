package exclusive

import (
	"context"
	"fmt"
	"io"

	. "jobpower/cmd"
	"jobpower/pipeline"
)

type ExclusiveCommand struct {
	DevArgs
	VerboseArgs
	JobSourceArgs
	OperationArgs
	NonExclusive bool
}

var _ = (Command)((*ExclusiveCommand)(nil))

func (ec *ExclusiveCommand) Add(fs *CLI) {
	ec.DevArgs.Add(fs)
	ec.VerboseArgs.Add(fs)
	ec.JobSourceArgs.Add(fs)
	ec.OperationArgs.Add(fs)
	fs.Group("operation-selection")
	fs.BoolVar(&ec.NonExclusive, "non-exclusive", false,
		"Print the jobs that shared a node instead")
}

func (ec *ExclusiveCommand) Validate() error {
	for _, v := range []func() error{
		ec.DevArgs.Validate,
		ec.VerboseArgs.Validate,
		ec.JobSourceArgs.Validate,
		ec.OperationArgs.Validate,
	} {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (ec *ExclusiveCommand) Summary(out io.Writer) {
	fmt.Fprint(out, `Print the IDs of the jobs that had all their nodes to themselves, one per line, in
job table order.
`)
}

func (ec *ExclusiveCommand) Perform(ctx context.Context, stdout, _ io.Writer) error {
	cfg := new(pipeline.Config)
	ec.JobSourceArgs.Configure(cfg)
	ec.OperationArgs.Configure(cfg)
	if err := cfg.ValidateOccupancy(); err != nil {
		return err
	}
	jt, _, err := pipeline.LoadJobs(cfg)
	if err != nil {
		return err
	}
	nodes, err := pipeline.NodeSet(cfg, jt.Jobs)
	if err != nil {
		return err
	}
	exclusive, excluded, err := pipeline.ResolveExclusive(ctx, cfg, jt.Jobs, nodes)
	if err != nil {
		return err
	}
	if ec.NonExclusive {
		for _, j := range jt.Jobs {
			if excluded.Has(j.ID) {
				fmt.Fprintln(stdout, j.ID)
			}
		}
		return nil
	}
	for _, j := range exclusive {
		fmt.Fprintln(stdout, j.ID)
	}
	return nil
}
