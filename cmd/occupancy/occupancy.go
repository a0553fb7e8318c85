package occupancy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	. "jobpower/cmd"
	occmap "jobpower/occupancy"
	"jobpower/pipeline"
	"jobpower/tick"
)

type OccupancyCommand struct {
	DevArgs
	VerboseArgs
	JobSourceArgs
	OperationArgs
	Node string
}

var _ = (Command)((*OccupancyCommand)(nil))

func (oc *OccupancyCommand) Add(fs *CLI) {
	oc.DevArgs.Add(fs)
	oc.VerboseArgs.Add(fs)
	oc.JobSourceArgs.Add(fs)
	oc.OperationArgs.Add(fs)
	fs.Group("operation-selection")
	fs.StringVar(&oc.Node, "node", "", "Print the occupancy of node `name` [required]")
}

func (oc *OccupancyCommand) Validate() error {
	for _, v := range []func() error{
		oc.DevArgs.Validate,
		oc.VerboseArgs.Validate,
		oc.JobSourceArgs.Validate,
		oc.OperationArgs.Validate,
	} {
		if err := v(); err != nil {
			return err
		}
	}
	if oc.Node == "" {
		return errors.New("Required -node")
	}
	return nil
}

func (oc *OccupancyCommand) Summary(out io.Writer) {
	fmt.Fprint(out, `Print the occupancy map of one node: one line per occupied tick, with the time of the tick
and the IDs of the jobs running on the node at that time.  Lines with more than one job show the
sharing that makes those jobs non-exclusive.
`)
}

func (oc *OccupancyCommand) Perform(_ context.Context, stdout, _ io.Writer) error {
	cfg := new(pipeline.Config)
	oc.JobSourceArgs.Configure(cfg)
	oc.OperationArgs.Configure(cfg)
	if err := cfg.ValidateOccupancy(); err != nil {
		return err
	}
	jt, _, err := pipeline.LoadJobs(cfg)
	if err != nil {
		return err
	}
	grid := tick.MustGrid(cfg.TickSeconds)
	m := occmap.Build(oc.Node, jt.Jobs, grid)
	for _, k := range m.Ticks() {
		ids := make([]string, len(m[k]))
		for i, id := range m[k] {
			ids[i] = string(id)
		}
		fmt.Fprintf(stdout, "%s %s\n", grid.Time(k).Format(time.RFC3339), strings.Join(ids, ","))
	}
	return nil
}
