package power

import (
	"context"
	"errors"

	"jobpower/artifact"
	. "jobpower/common"
	"jobpower/repr"
)

// Attributor turns one exclusive job into a Result.  It never fails: any error, including a panic
// in the aggregation, becomes the NoData outcome for that job alone.  If Store is not nil, every
// computed series is also persisted under the job's ID; a failure to persist is logged and does
// not change the result.
type Attributor struct {
	Tables      []*repr.PowerTable
	Store       artifact.Store
	TickSeconds int
}

func (at *Attributor) Attribute(ctx context.Context, job *repr.Job) repr.Result {
	var series repr.Series
	err := Protect(func() (err error) {
		series, err = Aggregate(job, at.Tables)
		return
	})
	if err != nil {
		if errors.Is(err, ErrNoData) {
			Log.Warningf("Job %s: %v", job.ID, err)
		} else {
			Log.Warningf("Job %s: Aggregation failed: %v", job.ID, err)
		}
		return repr.Result{Job: job, NoData: true}
	}
	if at.Store != nil {
		if err := at.Store.Put(ctx, artifact.New(job.ID, at.TickSeconds, series)); err != nil {
			Log.Warningf("Job %s: Failed to store artifact: %v", job.ID, err)
		}
	}
	return repr.Result{Job: job, Series: series}
}
