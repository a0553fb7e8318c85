package table

import (
	"fmt"
	"io"
	"time"

	"github.com/NordicHPC/sonar/util/formats/newfmt"

	. "jobpower/common"
	"jobpower/repr"
	"jobpower/utils/hostglob"
)

// Pass-through columns carried from Sonar job records.
var SonarJobColumns = []string{"user", "account", "partition", "job_name", "job_state"}

// Read a stream of Sonar Slurm job envelopes.  Job steps are ignored since they share their
// allocation with the parent job, and so are jobs that have not finished.
func ReadSonarJobs(input io.Reader) (jobs []*repr.Job, softErrors int, err error) {
	jobs = make([]*repr.Job, 0)
	err = newfmt.ConsumeJSONJobs(input, false, func(r *newfmt.JobsEnvelope) {
		if r.Errors != nil || r.Data == nil {
			softErrors++
			return
		}
		for i := range r.Data.Attributes.SlurmJobs {
			job := &r.Data.Attributes.SlurmJobs[i]
			if job.JobStep != "" {
				continue
			}
			id := fmt.Sprint(uint64(job.JobID))
			start, err := time.Parse(time.RFC3339, string(job.Start))
			if err != nil {
				continue
			}
			end, err := time.Parse(time.RFC3339, string(job.End))
			if err != nil {
				// Still running, or never started
				continue
			}
			nodes, err := expandNodeList(job.NodeList)
			if err != nil || len(nodes) == 0 || end.Before(start) {
				Log.Warningf("Sonar job %s: bad time interval or node list", id)
				softErrors++
				continue
			}
			j := repr.NewJob(repr.JobID(id), start.UTC(), end.UTC(), nodes)
			j.Extra = map[string]string{
				"user":      job.UserName,
				"account":   job.Account,
				"partition": job.Partition,
				"job_name":  job.JobName,
				"job_state": string(job.JobState),
			}
			jobs = append(jobs, j)
		}
	})
	return
}

// Each element of a Sonar node list is a host range such as "c1-[10-20]".
func expandNodeList(ranges []newfmt.HostnameRange) ([]string, error) {
	nodes := make([]string, 0, len(ranges))
	for _, r := range ranges {
		expanded, err := hostglob.ExpandMultiPattern(string(r))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, expanded...)
	}
	return nodes, nil
}

// Read a stream of Sonar sample envelopes into a power table.  The power of a node at a sample
// time is the sum of the reported power draw of its GPUs; samples without GPU data contribute
// nothing.
func ReadSonarPower(input io.Reader, table *repr.PowerTable) (softErrors int, err error) {
	err = newfmt.ConsumeJSONSamples(input, false, func(r *newfmt.SampleEnvelope) {
		if r.Errors != nil || r.Data == nil {
			softErrors++
			return
		}
		attrs := &r.Data.Attributes
		ti, err := time.Parse(time.RFC3339, string(attrs.Time))
		if err != nil || attrs.Node == "" {
			softErrors++
			return
		}
		if attrs.System.Gpus == nil {
			return
		}
		var watts uint64
		for i := range attrs.System.Gpus {
			watts += attrs.System.Gpus[i].Power
		}
		table.Add(repr.PowerSample{
			Node:      string(attrs.Node),
			Timestamp: ti.Unix(),
			Watts:     float64(watts),
		})
	})
	return
}
