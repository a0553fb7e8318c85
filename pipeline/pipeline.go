// The pipeline driver: load the job table, index occupancy per node, resolve exclusivity, load the
// power tables, attribute power to every exclusive job, and write the results.
//
// Loading happens before any dispatch and the loaded data are read-only afterwards, so the workers
// share them without locking.  The occupancy maps are all built before the exclusion set is
// computed; the per-job attribution writes into distinct result slots.

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobpower/artifact"
	. "jobpower/common"
	"jobpower/db"
	"jobpower/occupancy"
	"jobpower/power"
	"jobpower/repr"
	"jobpower/table"
	"jobpower/tick"
)

type Summary struct {
	RunID          string
	Jobs           int
	MalformedJobs  int
	Nodes          int
	Exclusive      int
	NoData         int
	MalformedPower int
	Elapsed        time.Duration
	Results        []repr.Result
}

func LoadJobs(cfg *Config) (*table.JobTable, int, error) {
	return table.LoadJobs(cfg.JobFiles, cfg.jobOptions())
}

// The nodes to index: those in the node list file, if there is one, otherwise every node that
// appears in some allocation.
func NodeSet(cfg *Config, jobs []*repr.Job) ([]string, error) {
	if cfg.NodeListFile != "" {
		nodes, err := table.ReadNodeList(cfg.NodeListFile)
		if err != nil {
			return nil, fmt.Errorf("Node list %s: %w", cfg.NodeListFile, err)
		}
		return nodes, nil
	}
	return occupancy.Nodes(jobs), nil
}

// Build the occupancy map of every node on the worker pool.  maps[i] belongs to nodes[i].
func IndexNodes(
	ctx context.Context,
	nodes []string,
	jobs []*repr.Job,
	grid tick.Grid,
	workers int,
) ([]occupancy.Map, error) {
	byNode := make(map[string][]*repr.Job)
	for _, j := range jobs {
		for _, n := range j.Nodes {
			byNode[n] = append(byNode[n], j)
		}
	}
	return parallelMap(ctx, workers, nodes, func(node string) occupancy.Map {
		return occupancy.Build(node, byNode[node], grid)
	})
}

// Index the nodes and split the jobs into those that are exclusive and the set of IDs that are
// not.  Exclusive jobs keep their table order.
func ResolveExclusive(
	ctx context.Context,
	cfg *Config,
	jobs []*repr.Job,
	nodes []string,
) ([]*repr.Job, occupancy.Set, error) {
	maps, err := IndexNodes(ctx, nodes, jobs, cfg.grid(), cfg.Workers)
	if err != nil {
		return nil, nil, err
	}
	excluded := occupancy.FindNonExclusive(maps)
	return occupancy.Exclusive(jobs, excluded), excluded, nil
}

type loadedTable struct {
	table *repr.PowerTable
	soft  int
	err   error
}

// Load the power tables, files first and then database tables, in the order given.  Database
// queries are restricted to the time span and nodes of the jobs.
func LoadPowerTables(
	ctx context.Context,
	cfg *Config,
	jobs []*repr.Job,
) (tables []*repr.PowerTable, softErrors int, err error) {
	loaded, err := parallelMap(ctx, cfg.Workers, cfg.PowerFiles, func(fn string) loadedTable {
		t, soft, err := table.LoadPower(fn, cfg.PowerColumns)
		return loadedTable{t, soft, err}
	})
	if err != nil {
		return nil, 0, err
	}
	for _, l := range loaded {
		if l.err != nil {
			return nil, 0, l.err
		}
		tables = append(tables, l.table)
		softErrors += l.soft
	}

	if len(cfg.PowerTables) > 0 {
		var pdb *db.PowerDB
		pdb, err = db.Open(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, 0, err
		}
		defer pdb.Close(ctx)
		from, to := jobSpan(jobs)
		nodes := occupancy.Nodes(jobs)
		for _, name := range cfg.PowerTables {
			var (
				t    *repr.PowerTable
				soft int
			)
			t, soft, err = pdb.ReadPowerTable(ctx, name, cfg.PowerColumns, from, to, nodes)
			if err != nil {
				return nil, 0, err
			}
			tables = append(tables, t)
			softErrors += soft
		}
	}
	return
}

func jobSpan(jobs []*repr.Job) (from, to time.Time) {
	for i, j := range jobs {
		if i == 0 || j.Start.Before(from) {
			from = j.Start
		}
		if i == 0 || j.End.After(to) {
			to = j.End
		}
	}
	return
}

func openArtifactStore(cfg *Config, runID string) (artifact.Store, error) {
	var stores artifact.Tee
	if cfg.ArtifactDir != "" {
		ds, err := artifact.NewDirStore(cfg.ArtifactDir)
		if err != nil {
			return nil, err
		}
		stores = append(stores, ds)
	}
	if cfg.KafkaBroker != "" {
		ks, err := artifact.NewKafkaStore(cfg.KafkaBroker, cfg.KafkaTopic, runID)
		if err != nil {
			return nil, err
		}
		stores = append(stores, ks)
	}
	switch len(stores) {
	case 0:
		return nil, nil
	case 1:
		return stores[0], nil
	default:
		return stores, nil
	}
}

// Attribute power to every job on the worker pool.  results[i] belongs to jobs[i].
func Attribute(
	ctx context.Context,
	at *power.Attributor,
	jobs []*repr.Job,
	workers int,
) ([]repr.Result, error) {
	return parallelMap(ctx, workers, jobs, func(j *repr.Job) repr.Result {
		return at.Attribute(ctx, j)
	})
}

// Run the whole pipeline.  A configuration or input error aborts the run before any output is
// written; a job for which power cannot be computed only gets the no-data marker.
func Run(ctx context.Context, cfg *Config) (*Summary, error) {
	started := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Summary{RunID: uuid.NewString()}
	Log.Infof("Run %s: tick %ds, %d workers", s.RunID, cfg.TickSeconds, cfg.Workers)

	jt, soft, err := LoadJobs(cfg)
	if err != nil {
		return nil, err
	}
	s.Jobs = len(jt.Jobs)
	s.MalformedJobs = soft

	nodes, err := NodeSet(cfg, jt.Jobs)
	if err != nil {
		return nil, err
	}
	s.Nodes = len(nodes)

	exclusive, excluded, err := ResolveExclusive(ctx, cfg, jt.Jobs, nodes)
	if err != nil {
		return nil, err
	}
	s.Exclusive = len(exclusive)
	Log.Infof("Run %s: %d of %d jobs exclusive, %d excluded", s.RunID, s.Exclusive, s.Jobs, len(excluded))

	tables, soft, err := LoadPowerTables(ctx, cfg, exclusive)
	if err != nil {
		return nil, err
	}
	s.MalformedPower = soft

	store, err := openArtifactStore(cfg, s.RunID)
	if err != nil {
		return nil, err
	}
	at := &power.Attributor{
		Tables:      tables,
		Store:       store,
		TickSeconds: cfg.TickSeconds,
	}
	results, err := Attribute(ctx, at, exclusive, cfg.Workers)
	if store != nil {
		if cerr := store.Close(); cerr != nil {
			Log.Warningf("Run %s: closing artifact store: %v", s.RunID, cerr)
		}
	}
	if err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].NoData {
			s.NoData++
		}
	}
	s.Results = results

	if cfg.Output != "" {
		layout := &table.OutputLayout{Columns: cfg.JobColumns, Extra: jt.Extra}
		if err := table.WriteOutput(cfg.Output, layout, results); err != nil {
			return nil, fmt.Errorf("Output %s: %w", cfg.Output, err)
		}
	}
	s.Elapsed = time.Since(started)

	if cfg.MetricsFile != "" {
		m := newRunMetrics()
		m.record(s)
		if err := m.write(cfg.MetricsFile); err != nil {
			Log.Warningf("Run %s: metrics %s: %v", s.RunID, cfg.MetricsFile, err)
		}
	}
	Log.Infof(
		"Run %s: %d results, %d without data, %v", s.RunID, len(results), s.NoData, s.Elapsed)
	return s, nil
}
