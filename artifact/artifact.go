// Per-job artifacts: the power series of one job, stored under the job's ID.
//
// A Store must be safe for concurrent use, since the aggregation workers write to it directly.

package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path"

	"jobpower/repr"
)

type Artifact struct {
	JobID  repr.JobID `json:"job_id"`
	Tick   int        `json:"tick"`
	Times  []int64    `json:"times"`
	Values []float64  `json:"values"`
}

func New(id repr.JobID, tickSeconds int, s repr.Series) *Artifact {
	return &Artifact{
		JobID:  id,
		Tick:   tickSeconds,
		Times:  s.Times,
		Values: s.Values,
	}
}

func (a *Artifact) Series() repr.Series {
	return repr.Series{Times: a.Times, Values: a.Values}
}

type Store interface {
	Put(ctx context.Context, a *Artifact) error
	Close() error
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// DirStore writes one file per job, <dir>/<job-id>.json.  The ID is path-escaped so that any
// string is a valid key.  Files are written to a temporary name and renamed into place so that a
// reader never sees a partial artifact.

type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		return nil, errors.New("Empty artifact directory name")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DirStore{dir: path.Clean(dir)}, nil
}

func (ds *DirStore) Filename(id repr.JobID) string {
	return path.Join(ds.dir, url.PathEscape(string(id))+".json")
}

func (ds *DirStore) Put(_ context.Context, a *Artifact) error {
	blob, err := json.Marshal(a)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(ds.dir, ".artifact-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(blob)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), ds.Filename(a.JobID))
}

func (ds *DirStore) Get(id repr.JobID) (*Artifact, error) {
	blob, err := os.ReadFile(ds.Filename(id))
	if err != nil {
		return nil, err
	}
	a := new(Artifact)
	if err := json.Unmarshal(blob, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (ds *DirStore) Close() error {
	return nil
}

// Tee sends every artifact to all its stores.  Put and Close try every store and return the first
// error.
type Tee []Store

func (t Tee) Put(ctx context.Context, a *Artifact) error {
	var first error
	for _, s := range t {
		if err := s.Put(ctx, a); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t Tee) Close() error {
	var first error
	for _, s := range t {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
