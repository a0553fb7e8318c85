package repr

// Series is the aggregate power of one job, one value per sample timestamp, ascending.
type Series struct {
	Times  []int64
	Values []float64
}

func (s Series) Len() int {
	return len(s.Values)
}

// Result is the outcome of attributing power to one exclusive job.  Exactly one of Series and
// NoData is meaningful: NoData means no power samples matched the job, which is not the same
// thing as a series of length zero.
type Result struct {
	Job    *Job
	Series Series
	NoData bool
}
