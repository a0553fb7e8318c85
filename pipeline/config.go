package pipeline

import (
	"errors"
	"fmt"

	"jobpower/table"
	"jobpower/tick"
)

// Config is everything a run needs.  Zero values for TickSeconds and Workers select the defaults.
type Config struct {
	// Sources
	JobFiles     []string
	JobColumns   table.Columns // nil for defaults
	NodeFormat   string        // "hostlist" (default) or "layout"
	PowerFiles   []string
	PowerColumns table.Columns // nil for defaults; also used for database tables
	DatabaseURI  string
	PowerTables  []string // database tables, used after PowerFiles
	NodeListFile string   // empty means the union of the jobs' nodes

	// Targets
	Output      string
	ArtifactDir string
	KafkaBroker string
	KafkaTopic  string
	MetricsFile string

	// Operation
	TickSeconds int
	Workers     int
}

// Check the configuration and fill in defaults.  Everything that can be checked without touching
// the data is checked here, so that no processing starts with a bad configuration.
func (c *Config) Validate() error {
	if err := c.ValidateOccupancy(); err != nil {
		return err
	}
	if len(c.PowerFiles) == 0 && len(c.PowerTables) == 0 {
		return errors.New("No power table")
	}
	if len(c.PowerTables) > 0 && c.DatabaseURI == "" {
		return errors.New("Database power tables require a database URI")
	}
	if (c.KafkaBroker == "") != (c.KafkaTopic == "") {
		return errors.New("Kafka output requires both a broker and a topic")
	}
	return nil
}

// Check only what is needed to load jobs and compute occupancy.
func (c *Config) ValidateOccupancy() error {
	if len(c.JobFiles) == 0 {
		return errors.New("No job table")
	}
	if _, err := table.NodeExtractorByName(c.NodeFormat); err != nil {
		return err
	}
	if c.TickSeconds == 0 {
		c.TickSeconds = tick.DefaultWidth
	}
	if _, err := tick.NewGrid(c.TickSeconds); err != nil {
		return err
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.Workers < 0 {
		return fmt.Errorf("Bad worker count %d", c.Workers)
	}
	return nil
}

func (c *Config) grid() tick.Grid {
	return tick.MustGrid(c.TickSeconds)
}

func (c *Config) jobOptions() *table.JobOptions {
	extract, _ := table.NodeExtractorByName(c.NodeFormat)
	return &table.JobOptions{Columns: c.JobColumns, Nodes: extract}
}
