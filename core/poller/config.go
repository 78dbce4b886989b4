package poller

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/gridstatus/core/model"
)

// DefaultInterval is used for jobs without an interval.
const DefaultInterval = 5 * time.Minute

// Job describes one scheduled collection.
type Job struct {
	Name      string        `json:"name" yaml:"name"`
	ISO       string        `json:"iso" yaml:"iso"`
	Dataset   model.Dataset `json:"dataset" yaml:"dataset"`
	Market    string        `json:"market" yaml:"market"`
	Interval  time.Duration `json:"interval" yaml:"interval"`
	Locations []string      `json:"locations" yaml:"locations"`
}

// Config lists jobs inline or in a separate YAML/JSON file.
type Config struct {
	Jobs     []Job  `json:"jobs" yaml:"jobs"`
	JobsFile string `json:"jobs_file" yaml:"jobs_file"`
}

// SetDefaults fills the job names, markets and intervals.
func (j *Job) SetDefaults() {
	if j.Interval <= 0 {
		j.Interval = DefaultInterval
	}
	if j.Dataset == model.DatasetLMP && j.Market == "" {
		j.Market = model.MarketRealTime5Min.String()
	}
	if j.Name == "" {
		parts := []string{j.ISO, string(j.Dataset)}
		if j.Market != "" {
			parts = append(parts, strings.ToLower(j.Market))
		}
		j.Name = strings.Join(parts, "/")
	}
}

// Validate checks the job can be scheduled.
func (j Job) Validate() error {
	if j.ISO == "" {
		return fmt.Errorf("job %q: iso is required", j.Name)
	}
	if !j.Dataset.Valid() {
		return fmt.Errorf("job %q: unknown dataset %q", j.Name, j.Dataset)
	}
	if j.Dataset == model.DatasetLMP {
		if _, err := model.ParseMarket(j.Market); err != nil {
			return fmt.Errorf("job %q: %w", j.Name, err)
		}
	}
	if j.Interval < time.Second {
		return fmt.Errorf("job %q: interval must be at least 1s", j.Name)
	}
	return nil
}

// Date is the freshest date the job can ask for: latest where the dataset
// publishes it, today otherwise.
func (j Job) Date() model.DateSpec {
	switch j.Dataset {
	case model.DatasetLoad, model.DatasetLoadForecast:
		return model.Today()
	case model.DatasetLMP:
		if m, _ := model.ParseMarket(j.Market); m == model.MarketDayAheadHourly {
			return model.Today()
		}
	}
	return model.Latest()
}

// LoadJobs reads a job list from a YAML or JSON file, either a bare list or
// an object with a jobs key.
func LoadJobs(path string) ([]Job, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" && ext != ".json" {
		return nil, fmt.Errorf("unsupported jobs format: %s", ext)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []Job
	if err := yaml.Unmarshal(b, &list); err == nil {
		return list, nil
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("decode jobs %s: %w", path, err)
	}
	return cfg.Jobs, nil
}

// Resolve merges inline jobs with the jobs file, applies defaults and
// validates every job.
func (c Config) Resolve() ([]Job, error) {
	jobs := append([]Job{}, c.Jobs...)
	if c.JobsFile != "" {
		fromFile, err := LoadJobs(c.JobsFile)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, fromFile...)
	}
	seen := map[string]bool{}
	for i := range jobs {
		jobs[i].SetDefaults()
		if err := jobs[i].Validate(); err != nil {
			return nil, err
		}
		if seen[jobs[i].Name] {
			return nil, fmt.Errorf("duplicate job name %q", jobs[i].Name)
		}
		seen[jobs[i].Name] = true
	}
	return jobs, nil
}
