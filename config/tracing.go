package config

import "fmt"

// TracingConfig configures OpenTelemetry tracing of outgoing requests.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	ServiceName string `json:"service_name"`
	// Output is "stdout" or a file path receiving the spans.
	Output      string  `json:"output"`
	SampleRatio float64 `json:"sample_ratio"`
}

func (c *TracingConfig) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "gridstatus"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.SampleRatio == 0 {
		c.SampleRatio = 1
	}
}

func (c TracingConfig) Validate() error {
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("tracing sample_ratio must be within [0, 1]")
	}
	return nil
}
