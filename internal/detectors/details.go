package detectors

// Details is the closed set of per-category issue payloads. Each
// detector attaches exactly one concrete payload type, replacing the
// open key/value map the issue model would otherwise need.
type Details interface {
	isDetails()
}

// MissingFieldDetails describes a missing required column or null cells
// in a required column.
type MissingFieldDetails struct {
	Field         string `json:"field"`
	MissingColumn bool   `json:"missing_column"`
	NullCount     int    `json:"null_count"`
	RequiredFor   string `json:"required_for"`
}

// FormatDetails describes malformed cells in one column.
type FormatDetails struct {
	Field          string   `json:"field"`
	ExpectedFormat string   `json:"expected_format"`
	InvalidCount   int      `json:"invalid_count"`
	Examples       []string `json:"examples,omitempty"`
}

// LogicDetails describes a cross-field ordering violation.
type LogicDetails struct {
	Check      string `json:"check"`
	ErrorCount int    `json:"error_count"`
}

// RangeDetails describes values outside a plausible range.
type RangeDetails struct {
	Field      string  `json:"field"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	OutOfRange int     `json:"out_of_range"`
}

// OutlierDetails describes statistical outliers in a numeric column.
type OutlierDetails struct {
	Field         string  `json:"field"`
	Method        string  `json:"method"`
	LowThreshold  float64 `json:"low_threshold"`
	HighThreshold float64 `json:"high_threshold"`
	Mean          float64 `json:"mean,omitempty"`
	StdDev        float64 `json:"std_dev,omitempty"`
	Median        float64 `json:"median,omitempty"`
	OutlierCount  int     `json:"outlier_count"`
}

// ClusterDetails describes unusual age clustering.
type ClusterDetails struct {
	Age            int     `json:"age"`
	ClusterPercent float64 `json:"cluster_percent"`
	SampleSize     int     `json:"sample_size"`
}

// MassEventDetails describes many rows sharing one hire or termination date.
type MassEventDetails struct {
	Event            string `json:"event"`
	Date             string `json:"date"`
	EmployeeCount    int    `json:"employee_count"`
	ComplianceImpact string `json:"compliance_impact,omitempty"`
}

// PatternDetails describes one value dominating a non-identifier column.
type PatternDetails struct {
	Field          string  `json:"field"`
	IdenticalValue string  `json:"identical_value"`
	PatternPercent float64 `json:"pattern_percent"`
}

// RoundBiasDetails describes round-number bias in a compensation column.
type RoundBiasDetails struct {
	Field        string  `json:"field"`
	RoundPercent float64 `json:"round_percent"`
}

// ComplianceDetails describes field sets missing for a downstream
// compliance determination.
type ComplianceDetails struct {
	MissingFields  []string `json:"missing_fields"`
	RequiredFor    string   `json:"required_for"`
	ComplianceTest string   `json:"compliance_test"`
}

func (MissingFieldDetails) isDetails() {}
func (FormatDetails) isDetails()       {}
func (LogicDetails) isDetails()        {}
func (RangeDetails) isDetails()        {}
func (OutlierDetails) isDetails()      {}
func (ClusterDetails) isDetails()      {}
func (MassEventDetails) isDetails()    {}
func (PatternDetails) isDetails()      {}
func (RoundBiasDetails) isDetails()    {}
func (ComplianceDetails) isDetails()   {}
