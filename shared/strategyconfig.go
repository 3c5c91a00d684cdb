package shared

// DataSource identifies which catalog table a history read targets.
type DataSource int

const (
	// PrimarySource reads live capture history.
	PrimarySource DataSource = iota
	// ImportedSource reads backfilled history, falling back to primary
	// capture when no imported rows exist.
	ImportedSource
)

// String stringifies the provided data source.
func (s DataSource) String() string {
	switch s {
	case PrimarySource:
		return "primary"
	case ImportedSource:
		return "imported"
	default:
		return "unknown"
	}
}

// StrategyConfig represents an active strategy configuration row from the
// catalog.
type StrategyConfig struct {
	ID          string
	Name        string
	Version     string
	Params      map[string]any
	Symbols     []string
	Timeframes  []Timeframe
	Mode        string
	InitPeriods int
	IsLive      bool
	Status      string
}
