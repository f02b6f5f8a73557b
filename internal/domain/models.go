package domain

import "time"

// MovementRecord is a single stock movement from the warehouse ledger.
// Positive quantity is a receipt, negative is consumption. Timestamp is
// nil when the source value could not be parsed; such rows still count
// toward the balance but are excluded from window and rate math.
type MovementRecord struct {
	ItemID    string     `json:"item_id" db:"item_id"`
	Timestamp *time.Time `json:"timestamp" db:"moved_at"`
	Quantity  float64    `json:"quantity" db:"quantity"`
}

// Item is a catalog entry keyed by item ID.
type Item struct {
	ItemID      string `json:"item_id" db:"item_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	ImageRef    string `json:"image_ref,omitempty" db:"image_ref"`
}

// ItemSnapshot holds the per-item aggregates and rate estimates derived
// from the ledger for one evaluation window.
type ItemSnapshot struct {
	ItemID           string  `json:"item_id"`
	CurrentBalance   float64 `json:"current_balance"`
	ConsumptionTotal float64 `json:"consumption_total"`
	ObservedDays     int     `json:"observed_days"`
	RecordCount      int     `json:"record_count"`
	DailyRate        float64 `json:"daily_rate"`
	// CoverageDays is how many days the current balance lasts at the
	// current rate. Infinite when DailyRate is zero.
	CoverageDays Coverage `json:"coverage_days"`
	// Variability is the standard deviation of consumption magnitudes;
	// only meaningful when RecordCount >= the configured history minimum.
	Variability     float64 `json:"variability"`
	CoefficientVar  float64 `json:"coefficient_of_variation"`
	HasVariability  bool    `json:"has_variability"`
}

// HorizonRequirement is the projected need and order quantity for one
// (item, horizon) pair.
type HorizonRequirement struct {
	HorizonDays     int     `json:"horizon_days"`
	NeededQuantity  float64 `json:"needed_quantity"`
	QuantityToOrder float64 `json:"quantity_to_order"`
}

// ReportRow is one line of the final recommendation table: catalog
// metadata joined with snapshot, calculator and classifier output.
type ReportRow struct {
	ItemID      string `json:"item_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// InCatalog is false for ledger items absent from the catalog;
	// name and description are empty in that case.
	InCatalog bool `json:"in_catalog"`

	CurrentBalance float64  `json:"current_balance"`
	DailyRate      float64  `json:"daily_rate"`
	CoverageDays   Coverage `json:"coverage_days"`
	// CoefficientVar mirrors the snapshot's coefficient of variation so
	// consumers can see why an item landed in an unstable tier.
	CoefficientVar float64 `json:"coefficient_of_variation,omitempty"`
	HasVariability bool    `json:"has_variability,omitempty"`
	Tier           Tier    `json:"tier"`

	Horizons []HorizonRequirement `json:"horizons"`

	// Shortfall is the signed gap against the "days until next order"
	// horizon; negative means surplus. Only set when a target order date
	// was supplied.
	Shortfall    float64 `json:"shortfall,omitempty"`
	HasShortfall bool    `json:"has_shortfall,omitempty"`
}

// Report is the assembled recommendation table plus the data-quality
// counters accumulated while producing it.
type Report struct {
	Rows        []ReportRow `json:"rows"`
	Diagnostics Diagnostics `json:"diagnostics"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Diagnostics carries data-quality counts alongside the report so a
// caller can render a banner instead of digging through logs.
type Diagnostics struct {
	MalformedTimestamps int `json:"malformed_timestamps"`
	LedgerOnlyItems     int `json:"ledger_only_items"`
	CatalogOnlyItems    int `json:"catalog_only_items"`
	ZeroRateItems       int `json:"zero_rate_items"`
}

// MovementSummary is the per-item movement history rollup used by the
// history view: counts and receipt/issue totals over the full ledger.
type MovementSummary struct {
	ItemID        string  `json:"item_id" db:"item_id"`
	Name          string  `json:"name" db:"name"`
	MovementCount int     `json:"movement_count" db:"movement_count"`
	ReceiptTotal  float64 `json:"receipt_total" db:"receipt_total"`
	IssueTotal    float64 `json:"issue_total" db:"issue_total"`
}
