package constants

// Matching thresholds used when pairing nodes of two variants.
const (
	// DefaultStructuralThreshold is the minimum APTED similarity at which two
	// statements of the same kind that the similarity rules kept apart are
	// still paired, so a replaced statement reads as a change rather than a
	// delete plus an add.
	DefaultStructuralThreshold = 0.5

	// DefaultParallelThreshold is the number of compilation units per side
	// above which correspondence lookup fans out to a worker pool.
	DefaultParallelThreshold = 64

	// DefaultMaxWorkers of zero means one worker per CPU.
	DefaultMaxWorkers = 0
)

// Tree edit cost models for the structural fallback.
const (
	// CostModelUniform charges 1 for every insert, delete and rename.
	CostModelUniform = "uniform"

	// CostModelJava weighs edits by node category, so changes to
	// declarations and control flow count more than changes to expressions.
	CostModelJava = "java"

	DefaultCostModel = CostModelUniform
)

// Variant identifiers stamped onto variants when none are configured.
const (
	DefaultLeadingVariantID     = "leading"
	DefaultIntegrationVariantID = "integration"
)

// DefaultVariationPointPrefix prefixes the sequential variation point ids
const DefaultVariationPointPrefix = "vp-"
