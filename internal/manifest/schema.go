package manifest

// --- Gridfile block schemas ---

// DimensionBlock is a `dimension "name" { values = [...] }` block. The
// declaration order of dimension blocks fixes the expansion nesting order
// and the identity join order.
type DimensionBlock struct {
	Name   string   `hcl:"name,label"`
	Values []string `hcl:"values"`
}

// ExcludeBlock is an `exclude { where = {...} }` block: a partial-key
// predicate removing matching cells from the candidate set.
type ExcludeBlock struct {
	Where map[string]string `hcl:"where"`
}

// IncludeBlock is an `include { cell = {...} }` block: a fully-specified
// cell injected into the job set after exclusion.
type IncludeBlock struct {
	Cell map[string]string `hcl:"cell"`
}

// ArtifactBlock is an `artifact "target" { ... }` block, the declarative
// artifact record for one build target.
type ArtifactBlock struct {
	Target      string `hcl:"target,label"`
	Destination string `hcl:"destination"`
	Source      string `hcl:"source,optional"`
	Strategy    string `hcl:"strategy,optional"`
	Pages       bool   `hcl:"pages,optional"`
}

// SettingsBlock carries run-wide knobs. At most one settings block may
// appear across all loaded files.
type SettingsBlock struct {
	Workers           int      `hcl:"workers,optional"`
	FailFast          bool     `hcl:"fail_fast,optional"`
	ArtifactsRequired bool     `hcl:"artifacts_required,optional"`
	TargetDimension   string   `hcl:"target_dimension,optional"`
	QualifierDims     []string `hcl:"qualifier_dimensions,optional"`
}

// GridFile is the top-level structure of one gridfile.
type GridFile struct {
	Dimensions []*DimensionBlock `hcl:"dimension,block"`
	Excludes   []*ExcludeBlock   `hcl:"exclude,block"`
	Includes   []*IncludeBlock   `hcl:"include,block"`
	Artifacts  []*ArtifactBlock  `hcl:"artifact,block"`
	Settings   *SettingsBlock    `hcl:"settings,block"`
}
