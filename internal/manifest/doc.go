// Package manifest loads and validates the gridfile: the HCL configuration
// surface carrying one orchestration run's dimensions, override rules,
// artifact specs and settings.
//
// Parsing stops at structured data. The loader decodes HCL blocks into
// schema structs, translates them into the matrix/artifact model, and runs
// every before-start validation; anything malformed is a ConfigurationError
// that fails the whole run before a single job is dispatched.
package manifest
