/*
Copyright © 2026 sodagql contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package analyzer defines the AstAnalyzer capability (spec.md §4.1, §6):
// a pure, deterministic function from source text to a ModuleAnalysis,
// implemented by two interchangeable tree-sitter backends that must agree
// on astPath for identical input.
package analyzer

// ImportKind classifies how a binding was imported.
type ImportKind string

const (
	ImportNamed     ImportKind = "named"
	ImportNamespace ImportKind = "namespace"
	ImportDefault   ImportKind = "default"
)

// ModuleImport is one import binding pulled into a module.
type ModuleImport struct {
	Source     string
	Local      string
	Kind       ImportKind
	IsTypeOnly bool
}

// ExportVariant distinguishes a direct export from a re-export.
type ExportVariant string

const (
	ExportNamed    ExportVariant = "named"
	ExportReexport ExportVariant = "reexport"
)

// ModuleExport is one export binding surfaced by a module, either a named
// local export or a re-export of another module's binding.
type ModuleExport struct {
	Variant    ExportVariant
	Exported   string
	Local      string // populated for ExportNamed, optional for ExportReexport
	Source     string // populated for ExportReexport
	IsTypeOnly bool
}

// DiagnosticSeverity classifies a Diagnostic.
type DiagnosticSeverity string

const (
	SeverityWarning DiagnosticSeverity = "warning"
	SeverityError   DiagnosticSeverity = "error"
)

// DiagnosticKind is the fixed taxonomy of diagnostics both backends must
// emit (spec.md §4.1).
type DiagnosticKind string

const (
	DiagRenamedHelperImport   DiagnosticKind = "renamed_helper_import"
	DiagDefaultHelperImport   DiagnosticKind = "default_helper_import"
	DiagStarHelperImport      DiagnosticKind = "star_helper_import"
	DiagMissingArgument       DiagnosticKind = "missing_argument"
	DiagWrongTypedArgument    DiagnosticKind = "wrong_typed_argument"
	DiagSpreadArgument        DiagnosticKind = "spread_argument"
	DiagNonMemberCallee       DiagnosticKind = "non_member_callee"
	DiagComputedCallee        DiagnosticKind = "computed_callee"
	DiagOptionalChainedCallee DiagnosticKind = "optional_chained_callee"
	DiagDynamicCallee         DiagnosticKind = "dynamic_callee"
	DiagClassPropertyDefine   DiagnosticKind = "class_property_define"
	DiagExtraArguments        DiagnosticKind = "extra_arguments"
)

// Location is a half-open source range; lines/columns are 1-indexed, byte
// offsets are 0-indexed (spec.md §4.1).
type Location struct {
	Start  int
	End    int
	Line   int
	Column int
}

// Diagnostic is informational only: it never aborts a build (spec.md §7).
type Diagnostic struct {
	Kind     DiagnosticKind
	Severity DiagnosticSeverity
	Message  string
	Location Location
}

// ModuleDefinition is one GraphQL-related definition found inside a file,
// located by its dotted astPath (spec.md §3).
type ModuleDefinition struct {
	AstPath       string
	IsTopLevel    bool
	IsExported    bool
	ExportBinding string // empty when not exported
	Expression    string // raw source text of the defining expression
}

// ModuleAnalysis is the full output of analyzing one file (spec.md §3, §4.1).
type ModuleAnalysis struct {
	FilePath    string
	Signature   string // hash of source bytes
	Definitions []ModuleDefinition
	Imports     []ModuleImport
	Exports     []ModuleExport
	Diagnostics []Diagnostic
}

// HasGraphQLDefinitions reports whether this analysis contains at least
// one definition, the predicate the intermediate-module registry's cycle
// relaxation rule consults (spec.md §4.6).
func (m ModuleAnalysis) HasGraphQLDefinitions() bool {
	return len(m.Definitions) > 0
}

// Input is what callers give an Analyzer.
type Input struct {
	FilePath string // absolute path
	Source   []byte
}

// Analyzer is the AstAnalyzer capability (spec.md §6): pure, deterministic,
// side-effect-free beyond returning diagnostics.
type Analyzer interface {
	// Type returns a stable identifier for this backend, used to namespace
	// cache entries (spec.md §6, §9 "cache versioning").
	Type() string
	// Analyze parses one file and returns its ModuleAnalysis.
	Analyze(in Input) (ModuleAnalysis, error)
}
