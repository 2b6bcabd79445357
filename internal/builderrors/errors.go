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

// Package builderrors implements the builder's closed error taxonomy.
//
// All pipeline stages communicate failure through *BuildError rather than
// panics or sentinel strings, so that a failed build can be inspected,
// logged, and compared by callers without parsing messages.
package builderrors

import "fmt"

// Code identifies one of the builder's fatal error classes.
type Code string

const (
	CodeEntryNotFound             Code = "ENTRY_NOT_FOUND"
	CodeDiscoveryIOError          Code = "DISCOVERY_IO_ERROR"
	CodeMissingImport             Code = "MISSING_IMPORT"
	CodeCircularDependency        Code = "CIRCULAR_DEPENDENCY"
	CodeModuleNotFound            Code = "MODULE_NOT_FOUND"
	CodeEvaluationFailed          Code = "EVALUATION_FAILED"
	CodeArtifactAlreadyRegistered Code = "ARTIFACT_ALREADY_REGISTERED"
	CodeArtifactNotFoundInRuntime Code = "ARTIFACT_NOT_FOUND_IN_RUNTIME_MODULE"
)

// BuildError is the single error type surfaced to BuilderSession callers.
// Only one of the optional fields is populated, depending on Code.
type BuildError struct {
	Code Code

	// ENTRY_NOT_FOUND / DISCOVERY_IO_ERROR / MODULE_NOT_FOUND
	FilePath string

	// DISCOVERY_IO_ERROR / EVALUATION_FAILED
	Message string

	// MISSING_IMPORT
	ImportingFile string
	Specifier     string

	// CIRCULAR_DEPENDENCY
	Chain []string

	// EVALUATION_FAILED / ARTIFACT_ALREADY_REGISTERED / ARTIFACT_NOT_FOUND_IN_RUNTIME_MODULE
	CanonicalId string

	// Cause, when a lower-level error triggered this one.
	Cause error
}

func (e *BuildError) Error() string {
	switch e.Code {
	case CodeEntryNotFound:
		return fmt.Sprintf("%s: entrypoint not found: %s", e.Code, e.FilePath)
	case CodeDiscoveryIOError:
		return fmt.Sprintf("%s: %s: %s", e.Code, e.FilePath, e.Message)
	case CodeMissingImport:
		return fmt.Sprintf("%s: %s imports unresolved specifier %q", e.Code, e.ImportingFile, e.Specifier)
	case CodeCircularDependency:
		return fmt.Sprintf("%s: %v", e.Code, e.Chain)
	case CodeModuleNotFound:
		return fmt.Sprintf("%s: %s", e.Code, e.FilePath)
	case CodeEvaluationFailed:
		if e.CanonicalId != "" {
			return fmt.Sprintf("%s: %s: %s", e.Code, e.CanonicalId, e.Message)
		}
		return fmt.Sprintf("%s: %s: %s", e.Code, e.FilePath, e.Message)
	case CodeArtifactAlreadyRegistered:
		return fmt.Sprintf("%s: %s", e.Code, e.CanonicalId)
	case CodeArtifactNotFoundInRuntime:
		return fmt.Sprintf("%s: %s", e.Code, e.CanonicalId)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func (e *BuildError) Unwrap() error { return e.Cause }

func EntryNotFound(filePath string) *BuildError {
	return &BuildError{Code: CodeEntryNotFound, FilePath: filePath}
}

func DiscoveryIOError(filePath string, cause error) *BuildError {
	return &BuildError{Code: CodeDiscoveryIOError, FilePath: filePath, Message: cause.Error(), Cause: cause}
}

func MissingImport(importingFile, specifier string) *BuildError {
	return &BuildError{Code: CodeMissingImport, ImportingFile: importingFile, Specifier: specifier}
}

func CircularDependency(chain []string) *BuildError {
	return &BuildError{Code: CodeCircularDependency, Chain: chain}
}

func ModuleNotFound(filePath string) *BuildError {
	return &BuildError{Code: CodeModuleNotFound, FilePath: filePath}
}

func EvaluationFailed(canonicalId, filePath, message string, cause error) *BuildError {
	return &BuildError{Code: CodeEvaluationFailed, CanonicalId: canonicalId, FilePath: filePath, Message: message, Cause: cause}
}

func ArtifactAlreadyRegistered(canonicalId string) *BuildError {
	return &BuildError{Code: CodeArtifactAlreadyRegistered, CanonicalId: canonicalId}
}

func ArtifactNotFoundInRuntime(canonicalId string) *BuildError {
	return &BuildError{Code: CodeArtifactNotFoundInRuntime, CanonicalId: canonicalId}
}
