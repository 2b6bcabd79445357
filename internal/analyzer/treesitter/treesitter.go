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

// Package treesitter implements the primary AstAnalyzer backend (spec.md
// §4.1) on top of github.com/tree-sitter/go-tree-sitter and the
// tree-sitter-typescript grammar, following the parser-pool pattern of the
// reference custom-elements-manifest tool this builder's pipeline is
// modeled on.
package treesitter

import (
	"fmt"
	"strings"
	"sync"

	"sodagql.dev/builder/internal/analyzer"
	"sodagql.dev/builder/internal/analyzer/astnaming"
	"sodagql.dev/builder/internal/fingerprint"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// BackendType is the Analyzer.Type() identifier for this backend, used to
// namespace cache entries (spec.md §6, §9).
const BackendType = "treesitter-go"

// defaultHelperSource is the module specifier the GraphQL helper is
// imported from (e.g. `import { gql } from "@sodagql/runtime"`). The
// analyzer flags renamed/default/star imports from this module as
// diagnostics per spec.md §4.1.
const defaultHelperSource = "@sodagql/runtime"

var languages = struct {
	typescript *ts.Language
	tsx        *ts.Language
}{
	ts.NewLanguage(tsTypescript.LanguageTypescript()),
	ts.NewLanguage(tsTypescript.LanguageTSX()),
}

var parserPool = sync.Pool{
	New: func() any {
		return ts.NewParser()
	},
}

// retrieveParser pulls a parser from the pool and points it at the
// grammar matching filePath's extension. Plain .ts/.d.ts files use the
// TypeScript grammar; .tsx uses the TSX grammar, since JSX syntax is
// ambiguous with generic type-argument lists under the plain grammar.
func retrieveParser(filePath string) *ts.Parser {
	p := parserPool.Get().(*ts.Parser)
	lang := languages.typescript
	if strings.HasSuffix(strings.ToLower(filePath), ".tsx") {
		lang = languages.tsx
	}
	if err := p.SetLanguage(lang); err != nil {
		panic(fmt.Sprintf("treesitter: failed to set language for %s: %v", filePath, err))
	}
	return p
}

func releaseParser(p *ts.Parser) {
	p.Reset()
	parserPool.Put(p)
}

// Analyzer implements analyzer.Analyzer using go-tree-sitter.
type Analyzer struct {
	// HelperNames are call-expression callee object names that identify a
	// GraphQL-helper member call (e.g. "gql" in `gql.fragment(...)`).
	// Defaults to {"gql"} when empty.
	HelperNames []string
}

func New() *Analyzer {
	return &Analyzer{HelperNames: []string{"gql"}}
}

func (a *Analyzer) Type() string { return BackendType }

func (a *Analyzer) Analyze(in analyzer.Input) (analyzer.ModuleAnalysis, error) {
	parser := retrieveParser(in.FilePath)
	defer releaseParser(parser)

	tree := parser.Parse(in.Source, nil)
	if tree == nil {
		return analyzer.ModuleAnalysis{}, fmt.Errorf("treesitter: failed to parse %s", in.FilePath)
	}
	defer tree.Close()

	w := &walker{
		src:         in.Source,
		builder:     astnaming.NewBuilder(),
		helperNames: helperNameSet(a.HelperNames),
		exportMap:   map[string]string{},
	}
	w.walkProgram(tree.RootNode())

	analysis := analyzer.ModuleAnalysis{
		FilePath:    in.FilePath,
		Signature:   fingerprint.Signature(in.Source),
		Definitions: w.definitions,
		Imports:     w.imports,
		Exports:     w.exports,
		Diagnostics: w.diagnostics,
	}
	w.applyExportBindings(&analysis)
	return analysis, nil
}

func helperNameSet(names []string) map[string]bool {
	if len(names) == 0 {
		names = []string{"gql"}
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

type walker struct {
	src         []byte
	builder     *astnaming.Builder
	helperNames map[string]bool

	definitions []analyzer.ModuleDefinition
	imports     []analyzer.ModuleImport
	exports     []analyzer.ModuleExport
	diagnostics []analyzer.Diagnostic

	// exportMap maps a locally declared name to its exported name, filled
	// in while walking export statements.
	exportMap map[string]string
}

func (w *walker) text(n *ts.Node) string {
	return n.Utf8Text(w.src)
}

func (w *walker) loc(n *ts.Node) analyzer.Location {
	start := n.StartPosition()
	return analyzer.Location{
		Start:  int(n.StartByte()),
		End:    int(n.EndByte()),
		Line:   int(start.Row) + 1,
		Column: int(start.Column) + 1,
	}
}

func (w *walker) walkProgram(root *ts.Node) {
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		child := root.NamedChild(uint(i))
		w.walkTopLevel(child)
	}
}

// walkTopLevel dispatches on each top-level statement of the module.
func (w *walker) walkTopLevel(n *ts.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "import_statement":
		w.handleImport(n)
	case "export_statement":
		w.handleExport(n)
	case "lexical_declaration", "variable_declaration":
		w.handleVariableDeclaration(n, true)
	case "function_declaration":
		w.handleFunctionDeclaration(n, true)
	case "class_declaration":
		w.handleClassDeclaration(n, true)
	}
}

func (w *walker) handleImport(n *ts.Node) {
	sourceNode := n.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	source := unquote(w.text(sourceNode))
	isTypeOnly := hasChildOfKind(n, "type")

	clause := firstChildOfKind(n, "import_clause")
	if clause == nil {
		return
	}
	count := int(clause.NamedChildCount())
	for i := 0; i < count; i++ {
		part := clause.NamedChild(uint(i))
		switch part.Kind() {
		case "identifier":
			local := w.text(part)
			kind := analyzer.ImportDefault
			w.imports = append(w.imports, analyzer.ModuleImport{Source: source, Local: local, Kind: kind, IsTypeOnly: isTypeOnly})
			w.maybeFlagHelperImportShape(local, source, "default")
		case "namespace_import":
			local := w.text(lastNamedChild(part))
			w.imports = append(w.imports, analyzer.ModuleImport{Source: source, Local: local, Kind: analyzer.ImportNamespace, IsTypeOnly: isTypeOnly})
			w.maybeFlagHelperImportShape(local, source, "star")
		case "named_imports":
			w.handleNamedImports(part, source, isTypeOnly)
		}
	}
}

func (w *walker) handleNamedImports(n *ts.Node, source string, isTypeOnly bool) {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		spec := n.NamedChild(uint(i))
		if spec.Kind() != "import_specifier" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		aliasNode := spec.ChildByFieldName("alias")
		imported := w.text(nameNode)
		local := imported
		renamed := false
		if aliasNode != nil {
			local = w.text(aliasNode)
			renamed = true
		}
		w.imports = append(w.imports, analyzer.ModuleImport{Source: source, Local: local, Kind: analyzer.ImportNamed, IsTypeOnly: isTypeOnly})
		if imported == "gql" && renamed {
			w.maybeFlagHelperImportShape(local, source, "renamed")
		}
	}
}

func (w *walker) maybeFlagHelperImportShape(local, source, shape string) {
	if source != defaultHelperSource {
		return
	}
	var kind analyzer.DiagnosticKind
	switch shape {
	case "renamed":
		kind = analyzer.DiagRenamedHelperImport
	case "default":
		kind = analyzer.DiagDefaultHelperImport
	case "star":
		kind = analyzer.DiagStarHelperImport
	default:
		return
	}
	w.diagnostics = append(w.diagnostics, analyzer.Diagnostic{
		Kind:     kind,
		Severity: analyzer.SeverityWarning,
		Message:  fmt.Sprintf("GraphQL helper imported as %s binding %q", shape, local),
	})
	w.helperNames[local] = true
}

func (w *walker) handleExport(n *ts.Node) {
	if decl := n.ChildByFieldName("declaration"); decl != nil {
		switch decl.Kind() {
		case "lexical_declaration", "variable_declaration":
			w.handleVariableDeclaration(decl, true)
			w.markTopLevelExported(decl)
		case "function_declaration":
			name := w.handleFunctionDeclaration(decl, true)
			w.exportMap[name] = name
		case "class_declaration":
			name := w.handleClassDeclaration(decl, true)
			w.exportMap[name] = name
		}
		return
	}
	// export { a, b as c } [from "source"]
	sourceNode := n.ChildByFieldName("source")
	var source string
	if sourceNode != nil {
		source = unquote(w.text(sourceNode))
	}
	clause := firstChildOfKind(n, "export_clause")
	if clause == nil {
		return
	}
	count := int(clause.NamedChildCount())
	for i := 0; i < count; i++ {
		spec := clause.NamedChild(uint(i))
		if spec.Kind() != "export_specifier" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		aliasNode := spec.ChildByFieldName("alias")
		local := w.text(nameNode)
		exported := local
		if aliasNode != nil {
			exported = w.text(aliasNode)
		}
		if source != "" {
			w.exports = append(w.exports, analyzer.ModuleExport{Variant: analyzer.ExportReexport, Exported: exported, Local: local, Source: source})
		} else {
			w.exports = append(w.exports, analyzer.ModuleExport{Variant: analyzer.ExportNamed, Exported: exported, Local: local})
			w.exportMap[local] = exported
		}
	}
}

// markTopLevelExported records every declarator bound by an exported
// lexical_declaration in exportMap.
func (w *walker) markTopLevelExported(decl *ts.Node) {
	count := int(decl.NamedChildCount())
	for i := 0; i < count; i++ {
		child := decl.NamedChild(uint(i))
		if child.Kind() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			continue
		}
		name := w.text(nameNode)
		w.exportMap[name] = name
		w.exports = append(w.exports, analyzer.ModuleExport{Variant: analyzer.ExportNamed, Exported: name, Local: name})
	}
}

// handleVariableDeclaration walks each declarator, pushing its name as an
// astPath segment and checking its initializer for a GraphQL helper call
// or an arrow function body worth descending into.
func (w *walker) handleVariableDeclaration(n *ts.Node, isTopLevel bool) {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		decl := n.NamedChild(uint(i))
		if decl.Kind() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		valueNode := decl.ChildByFieldName("value")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			continue
		}
		name := w.text(nameNode)
		pop := w.builder.Push(name)
		w.handleValue(name, valueNode, isTopLevel)
		pop()
	}
}

// handleValue inspects a declarator/property's initializer expression.
func (w *walker) handleValue(boundName string, value *ts.Node, isTopLevel bool) {
	if value == nil {
		return
	}
	switch value.Kind() {
	case "call_expression":
		w.handleCallExpression(boundName, value, isTopLevel)
	case "arrow_function":
		w.descendIntoArrow(value)
	}
}

// handleCallExpression checks whether a call expression is a GraphQL
// helper invocation (`gql.fragment(...)` etc.) and, if so, records a
// definition; otherwise it still descends into any arrow-function
// arguments so nested definitions are found.
func (w *walker) handleCallExpression(boundName string, call *ts.Node, isTopLevel bool) {
	callee := call.ChildByFieldName("function")
	args := call.ChildByFieldName("arguments")

	if callee != nil {
		switch callee.Kind() {
		case "member_expression":
			obj := callee.ChildByFieldName("object")
			prop := callee.ChildByFieldName("property")
			if obj != nil && prop != nil && obj.Kind() == "identifier" && w.helperNames[w.text(obj)] {
				w.recordDefinition(boundName, call, isTopLevel)
				w.checkArguments(args)
				return
			}
		case "identifier":
			// A bare call to a renamed default-imported helper, e.g. `gqlFragment(...)`.
		}
	}

	if callee != nil && callee.Kind() != "identifier" && callee.Kind() != "member_expression" {
		w.diagnostics = append(w.diagnostics, analyzer.Diagnostic{
			Kind:     classifyBadCallee(callee.Kind()),
			Severity: analyzer.SeverityError,
			Message:  "GraphQL helper call has a non-member callee",
			Location: w.loc(callee),
		})
	}

	// Not a recognized helper call: still walk into arrow-function
	// arguments, which may themselves contain nested definitions.
	w.descendIntoCallArguments(args)
}

func classifyBadCallee(kind string) analyzer.DiagnosticKind {
	switch kind {
	case "subscript_expression":
		return analyzer.DiagComputedCallee
	case "optional_chain", "member_expression_optional":
		return analyzer.DiagOptionalChainedCallee
	default:
		return analyzer.DiagNonMemberCallee
	}
}

func (w *walker) checkArguments(args *ts.Node) {
	if args == nil {
		w.diagnostics = append(w.diagnostics, analyzer.Diagnostic{
			Kind:     analyzer.DiagMissingArgument,
			Severity: analyzer.SeverityError,
			Message:  "GraphQL helper call is missing its argument",
		})
		return
	}
	count := int(args.NamedChildCount())
	if count == 0 {
		w.diagnostics = append(w.diagnostics, analyzer.Diagnostic{
			Kind:     analyzer.DiagMissingArgument,
			Severity: analyzer.SeverityError,
			Message:  "GraphQL helper call is missing its argument",
			Location: w.loc(args),
		})
		return
	}
	if count > 1 {
		w.diagnostics = append(w.diagnostics, analyzer.Diagnostic{
			Kind:     analyzer.DiagExtraArguments,
			Severity: analyzer.SeverityWarning,
			Message:  "GraphQL helper call takes extra arguments",
			Location: w.loc(args),
		})
	}
	for i := 0; i < count; i++ {
		arg := args.NamedChild(uint(i))
		if arg.Kind() == "spread_element" {
			w.diagnostics = append(w.diagnostics, analyzer.Diagnostic{
				Kind:     analyzer.DiagSpreadArgument,
				Severity: analyzer.SeverityError,
				Message:  "GraphQL helper call argument is a spread element",
				Location: w.loc(arg),
			})
		}
	}
}

func (w *walker) descendIntoCallArguments(args *ts.Node) {
	if args == nil {
		return
	}
	count := int(args.NamedChildCount())
	for i := 0; i < count; i++ {
		arg := args.NamedChild(uint(i))
		if arg.Kind() == "arrow_function" {
			w.descendIntoArrow(arg)
		}
	}
}

// descendIntoArrow pushes a synthetic arrow#N segment and looks for a
// nested helper call in the arrow's body (expression body or a single
// return statement), matching spec.md's "synthesized anonymous scope
// tokens for unnamed arrow functions".
func (w *walker) descendIntoArrow(fn *ts.Node) {
	pop := w.builder.PushArrow()
	defer pop()

	body := fn.ChildByFieldName("body")
	if body == nil {
		return
	}
	if body.Kind() == "call_expression" {
		w.handleCallExpression(w.builder.Path(), body, false)
		return
	}
	if body.Kind() == "statement_block" {
		count := int(body.NamedChildCount())
		for i := 0; i < count; i++ {
			stmt := body.NamedChild(uint(i))
			if stmt.Kind() == "return_statement" {
				if ret := stmt.NamedChild(0); ret != nil && ret.Kind() == "call_expression" {
					w.handleCallExpression(w.builder.Path(), ret, false)
				}
			}
		}
	}
}

// handleFunctionDeclaration pushes the function's name and returns it; the
// function body is not walked, matching the legacy backend.
func (w *walker) handleFunctionDeclaration(n *ts.Node, isTopLevel bool) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		pop := w.builder.PushAnonymousFunction()
		defer pop()
		return ""
	}
	name := w.text(nameNode)
	pop := w.builder.Push(name)
	defer pop()
	return name
}

// handleClassDeclaration pushes the class's name and walks its members
// for GraphQL helper calls in field initializers (flagged as a warning
// diagnostic rather than a Definition per spec.md §4.1) and methods.
func (w *walker) handleClassDeclaration(n *ts.Node, isTopLevel bool) string {
	nameNode := n.ChildByFieldName("name")
	var name string
	var pop func()
	if nameNode == nil {
		pop = w.builder.PushAnonymousClass()
	} else {
		name = w.text(nameNode)
		pop = w.builder.Push(name)
	}
	defer pop()

	body := n.ChildByFieldName("body")
	if body == nil {
		return name
	}
	count := int(body.NamedChildCount())
	for i := 0; i < count; i++ {
		member := body.NamedChild(uint(i))
		switch member.Kind() {
		case "method_definition":
			w.handleMethod(member)
		case "public_field_definition":
			w.handleClassField(member)
		}
	}
	return name
}

func (w *walker) handleMethod(n *ts.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	pop := w.builder.Push(name)
	defer pop()
	// Method bodies are not currently inspected for nested helper calls;
	// class-bound GraphQL elements are declared via class fields.
}

// handleClassField tracks class-property GraphQL helper calls as a
// diagnostic only — spec.md §4.1: "class-property definitions (warning)",
// "not emitted as definitions".
func (w *walker) handleClassField(n *ts.Node) {
	value := n.ChildByFieldName("value")
	if value == nil || value.Kind() != "call_expression" {
		return
	}
	callee := value.ChildByFieldName("function")
	if callee == nil || callee.Kind() != "member_expression" {
		return
	}
	obj := callee.ChildByFieldName("object")
	if obj == nil || !w.helperNames[w.text(obj)] {
		return
	}
	w.diagnostics = append(w.diagnostics, analyzer.Diagnostic{
		Kind:     analyzer.DiagClassPropertyDefine,
		Severity: analyzer.SeverityWarning,
		Message:  "GraphQL helper invoked in a class property initializer is not tracked as a definition",
		Location: w.loc(n),
	})
}

// recordDefinition appends a ModuleDefinition for the current builder path.
func (w *walker) recordDefinition(boundName string, call *ts.Node, isTopLevel bool) {
	astPath := w.builder.Path()
	w.definitions = append(w.definitions, analyzer.ModuleDefinition{
		AstPath:    astPath,
		IsTopLevel: isTopLevel,
		Expression: w.text(call),
	})
}

// applyExportBindings fills in IsExported/ExportBinding for every top-level
// definition whose root segment matches an exported local name.
func (w *walker) applyExportBindings(analysis *analyzer.ModuleAnalysis) {
	for i := range analysis.Definitions {
		def := &analysis.Definitions[i]
		root := def.AstPath
		if idx := strings.IndexByte(root, '.'); idx >= 0 {
			root = root[:idx]
		}
		if exported, ok := w.exportMap[root]; ok {
			def.IsExported = true
			def.ExportBinding = exported
		}
	}
}

func firstChildOfKind(n *ts.Node, kind string) *ts.Node {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(uint(i))
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

func hasChildOfKind(n *ts.Node, kind string) bool {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(uint(i))
		if c != nil && c.Kind() == kind {
			return true
		}
	}
	return false
}

func lastNamedChild(n *ts.Node) *ts.Node {
	count := n.NamedChildCount()
	if count == 0 {
		return n
	}
	return n.NamedChild(count - 1)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
