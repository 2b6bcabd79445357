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

// Package legacy implements the secondary AstAnalyzer backend on top of
// github.com/smacker/go-tree-sitter — a different Go tree-sitter binding
// from the primary backend's github.com/tree-sitter/go-tree-sitter, kept
// around as the conformance partner spec.md §4.1 requires: two
// independent implementations that must still agree on every astPath.
package legacy

import (
	"context"
	"fmt"
	"strings"

	"sodagql.dev/builder/internal/analyzer"
	"sodagql.dev/builder/internal/analyzer/astnaming"
	"sodagql.dev/builder/internal/fingerprint"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// BackendType is the Analyzer.Type() identifier for this backend.
const BackendType = "treesitter-legacy"

// Analyzer implements analyzer.Analyzer using smacker/go-tree-sitter.
type Analyzer struct {
	HelperNames []string
}

func New() *Analyzer {
	return &Analyzer{HelperNames: []string{"gql"}}
}

func (a *Analyzer) Type() string { return BackendType }

func (a *Analyzer) Analyze(in analyzer.Input) (analyzer.ModuleAnalysis, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, in.Source)
	if err != nil {
		return analyzer.ModuleAnalysis{}, fmt.Errorf("legacy: failed to parse %s: %w", in.FilePath, err)
	}

	names := a.HelperNames
	if len(names) == 0 {
		names = []string{"gql"}
	}
	w := &walker{
		src:         in.Source,
		builder:     astnaming.NewBuilder(),
		helperNames: toSet(names),
		exportMap:   map[string]string{},
	}
	w.walkProgram(tree.RootNode())

	out := analyzer.ModuleAnalysis{
		FilePath:    in.FilePath,
		Signature:   fingerprint.Signature(in.Source),
		Definitions: w.definitions,
		Imports:     w.imports,
		Exports:     w.exports,
		Diagnostics: w.diagnostics,
	}
	w.applyExportBindings(&out)
	return out, nil
}

func toSet(names []string) map[string]bool {
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
	exportMap   map[string]string
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.src)
}

func (w *walker) loc(n *sitter.Node) analyzer.Location {
	p := n.StartPoint()
	return analyzer.Location{
		Start:  int(n.StartByte()),
		End:    int(n.EndByte()),
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
	}
}

func (w *walker) walkProgram(root *sitter.Node) {
	n := int(root.NamedChildCount())
	for i := 0; i < n; i++ {
		w.walkTopLevel(root.NamedChild(i))
	}
}

func (w *walker) walkTopLevel(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "import_statement":
		w.handleImport(n)
	case "export_statement":
		w.handleExport(n)
	case "lexical_declaration", "variable_declaration":
		w.handleVariableDeclaration(n, true)
	case "function_declaration":
		w.handleFunctionDeclaration(n)
	case "class_declaration":
		w.handleClassDeclaration(n)
	}
}

// handleFunctionDeclaration pushes the function's name so any nested
// definitions would be namespaced under it; matches the primary backend,
// which likewise does not currently descend into function bodies.
func (w *walker) handleFunctionDeclaration(n *sitter.Node) string {
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

func (w *walker) handleImport(n *sitter.Node) {
	sourceNode := n.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	source := unquote(w.text(sourceNode))
	isTypeOnly := hasChildType(n, "type")

	clause := firstChildOfType(n, "import_clause")
	if clause == nil {
		return
	}
	count := int(clause.NamedChildCount())
	for i := 0; i < count; i++ {
		part := clause.NamedChild(i)
		switch part.Type() {
		case "identifier":
			local := w.text(part)
			w.imports = append(w.imports, analyzer.ModuleImport{Source: source, Local: local, Kind: analyzer.ImportDefault, IsTypeOnly: isTypeOnly})
			w.flagShape(local, source, "default")
		case "namespace_import":
			local := w.text(lastNamedChild(part))
			w.imports = append(w.imports, analyzer.ModuleImport{Source: source, Local: local, Kind: analyzer.ImportNamespace, IsTypeOnly: isTypeOnly})
			w.flagShape(local, source, "star")
		case "named_imports":
			w.handleNamedImports(part, source, isTypeOnly)
		}
	}
}

func (w *walker) handleNamedImports(n *sitter.Node, source string, isTypeOnly bool) {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		spec := n.NamedChild(i)
		if spec.Type() != "import_specifier" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		aliasNode := spec.ChildByFieldName("alias")
		imported := w.text(nameNode)
		local := imported
		renamed := aliasNode != nil
		if renamed {
			local = w.text(aliasNode)
		}
		w.imports = append(w.imports, analyzer.ModuleImport{Source: source, Local: local, Kind: analyzer.ImportNamed, IsTypeOnly: isTypeOnly})
		if imported == "gql" && renamed {
			w.flagShape(local, source, "renamed")
		}
	}
}

// helperSource is the module specifier the GraphQL helper is imported
// from; only imports from it are flagged, as in the primary backend.
const helperSource = "@sodagql/runtime"

func (w *walker) flagShape(local, source, shape string) {
	if source != helperSource {
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

func (w *walker) handleExport(n *sitter.Node) {
	if decl := n.ChildByFieldName("declaration"); decl != nil {
		switch decl.Type() {
		case "lexical_declaration", "variable_declaration":
			w.handleVariableDeclaration(decl, true)
			w.markTopLevelExported(decl)
		case "function_declaration":
			if name := w.text(decl.ChildByFieldName("name")); name != "" {
				w.exportMap[name] = name
			}
		case "class_declaration":
			name := w.handleClassDeclaration(decl)
			w.exportMap[name] = name
		}
		return
	}
	sourceNode := n.ChildByFieldName("source")
	var source string
	if sourceNode != nil {
		source = unquote(w.text(sourceNode))
	}
	clause := firstChildOfType(n, "export_clause")
	if clause == nil {
		return
	}
	count := int(clause.NamedChildCount())
	for i := 0; i < count; i++ {
		spec := clause.NamedChild(i)
		if spec.Type() != "export_specifier" {
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

func (w *walker) markTopLevelExported(decl *sitter.Node) {
	count := int(decl.NamedChildCount())
	for i := 0; i < count; i++ {
		child := decl.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil || nameNode.Type() != "identifier" {
			continue
		}
		name := w.text(nameNode)
		w.exportMap[name] = name
		w.exports = append(w.exports, analyzer.ModuleExport{Variant: analyzer.ExportNamed, Exported: name, Local: name})
	}
}

func (w *walker) handleVariableDeclaration(n *sitter.Node, isTopLevel bool) {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		decl := n.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		valueNode := decl.ChildByFieldName("value")
		if nameNode == nil || nameNode.Type() != "identifier" {
			continue
		}
		name := w.text(nameNode)
		pop := w.builder.Push(name)
		w.handleValue(valueNode, isTopLevel)
		pop()
	}
}

func (w *walker) handleValue(value *sitter.Node, isTopLevel bool) {
	if value == nil {
		return
	}
	switch value.Type() {
	case "call_expression":
		w.handleCallExpression(value, isTopLevel)
	case "arrow_function":
		w.descendIntoArrow(value)
	}
}

func (w *walker) handleCallExpression(call *sitter.Node, isTopLevel bool) {
	callee := call.ChildByFieldName("function")
	args := call.ChildByFieldName("arguments")

	if callee != nil && callee.Type() == "member_expression" {
		obj := callee.ChildByFieldName("object")
		prop := callee.ChildByFieldName("property")
		if obj != nil && prop != nil && obj.Type() == "identifier" && w.helperNames[w.text(obj)] {
			w.recordDefinition(call, isTopLevel)
			w.checkArguments(args)
			return
		}
	}

	if callee != nil && callee.Type() != "identifier" && callee.Type() != "member_expression" {
		w.diagnostics = append(w.diagnostics, analyzer.Diagnostic{
			Kind:     classifyBadCallee(callee.Type()),
			Severity: analyzer.SeverityError,
			Message:  "GraphQL helper call has a non-member callee",
			Location: w.loc(callee),
		})
	}

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

func (w *walker) checkArguments(args *sitter.Node) {
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
		arg := args.NamedChild(i)
		if arg.Type() == "spread_element" {
			w.diagnostics = append(w.diagnostics, analyzer.Diagnostic{
				Kind:     analyzer.DiagSpreadArgument,
				Severity: analyzer.SeverityError,
				Message:  "GraphQL helper call argument is a spread element",
				Location: w.loc(arg),
			})
		}
	}
}

func (w *walker) descendIntoCallArguments(args *sitter.Node) {
	if args == nil {
		return
	}
	count := int(args.NamedChildCount())
	for i := 0; i < count; i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "arrow_function" {
			w.descendIntoArrow(arg)
		}
	}
}

func (w *walker) descendIntoArrow(fn *sitter.Node) {
	pop := w.builder.PushArrow()
	defer pop()

	body := fn.ChildByFieldName("body")
	if body == nil {
		return
	}
	if body.Type() == "call_expression" {
		w.handleCallExpression(body, false)
		return
	}
	if body.Type() == "statement_block" {
		count := int(body.NamedChildCount())
		for i := 0; i < count; i++ {
			stmt := body.NamedChild(i)
			if stmt.Type() == "return_statement" {
				if ret := stmt.NamedChild(0); ret != nil && ret.Type() == "call_expression" {
					w.handleCallExpression(ret, false)
				}
			}
		}
	}
}

func (w *walker) handleClassDeclaration(n *sitter.Node) string {
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
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_definition":
			w.handleMethod(member)
		case "public_field_definition":
			w.handleClassField(member)
		}
	}
	return name
}

// handleMethod pushes the method's name; bodies are not inspected for
// nested helper calls, matching the primary backend.
func (w *walker) handleMethod(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	pop := w.builder.Push(name)
	defer pop()
}

func (w *walker) handleClassField(n *sitter.Node) {
	value := n.ChildByFieldName("value")
	if value == nil || value.Type() != "call_expression" {
		return
	}
	callee := value.ChildByFieldName("function")
	if callee == nil || callee.Type() != "member_expression" {
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

func (w *walker) recordDefinition(call *sitter.Node, isTopLevel bool) {
	astPath := w.builder.Path()
	w.definitions = append(w.definitions, analyzer.ModuleDefinition{
		AstPath:    astPath,
		IsTopLevel: isTopLevel,
		Expression: w.text(call),
	})
}

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

func firstChildOfType(n *sitter.Node, t string) *sitter.Node {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c.Type() == t {
			return c
		}
	}
	return nil
}

func hasChildType(n *sitter.Node, t string) bool {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if c != nil && c.Type() == t {
			return true
		}
	}
	return false
}

func lastNamedChild(n *sitter.Node) *sitter.Node {
	count := int(n.NamedChildCount())
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
