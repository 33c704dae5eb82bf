package extractor

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log"
	"path"
	"strings"

	"github.com/dshills/scipdex/internal/symbols"
	"github.com/dshills/scipdex/pkg/scip"
)

// GoExtractor extracts symbols and occurrences from Go sources via AST
// parsing.
type GoExtractor struct {
	module    string
	generator *symbols.Generator
}

// NewGoExtractor creates an extractor for one Go module. module is the module
// path from go.mod; version may be empty.
func NewGoExtractor(module, version string) (*GoExtractor, error) {
	if module == "" {
		module = "main"
	}
	gen, err := symbols.NewGenerator("scip-go", "gomod", module, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create symbol generator: %w", err)
	}
	return &GoExtractor{module: module, generator: gen}, nil
}

// Language returns "go".
func (e *GoExtractor) Language() string { return "go" }

// SupportedExtensions returns the Go source extension.
func (e *GoExtractor) SupportedExtensions() []string { return []string{".go"} }

// CanHandle reports whether path is a Go source file.
func (e *GoExtractor) CanHandle(p string) bool {
	return hasExtension(p, e.SupportedExtensions())
}

// CreateDocument parses one Go file into a document. Syntax errors are
// non-fatal: the partial AST still yields whatever symbols it contains.
func (e *GoExtractor) CreateDocument(relativePath string, content []byte) (*scip.Document, error) {
	doc := &scip.Document{
		RelativePath: relativePath,
		Language:     e.Language(),
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, relativePath, content, parser.ParseComments)
	if file == nil {
		return nil, fmt.Errorf("failed to parse %s: %w", relativePath, err)
	}
	if err != nil {
		log.Printf("extractor: partial parse of %s: %v", relativePath, err)
	}

	v := &goVisitor{
		ex:       e,
		fset:     fset,
		doc:      doc,
		testFile: strings.HasSuffix(relativePath, "_test.go"),
	}

	for _, imp := range file.Imports {
		v.addImport(imp)
	}
	ast.Inspect(file, v.visit)

	return doc, nil
}

// ExternalSymbols lists every distinct imported package across the document
// set. Recomputed in full on every build.
func (e *GoExtractor) ExternalSymbols(docs []*scip.Document) []*scip.SymbolInformation {
	seen := make(map[string]bool)
	var out []*scip.SymbolInformation
	for _, doc := range docs {
		for _, occ := range doc.Occurrences {
			if occ.Roles&scip.RoleImport == 0 || seen[occ.Symbol] {
				continue
			}
			seen[occ.Symbol] = true
			importPath := globalDescriptor(occ.Symbol)
			out = append(out, &scip.SymbolInformation{
				Symbol:        occ.Symbol,
				DisplayName:   path.Base(importPath),
				Kind:          scip.KindModule,
				Documentation: []string{"Imported package: " + importPath},
			})
		}
	}
	return out
}

// BuildCrossDocumentRelationships declines: the generic linker handles Go
// using FileImports and QualifiedSymbol.
func (e *GoExtractor) BuildCrossDocumentRelationships(docs []*scip.Document, index *scip.Index) (int, bool) {
	return 0, false
}

// FileImports derives the import map from the document's import occurrences.
// The locally visible name is the import path's last segment; aliased imports
// resolve under their base name, a known limitation.
func (e *GoExtractor) FileImports(doc *scip.Document) map[string]string {
	imports := make(map[string]string)
	for _, occ := range doc.Occurrences {
		if occ.Roles&scip.RoleImport == 0 {
			continue
		}
		importPath := globalDescriptor(occ.Symbol)
		if importPath == "" {
			continue
		}
		imports[path.Base(importPath)] = occ.Symbol
	}
	return imports
}

// QualifiedSymbol returns the package-qualified alias for a file-local
// definition: "<prefix> <package-import-path>.<descriptor>".
func (e *GoExtractor) QualifiedSymbol(doc *scip.Document, sym *scip.SymbolInformation) (string, bool) {
	if !symbols.IsLocal(sym.Symbol) {
		return "", false
	}
	pkgPath := e.module
	if dir := path.Dir(doc.RelativePath); dir != "." && dir != "/" {
		pkgPath = e.module + "/" + dir
	}
	return e.generator.Prefix() + " " + pkgPath + "." + symbols.LocalDescriptor(sym.Symbol), true
}

// globalDescriptor returns the descriptor tail of a global symbol id.
func globalDescriptor(id string) string {
	if i := strings.LastIndexByte(id, ' '); i >= 0 {
		return id[i+1:]
	}
	return ""
}

// goVisitor walks one file's AST accumulating symbols and occurrences.
type goVisitor struct {
	ex       *GoExtractor
	fset     *token.FileSet
	doc      *scip.Document
	testFile bool
}

func (v *goVisitor) visit(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.FuncDecl:
		v.addFunction(n)
	case *ast.GenDecl:
		v.addGenDecl(n)
	case *ast.CallExpr:
		v.addCallReference(n)
	}
	return true
}

func (v *goVisitor) addImport(imp *ast.ImportSpec) {
	importPath := strings.Trim(imp.Path.Value, `"`)
	id, err := v.ex.generator.Global(symbols.Descriptor{Name: importPath})
	if err != nil {
		log.Printf("extractor: skipping import %s: %v", importPath, err)
		return
	}
	v.doc.Occurrences = append(v.doc.Occurrences, &scip.Occurrence{
		Symbol: id,
		Range:  v.rangeOf(imp.Path.Pos(), imp.Path.End()),
		Roles:  scip.RoleImport,
	})
}

func (v *goVisitor) addFunction(fn *ast.FuncDecl) {
	desc := symbols.Descriptor{Name: fn.Name.Name, Suffix: "()."}
	kind := scip.KindFunction
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		if recv := receiverType(fn.Recv.List[0].Type); recv != "" {
			desc.ScopePath = []string{recv}
		}
		kind = scip.KindMethod
	}
	v.addDefinition(desc, kind, fn.Doc, fn.Name.Pos(), fn.Name.End())
}

func (v *goVisitor) addGenDecl(decl *ast.GenDecl) {
	for _, spec := range decl.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			kind := scip.KindType
			switch s.Type.(type) {
			case *ast.StructType:
				kind = scip.KindStruct
			case *ast.InterfaceType:
				kind = scip.KindInterface
			}
			doc := s.Doc
			if doc == nil {
				doc = decl.Doc
			}
			v.addDefinition(symbols.Descriptor{Name: s.Name.Name, Suffix: "#"}, kind, doc, s.Name.Pos(), s.Name.End())
		case *ast.ValueSpec:
			kind := scip.KindVar
			if decl.Tok == token.CONST {
				kind = scip.KindConst
			}
			for _, name := range s.Names {
				if name.Name == "_" {
					continue
				}
				v.addDefinition(symbols.Descriptor{Name: name.Name}, kind, decl.Doc, name.Pos(), name.End())
			}
		}
	}
}

// addDefinition records the SymbolInformation and its definition occurrence.
// A symbol id grammar violation skips only the one symbol.
func (v *goVisitor) addDefinition(desc symbols.Descriptor, kind scip.SymbolKind, doc *ast.CommentGroup, pos, end token.Pos) {
	id, err := v.ex.generator.Local(desc)
	if err != nil {
		log.Printf("extractor: skipping symbol %s: %v", desc.Name, err)
		return
	}

	info := &scip.SymbolInformation{
		Symbol:      id,
		DisplayName: desc.Name,
		Kind:        kind,
	}
	if doc != nil {
		if text := strings.TrimSpace(doc.Text()); text != "" {
			info.Documentation = []string{text}
		}
	}
	v.doc.Symbols = append(v.doc.Symbols, info)

	roles := scip.RoleDefinition
	if v.testFile {
		roles |= scip.RoleTest
	}
	v.doc.Occurrences = append(v.doc.Occurrences, &scip.Occurrence{
		Symbol: id,
		Range:  v.rangeOf(pos, end),
		Roles:  roles,
	})
}

// addCallReference records a read reference for direct and selector calls.
func (v *goVisitor) addCallReference(call *ast.CallExpr) {
	var desc symbols.Descriptor
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		desc = symbols.Descriptor{Name: fun.Name, Suffix: "()."}
	case *ast.SelectorExpr:
		x, ok := fun.X.(*ast.Ident)
		if !ok {
			return
		}
		desc = symbols.Descriptor{Name: fun.Sel.Name, ScopePath: []string{x.Name}, Suffix: "()."}
	default:
		return
	}

	id, err := v.ex.generator.Local(desc)
	if err != nil {
		return
	}
	roles := scip.RoleRead
	if v.testFile {
		roles |= scip.RoleTest
	}
	v.doc.Occurrences = append(v.doc.Occurrences, &scip.Occurrence{
		Symbol: id,
		Range:  v.rangeOf(call.Fun.Pos(), call.Fun.End()),
		Roles:  roles,
	})
}

func (v *goVisitor) rangeOf(pos, end token.Pos) scip.Range {
	start := v.fset.Position(pos)
	stop := v.fset.Position(end)
	return scip.Range{
		StartLine:   start.Line - 1,
		StartColumn: start.Column - 1,
		EndLine:     stop.Line - 1,
		EndColumn:   stop.Column - 1,
	}
}

func receiverType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverType(t.X)
	case *ast.IndexExpr:
		return receiverType(t.X)
	case *ast.IndexListExpr:
		return receiverType(t.X)
	}
	return ""
}
