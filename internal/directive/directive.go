// Package directive parses apidesc directives from Go source files.
//
// Directives are line comments in the form:
//
//	//api:handler path=/users schema=User
//	//api:schema id=frapi:user
//	//api:read description="Read a user" stability=EVOLVING locales=en,fr
//	//api:error code=404 description="No such user" id=frapi:notfound
//	//api:param name=fields type=string
//
// handler marks a type as a resource handler served under path; schema=
// names a struct type in the same package that describes the resource.
// schema marks a struct type with a shared schema ID. The operation
// directives (create, read, update, delete, patch, action, query) go on
// methods of a handler type; error and param directives that follow an
// operation directive in the same comment attach to it.
//
// Attributes are key=value pairs. Values may be double-quoted Go strings.
// List attributes take comma-separated values or repeat the key.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/apidesc/annotation"
)

const prefix = "//api:"

// Kind represents the type of directive.
type Kind string

const (
	KindHandler Kind = "handler"
	KindSchema  Kind = "schema"
	KindCreate  Kind = "create"
	KindRead    Kind = "read"
	KindUpdate  Kind = "update"
	KindDelete  Kind = "delete"
	KindPatch   Kind = "patch"
	KindAction  Kind = "action"
	KindQuery   Kind = "query"
	KindError   Kind = "error"
	KindParam   Kind = "param"
)

func (k Kind) isOperation() bool {
	switch k {
	case KindCreate, KindRead, KindUpdate, KindDelete, KindPatch, KindAction, KindQuery:
		return true
	}
	return false
}

// Directive is one parsed directive comment.
type Directive struct {
	Kind  Kind
	Attrs map[string][]string
	Pos   token.Position
}

// Handler is a handler type found in the package.
type Handler struct {
	// TypeName is the Go type name.
	TypeName string

	// Path is the resource path from the handler directive.
	Path string

	// Spec is the handler's annotation table.
	Spec annotation.Handler

	// Pos is the location of the handler directive.
	Pos token.Position
}

// Result contains all handlers found in a package.
type Result struct {
	// Handlers in source order.
	Handlers []Handler

	// PackagePath is the import path of the parsed package.
	PackagePath string

	// Dir is the directory containing the package.
	Dir string
}

// Parse scans a Go package for apidesc directives.
//
// The pattern follows go command semantics:
//   - "." for current directory
//   - Import path like "github.com/foo/bar"
//   - Absolute or relative directory path
//
// Returns an error if:
//   - The package cannot be loaded
//   - A directive is unknown or malformed
//   - A directive is not attached to a type or method declaration
//   - An operation directive is on a method of a type without a handler directive
func Parse(pattern string) (*Result, error) {
	return ParseDir(pattern, "")
}

// ParseDir is like Parse but allows specifying a working directory.
// If dir is empty, the current directory is used.
func ParseDir(pattern, dir string) (*Result, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
		Dir: dir,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load package: %w", err)
	}

	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %q", pattern)
	}

	if len(pkgs) > 1 {
		return nil, fmt.Errorf("multiple packages found matching %q; specify a single package", pattern)
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("package errors: %v", pkg.Errors[0])
	}

	result := &Result{
		PackagePath: pkg.PkgPath,
	}

	if len(pkg.GoFiles) > 0 {
		result.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	p := &parser{
		pkg:      pkg,
		handlers: make(map[string]*handlerDecl),
		schemaID: make(map[string]string),
		conv:     newConverter(),
	}
	for _, f := range pkg.Syntax {
		if err := p.file(f); err != nil {
			return nil, err
		}
	}
	if err := p.orphanMethods(); err != nil {
		return nil, err
	}

	for _, name := range p.order {
		h, err := p.build(p.handlers[name])
		if err != nil {
			return nil, err
		}
		result.Handlers = append(result.Handlers, h)
	}
	return result, nil
}

type handlerDecl struct {
	typeName  string
	directive Directive
}

type methodDecl struct {
	recv       string
	name       string
	directives []Directive
}

type parser struct {
	pkg      *packages.Package
	handlers map[string]*handlerDecl
	order    []string
	schemaID map[string]string
	methods  []methodDecl
	conv     *converter
}

// file collects the directives of one file and checks that each is attached
// to a declaration.
func (p *parser) file(f *ast.File) error {
	attached := make(map[*ast.Comment]bool)

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(d.Specs) == 1 {
					doc = d.Doc
				}
				directives, err := p.directives(doc, attached)
				if err != nil {
					return err
				}
				if err := p.typeDirectives(ts.Name.Name, directives); err != nil {
					return err
				}
			}

		case *ast.FuncDecl:
			directives, err := p.directives(d.Doc, attached)
			if err != nil {
				return err
			}
			if len(directives) == 0 {
				continue
			}
			recv := receiverName(d)
			if recv == "" {
				return fmt.Errorf("%s: %s%s must be on a method of a handler type, not a function",
					directives[0].Pos, prefix, directives[0].Kind)
			}
			for _, dir := range directives {
				if !dir.Kind.isOperation() && dir.Kind != KindError && dir.Kind != KindParam {
					return fmt.Errorf("%s: %s%s must be on a type declaration", dir.Pos, prefix, dir.Kind)
				}
			}
			p.methods = append(p.methods, methodDecl{recv: recv, name: d.Name.Name, directives: directives})
		}
	}

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if strings.HasPrefix(c.Text, prefix) && !attached[c] {
				return fmt.Errorf("%s: %s directive must be followed by a type or method declaration",
					p.pkg.Fset.Position(c.Pos()), strings.Fields(c.Text)[0])
			}
		}
	}
	return nil
}

// directives parses the directive lines of a doc comment.
func (p *parser) directives(doc *ast.CommentGroup, attached map[*ast.Comment]bool) ([]Directive, error) {
	if doc == nil {
		return nil, nil
	}
	var out []Directive
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, prefix) {
			continue
		}
		attached[c] = true

		pos := p.pkg.Fset.Position(c.Pos())
		text := strings.TrimPrefix(c.Text, prefix)
		kind, rest, _ := strings.Cut(text, " ")
		switch Kind(kind) {
		case KindHandler, KindSchema, KindCreate, KindRead, KindUpdate, KindDelete,
			KindPatch, KindAction, KindQuery, KindError, KindParam:
		default:
			return nil, fmt.Errorf("%s: unknown directive %s%s", pos, prefix, kind)
		}
		attrs, err := parseAttrs(rest)
		if err != nil {
			return nil, fmt.Errorf("%s: %s%s: %w", pos, prefix, kind, err)
		}
		out = append(out, Directive{Kind: Kind(kind), Attrs: attrs, Pos: pos})
	}
	return out, nil
}

func (p *parser) typeDirectives(typeName string, directives []Directive) error {
	for _, d := range directives {
		switch d.Kind {
		case KindHandler:
			if _, dup := p.handlers[typeName]; dup {
				return fmt.Errorf("%s: duplicate %shandler on %s", d.Pos, prefix, typeName)
			}
			p.handlers[typeName] = &handlerDecl{typeName: typeName, directive: d}
			p.order = append(p.order, typeName)
		case KindSchema:
			var attrs schemaAttrs
			if err := decode(&attrs, d); err != nil {
				return err
			}
			p.schemaID[typeName] = attrs.ID
		default:
			return fmt.Errorf("%s: %s%s must be on a method, not a type", d.Pos, prefix, d.Kind)
		}
	}
	return nil
}

func (p *parser) orphanMethods() error {
	for _, m := range p.methods {
		if _, ok := p.handlers[m.recv]; !ok {
			return fmt.Errorf("%s: method %s.%s has operation directives but %s has no %shandler directive",
				m.directives[0].Pos, m.recv, m.name, m.recv, prefix)
		}
	}
	return nil
}

// receiverName returns the receiver type name of a method, or "" for
// functions.
func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	expr := fn.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.IndexExpr:
		if id, ok := e.X.(*ast.Ident); ok {
			return id.Name
		}
	case *ast.IndexListExpr:
		if id, ok := e.X.(*ast.Ident); ok {
			return id.Name
		}
	}
	return ""
}
