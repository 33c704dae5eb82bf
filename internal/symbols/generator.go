package symbols

import (
	"fmt"
	"regexp"
	"strings"
)

// FormatError reports a symbol id grammar violation. It fails only the symbol
// being generated or parsed.
type FormatError struct {
	ID     string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid symbol %q: %s", e.ID, e.Reason)
}

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9\-_]*$`)

// Descriptor names a symbol within its scope chain.
type Descriptor struct {
	Name      string
	ScopePath []string
	Suffix    string // "().", "#", "" etc.
}

// String renders the descriptor as "<scope>.<name><suffix>".
func (d Descriptor) String() string {
	if len(d.ScopePath) == 0 {
		return d.Name + d.Suffix
	}
	return strings.Join(d.ScopePath, ".") + "." + d.Name + d.Suffix
}

// Generator produces symbol ids for one (scheme, package) universe.
type Generator struct {
	scheme  string
	manager string
	pkg     string
	version string
}

// NewGenerator validates the id components once so every generated symbol
// inherits a well-formed prefix. Version may be empty for local projects and
// defaults to "HEAD".
func NewGenerator(scheme, manager, pkg, version string) (*Generator, error) {
	if scheme == "" {
		return nil, &FormatError{Reason: "scheme cannot be empty"}
	}
	if !schemePattern.MatchString(scheme) {
		return nil, &FormatError{ID: scheme, Reason: "scheme must match [A-Za-z][A-Za-z0-9-_]*"}
	}
	if manager == "" {
		return nil, &FormatError{Reason: "package manager cannot be empty"}
	}
	if pkg == "" {
		return nil, &FormatError{Reason: "package name cannot be empty"}
	}
	if version == "" {
		version = "HEAD"
	}
	for _, component := range []string{manager, pkg, version} {
		if strings.Contains(component, " ") {
			return nil, &FormatError{ID: component, Reason: "component cannot contain spaces"}
		}
	}
	return &Generator{scheme: scheme, manager: manager, pkg: pkg, version: version}, nil
}

// Local generates a file-local symbol id: "local <descriptor>".
func (g *Generator) Local(d Descriptor) (string, error) {
	desc := d.String()
	if err := validateLocalDescriptor(desc); err != nil {
		return "", err
	}
	return "local " + desc, nil
}

// Global generates a package-qualified symbol id:
// "<scheme> <manager> <package> <version> <descriptor>".
func (g *Generator) Global(d Descriptor) (string, error) {
	desc := d.String()
	if err := validateLocalDescriptor(desc); err != nil {
		return "", err
	}
	id := fmt.Sprintf("%s %s %s %s %s", g.scheme, g.manager, g.pkg, g.version, desc)
	if err := validateGlobal(id); err != nil {
		return "", err
	}
	return id, nil
}

// Scheme returns the generator's scheme component.
func (g *Generator) Scheme() string { return g.scheme }

// Prefix returns the global id prefix "<scheme> <manager> <package> <version>".
func (g *Generator) Prefix() string {
	return fmt.Sprintf("%s %s %s %s", g.scheme, g.manager, g.pkg, g.version)
}

func validateLocalDescriptor(desc string) error {
	if desc == "" {
		return &FormatError{Reason: "descriptor cannot be empty"}
	}
	if strings.TrimSpace(desc) != desc {
		return &FormatError{ID: desc, Reason: "descriptor has leading or trailing whitespace"}
	}
	return nil
}

func validateGlobal(id string) error {
	parts := strings.Split(id, " ")
	if len(parts) < 4 {
		return &FormatError{ID: id, Reason: "global symbol requires at least 4 components"}
	}
	if !schemePattern.MatchString(parts[0]) {
		return &FormatError{ID: id, Reason: "invalid scheme component"}
	}
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return &FormatError{ID: id, Reason: "global symbol has an empty component"}
		}
	}
	return nil
}
