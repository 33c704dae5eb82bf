package symbols

import "strings"

const localPrefix = "local "

// Parsed is the decomposition of a symbol id.
type Parsed struct {
	Local      bool
	Scheme     string
	Manager    string
	Package    string
	Descriptor string
}

// Parse splits a symbol id into its components. Local ids yield only the
// descriptor; global ids yield scheme, manager, package, and the remaining
// descriptor (version folded into the descriptor tail).
func Parse(id string) (*Parsed, error) {
	if err := Validate(id); err != nil {
		return nil, err
	}
	if strings.HasPrefix(id, localPrefix) {
		return &Parsed{Local: true, Descriptor: id[len(localPrefix):]}, nil
	}
	parts := strings.SplitN(id, " ", 4)
	return &Parsed{
		Scheme:     parts[0],
		Manager:    parts[1],
		Package:    parts[2],
		Descriptor: parts[3],
	}, nil
}

// Validate checks any symbol id against the grammar.
func Validate(id string) error {
	if id == "" {
		return &FormatError{Reason: "symbol id cannot be empty"}
	}
	if strings.HasPrefix(id, localPrefix) {
		return validateLocalDescriptor(id[len(localPrefix):])
	}
	return validateGlobal(id)
}

// IsLocal reports whether the id uses the file-local form.
func IsLocal(id string) bool {
	return strings.HasPrefix(id, localPrefix)
}

// LocalDescriptor strips the "local " prefix; returns the id unchanged when it
// is not local.
func LocalDescriptor(id string) string {
	if strings.HasPrefix(id, localPrefix) {
		return id[len(localPrefix):]
	}
	return id
}

// SimpleName extracts the bare name from an id's descriptor: the first dotted
// component of a local descriptor, or the last of a global one.
func SimpleName(id string) string {
	if strings.HasPrefix(id, localPrefix) {
		desc := id[len(localPrefix):]
		if i := strings.IndexByte(desc, '.'); i >= 0 {
			return desc[:i]
		}
		return desc
	}
	desc := id
	if i := strings.LastIndexByte(desc, ' '); i >= 0 {
		desc = desc[i+1:]
	}
	desc = strings.TrimSuffix(desc, "().")
	desc = strings.TrimSuffix(desc, "#")
	if i := strings.LastIndexByte(desc, '.'); i >= 0 {
		return desc[i+1:]
	}
	return desc
}
