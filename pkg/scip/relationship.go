package scip

// Relationship is a directed, typed edge between two symbols. An edge
// source -> target is stored on the target symbol's relationship list, with
// Symbol naming the source and boolean flags carrying the category.
type Relationship struct {
	Symbol           string `json:"symbol"`
	IsReference      bool   `json:"is_reference,omitempty"`
	IsImplementation bool   `json:"is_implementation,omitempty"`
	IsTypeDefinition bool   `json:"is_type_definition,omitempty"`
	IsDefinition     bool   `json:"is_definition,omitempty"`
}
