package remote

import (
	"fmt"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// document is a parsed GraphQL operation with its declared variables.
type document struct {
	name     string
	kind     ast.Operation
	query    string
	declared map[string]bool // variable name -> required
}

// mustParse parses a single-operation document. Documents are package
// constants, so a parse failure is a programming error.
func mustParse(name, query string) *document {
	doc, err := parser.ParseQuery(&ast.Source{Name: name, Input: query})
	if err != nil {
		panic(fmt.Sprintf("graphql document %s: %v", name, err))
	}
	if len(doc.Operations) != 1 {
		panic(fmt.Sprintf("graphql document %s: want 1 operation, got %d", name, len(doc.Operations)))
	}
	op := doc.Operations[0]
	if op.Name != name {
		panic(fmt.Sprintf("graphql document %s: operation named %q", name, op.Name))
	}
	d := &document{
		name:     name,
		kind:     op.Operation,
		query:    query,
		declared: make(map[string]bool, len(op.VariableDefinitions)),
	}
	for _, v := range op.VariableDefinitions {
		d.declared[v.Variable] = v.Type != nil && v.Type.NonNull && v.DefaultValue == nil
	}
	return d
}

// check verifies vars against the operation's variable definitions.
func (d *document) check(vars map[string]any) error {
	for k := range vars {
		if _, ok := d.declared[k]; !ok {
			return fmt.Errorf("%s: undeclared variable $%s", d.name, k)
		}
	}
	var missing []string
	for k, required := range d.declared {
		if required && vars[k] == nil {
			missing = append(missing, "$"+k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%s: missing required variables %v", d.name, missing)
	}
	return nil
}
