package protobuf

import (
	"fmt"

	"github.com/platinummonkey/schema-registry/pkg/compatibility"
)

// BuildGraph parses content with the real protobuf compiler front-end and
// converts the result into a compatibility.SchemaGraph.
func BuildGraph(content string) (*compatibility.SchemaGraph, error) {
	ast, err := ParseWithDescriptor("schema.proto", content)
	if err != nil {
		return nil, fmt.Errorf("parse protobuf schema: %w", err)
	}
	builder := compatibility.NewSchemaGraphBuilder()
	return builder.BuildFromAST(ast)
}

// modeForLevel maps a non-transitive registry compatibility level name to
// the compatibility package's CompatibilityMode; the transitive/non
// transitive distinction is handled by the caller choosing how many prior
// versions to pass in, not by this mapping.
func modeForLevel(level string) (compatibility.CompatibilityMode, error) {
	return compatibility.ParseCompatibilityMode(level)
}

// CheckCompatibility builds graphs for the new schema and a single prior
// version and compares them per level. Returns whether compatible and, when
// requested, a human-readable message per violation.
func CheckCompatibility(oldContent, newContent, level string, verbose bool) (*compatibility.CheckResult, error) {
	mode, err := modeForLevel(level)
	if err != nil {
		return nil, err
	}
	oldGraph, err := BuildGraph(oldContent)
	if err != nil {
		return nil, fmt.Errorf("parse prior protobuf schema: %w", err)
	}
	newGraph, err := BuildGraph(newContent)
	if err != nil {
		return nil, fmt.Errorf("parse new protobuf schema: %w", err)
	}
	comparator := compatibility.NewComparator(mode, oldGraph, newGraph)
	result, err := comparator.Compare()
	if err != nil {
		return nil, err
	}
	if !verbose {
		result.Violations = nil
	}
	return result, nil
}
