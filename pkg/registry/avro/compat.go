package avro

import "fmt"

// Direction is BACKWARD (new reader reads old-writer data) or FORWARD (old
// reader reads new-writer data); FULL is both, decomposed by the caller.
type Direction int

const (
	Backward Direction = iota
	Forward
)

// promotionEdges[a] lists types a writer value of type a may be read as by a
// reader expecting one of the listed types (the Avro promotion lattice:
// int->long->float->double, string<->bytes).
var promotionEdges = map[string][]string{
	"int":    {"long", "float", "double"},
	"long":   {"float", "double"},
	"float":  {"double"},
	"string": {"bytes"},
	"bytes":  {"string"},
}

func promotable(from, to string) bool {
	if from == to {
		return true
	}
	for _, t := range promotionEdges[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CheckCompatibility compares one (old, new) schema pair in one direction,
// returning violation messages; empty means compatible.
func CheckCompatibility(oldSchema, newSchema *Schema, dir Direction) []string {
	return compareSchemas(oldSchema, newSchema, dir, oldSchema.FullName())
}

func compareSchemas(oldS, newS *Schema, dir Direction, path string) []string {
	if oldS == nil || newS == nil {
		return nil
	}
	if oldS.Kind == "union" || newS.Kind == "union" {
		return compareUnions(oldS, newS, dir, path)
	}
	if oldS.Kind != newS.Kind {
		if isPrimitive(oldS.Kind) && isPrimitive(newS.Kind) {
			return comparePrimitives(oldS.Kind, newS.Kind, dir, path)
		}
		return []string{fmt.Sprintf("%s: type changed from %q to %q", path, oldS.Kind, newS.Kind)}
	}
	switch oldS.Kind {
	case "record", "error":
		return compareRecords(oldS, newS, dir, path)
	case "enum":
		return compareEnums(oldS, newS, dir, path)
	case "array":
		return compareSchemas(oldS.Items, newS.Items, dir, path+"[]")
	case "map":
		return compareSchemas(oldS.Values, newS.Values, dir, path+"{}")
	default:
		if isPrimitive(oldS.Kind) {
			return comparePrimitives(oldS.Kind, newS.Kind, dir, path)
		}
		return nil
	}
}

func isPrimitive(kind string) bool {
	switch kind {
	case "null", "boolean", "int", "long", "float", "double", "bytes", "string":
		return true
	}
	return false
}

func comparePrimitives(oldKind, newKind string, dir Direction, path string) []string {
	if oldKind == newKind {
		return nil
	}
	var ok bool
	switch dir {
	case Backward:
		// new reader (newKind) must accept data written as oldKind.
		ok = promotable(oldKind, newKind)
	case Forward:
		// old reader (oldKind) must accept data written as newKind.
		ok = promotable(newKind, oldKind)
	}
	if ok {
		return nil
	}
	return []string{fmt.Sprintf("%s: incompatible type change from %q to %q", path, oldKind, newKind)}
}

func compareRecords(oldS, newS *Schema, dir Direction, path string) []string {
	if oldS.FullName() != newS.FullName() {
		return []string{fmt.Sprintf("%s: record name changed from %q to %q", path, oldS.FullName(), newS.FullName())}
	}
	var violations []string
	oldFields := fieldsByName(oldS)
	newFields := fieldsByName(newS)

	for name, nf := range newFields {
		if of, ok := oldFields[name]; ok {
			violations = append(violations, compareSchemas(of.Type, nf.Type, dir, path+"."+name)...)
			continue
		}
		// Field added.
		switch dir {
		case Backward:
			if !nf.HasDefault {
				violations = append(violations, fmt.Sprintf("%s.%s: field added without a default (breaking under BACKWARD)", path, name))
			}
		case Forward:
			// Old reader's schema doesn't know this field; it's ignored.
		}
	}
	for name, of := range oldFields {
		if _, ok := newFields[name]; ok {
			continue
		}
		// Field removed.
		switch dir {
		case Forward:
			if !of.HasDefault {
				violations = append(violations, fmt.Sprintf("%s.%s: field removed without a default on the reader's schema (breaking under FORWARD)", path, name))
			}
		case Backward:
			// New reader's schema doesn't ask for this field; absence is tolerated.
		}
	}
	return violations
}

func fieldsByName(s *Schema) map[string]Field {
	m := make(map[string]Field, len(s.Fields))
	for _, f := range s.Fields {
		m[f.Name] = f
	}
	return m
}

func compareEnums(oldS, newS *Schema, dir Direction, path string) []string {
	if oldS.FullName() != newS.FullName() {
		return []string{fmt.Sprintf("%s: enum name changed from %q to %q", path, oldS.FullName(), newS.FullName())}
	}
	oldSet := toSet(oldS.Symbols)
	newSet := toSet(newS.Symbols)
	var violations []string
	for sym := range oldSet {
		if !newSet[sym] {
			// Symbol removed.
			if dir == Backward {
				violations = append(violations, fmt.Sprintf("%s: enum symbol %q removed (breaking under BACKWARD)", path, sym))
			}
		}
	}
	for sym := range newSet {
		if !oldSet[sym] {
			// Symbol added: a reader on the old schema can still resolve
			// it through the enum's declared default symbol, so this is
			// only breaking under FORWARD when no default exists.
			if dir == Forward && !newS.HasEnumDefault {
				violations = append(violations, fmt.Sprintf("%s: enum symbol %q added (breaking under FORWARD unless a default symbol exists)", path, sym))
			}
		}
	}
	return violations
}

func toSet(vals []string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

func compareUnions(oldS, newS *Schema, dir Direction, path string) []string {
	oldBranches := oldS.Union
	if oldS.Kind != "union" {
		oldBranches = []*Schema{oldS}
	}
	newBranches := newS.Union
	if newS.Kind != "union" {
		newBranches = []*Schema{newS}
	}
	oldKinds := branchKinds(oldBranches)
	newKinds := branchKinds(newBranches)

	var violations []string
	switch dir {
	case Backward:
		// New reader must still recognize every branch the old writer could emit.
		for k := range oldKinds {
			if !newKinds[k] {
				violations = append(violations, fmt.Sprintf("%s: union narrowed, removed branch %q (breaking under BACKWARD)", path, k))
			}
		}
	case Forward:
		// Old reader must recognize every branch the new writer could emit.
		for k := range newKinds {
			if !oldKinds[k] {
				violations = append(violations, fmt.Sprintf("%s: union widened, added branch %q (breaking under FORWARD)", path, k))
			}
		}
	}
	return violations
}

func branchKinds(branches []*Schema) map[string]bool {
	m := make(map[string]bool, len(branches))
	for _, b := range branches {
		m[b.Kind] = true
	}
	return m
}
