package jsonschema

import "fmt"

// Direction mirrors pkg/registry/avro.Direction.
type Direction int

const (
	Backward Direction = iota
	Forward
)

// CheckCompatibility checks compatibility for one (old, new) pair in one direction.
func CheckCompatibility(oldSchema, newSchema *Schema, dir Direction) []string {
	return compareObjects(oldSchema, newSchema, dir, "$")
}

func compareObjects(oldS, newS *Schema, dir Direction, path string) []string {
	if oldS == nil || newS == nil {
		return nil
	}
	var violations []string

	oldReq := oldS.requiredSet()
	newReq := newS.requiredSet()

	for name, newProp := range newS.Properties {
		oldProp, existed := oldS.Properties[name]
		if !existed {
			// Property added.
			if newReq[name] {
				violations = append(violations, fmt.Sprintf("%s.%s: added to required (breaking)", path, name))
			}
			continue
		}
		violations = append(violations, compareObjects(oldProp, newProp, dir, path+"."+name)...)
		if !oldReq[name] && newReq[name] {
			violations = append(violations, fmt.Sprintf("%s.%s: moved into required (breaking)", path, name))
		}
	}
	for name := range oldS.Properties {
		if _, ok := newS.Properties[name]; !ok && oldReq[name] {
			violations = append(violations, fmt.Sprintf("%s.%s: required property removed (breaking)", path, name))
		}
	}

	violations = append(violations, compareType(oldS, newS, path)...)
	violations = append(violations, compareBounds(oldS, newS, dir, path)...)

	if oldS.Items != nil || newS.Items != nil {
		violations = append(violations, compareObjects(oldS.Items, newS.Items, dir, path+"[]")...)
	}
	return violations
}

func compareType(oldS, newS *Schema, path string) []string {
	if oldS.Type == nil || newS.Type == nil {
		return nil
	}
	if fmt.Sprint(oldS.Type) != fmt.Sprint(newS.Type) {
		return []string{fmt.Sprintf("%s: type narrowed/changed from %v to %v (breaking)", path, oldS.Type, newS.Type)}
	}
	return nil
}

// compareBounds flags a tightened minimum/maximum as breaking only in the
// forward direction: an old reader expecting the wider original range may
// reject values a new writer emits under the narrower one.
func compareBounds(oldS, newS *Schema, dir Direction, path string) []string {
	var violations []string
	if dir != Forward {
		return violations
	}
	if newS.Minimum != nil && (oldS.Minimum == nil || *newS.Minimum > *oldS.Minimum) {
		violations = append(violations, fmt.Sprintf("%s: minimum tightened (breaking under FORWARD)", path))
	}
	if newS.Maximum != nil && (oldS.Maximum == nil || *newS.Maximum < *oldS.Maximum) {
		violations = append(violations, fmt.Sprintf("%s: maximum tightened (breaking under FORWARD)", path))
	}
	return violations
}
