package registry

import "strings"

// ParseSubjectRef parses a subject string of the form `:.<ctx>:<subj>`,
// which addresses a non-default context; anything else is a plain subject
// name in the default context "." . Context names are case-sensitive and
// compared byte-for-byte.
func ParseSubjectRef(raw string) SubjectRef {
	if strings.HasPrefix(raw, ":") {
		rest := raw[1:]
		if idx := strings.Index(rest, ":"); idx >= 0 {
			ctx := rest[:idx]
			name := rest[idx+1:]
			if ctx == "" {
				ctx = DefaultContext
			}
			return SubjectRef{Context: ctx, Name: name}
		}
	}
	return SubjectRef{Context: DefaultContext, Name: raw}
}

// String renders the ref back to wire form; the default context renders as
// the bare subject name.
func (r SubjectRef) String() string {
	if r.Context == DefaultContext || r.Context == "" {
		return r.Name
	}
	return ":" + r.Context + ":" + r.Name
}
