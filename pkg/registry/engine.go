package registry

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/schema-registry/pkg/dependencies"
	"github.com/platinummonkey/schema-registry/pkg/observability"
	"github.com/platinummonkey/schema-registry/pkg/registry/avro"
	"github.com/platinummonkey/schema-registry/pkg/registry/fingerprint"
	"github.com/platinummonkey/schema-registry/pkg/registry/jsonschema"
	"github.com/platinummonkey/schema-registry/pkg/registry/protobuf"
	"github.com/platinummonkey/schema-registry/pkg/storage"
	"github.com/platinummonkey/schema-registry/pkg/validation"
)

// subjectKey is the map key for the per-context subject namespace.
type subjectKey struct {
	Context string
	Name    string
}

// Engine is the schema registry core: the global schema table, the
// context/subject namespace, the config/mode store, and the ID allocator.
// It owns all mutable state directly, guarded by a single reader-writer
// lock — the simplest implementation conforming to the single-writer,
// atomic-per-operation contract (a per-subject lock plus a separate ID
// lock would allow more concurrency, at the cost of a second lock
// ordering to reason about; this registry trades that concurrency for a
// smaller, more obviously-correct critical section). Grounded on the
// axonops memory store's CreateSchema/GetSchemaByID/DeleteSubject/
// ImportSchema method set, generalized to a single global ID space
// instead of axonops' per-context counter.
type Engine struct {
	mu sync.RWMutex

	nextID     int
	byID       map[int]*SchemaRecord
	byFingerprint map[string]*SchemaRecord

	subjects map[subjectKey]*Subject

	config *configModeStore

	// refGraph indexes which (subject, version) nodes reference which,
	// so ReferencedBy and impact analysis don't need a linear scan of
	// byID. Keyed by SubjectRef.String(), which already carries context.
	refGraph *dependencies.Graph

	// logger records every register/delete/config/mode mutation at info.
	// Nil by default (e.g. in tests); SetLogger wires a real one in.
	logger *observability.Logger
}

// NewEngine constructs an empty Engine. The ID allocator begins at 1, per
// the memory backend's restart behavior.
func NewEngine() *Engine {
	return &Engine{
		nextID:        1,
		byID:          make(map[int]*SchemaRecord),
		byFingerprint: make(map[string]*SchemaRecord),
		subjects:      make(map[subjectKey]*Subject),
		config:        newConfigModeStore(),
		refGraph:      dependencies.NewGraph(),
	}
}

// SetLogger wires a logger into the engine for mutation audit logging.
// Passing nil silences mutation logging again.
func (e *Engine) SetLogger(logger *observability.Logger) {
	e.logger = logger
}

// logMutation records a successful register/delete/config/mode mutation at
// info. A no-op when no logger has been wired in.
func (e *Engine) logMutation(action string, fields map[string]interface{}) {
	if e.logger == nil {
		return
	}
	e.logger.WithFields(fields).Info(action)
}

// RegisterResult is the outcome of Register.
type RegisterResult struct {
	ID      int
	Version int
}

// parsedSchema is the result of parsing and canonicalizing a schema body,
// type-erased behind the fields compatibility checking and reference
// resolution need.
type parsedSchema struct {
	schemaType SchemaType
	canonical  string
}

func parseSchema(schemaType SchemaType, text string) (*parsedSchema, error) {
	switch schemaType {
	case SchemaTypeAvro:
		if _, err := avro.Parse(text); err != nil {
			return nil, NewError(ErrInvalidSchema, err.Error())
		}
	case SchemaTypeJSON:
		if _, err := jsonschema.Parse(text); err != nil {
			return nil, NewError(ErrInvalidSchema, err.Error())
		}
	case SchemaTypeProtobuf:
		ast, err := protobuf.ParseWithDescriptor("schema.proto", text)
		if err != nil {
			return nil, NewError(ErrInvalidSchema, err.Error())
		}
		if result := validation.NewValidator(validation.DefaultValidationConfig()).Validate(ast); !result.Valid {
			return nil, NewError(ErrInvalidSchema, result.Errors[0].Message)
		}
	default:
		return nil, NewError(ErrInvalidSchema, fmt.Sprintf("unknown schema type %q", schemaType))
	}
	canonical, err := fingerprint.Canonicalize(string(schemaType), text)
	if err != nil {
		return nil, NewError(ErrInvalidSchema, err.Error())
	}
	return &parsedSchema{schemaType: schemaType, canonical: canonical}, nil
}

// resolveReferences resolves every reference to a live,
// non-deleted version in the same context as the enclosing subject.
func (e *Engine) resolveReferences(ctxName string, refs []SchemaReference) ([]fingerprint.RefFingerprint, error) {
	out := make([]fingerprint.RefFingerprint, 0, len(refs))
	for _, ref := range refs {
		subj, ok := e.subjects[subjectKey{ctxName, ref.Subject}]
		if !ok {
			return nil, NewError(ErrInvalidSchema, fmt.Sprintf("unresolved reference %q: subject %q not found", ref.Name, ref.Subject))
		}
		entry, ok := subj.FindVersion(ref.Version)
		if !ok || entry.Deleted {
			return nil, NewError(ErrInvalidSchema, fmt.Sprintf("unresolved reference %q: version %d of subject %q not found", ref.Name, ref.Version, ref.Subject))
		}
		rec := e.byID[entry.SchemaID]
		out = append(out, fingerprint.RefFingerprint{Name: ref.Name, Fingerprint: rec.Fingerprint})
	}
	return out, nil
}

// checkAgainst runs the compatibility check of newText against one prior
// version's oldText, dispatched by schema type. Callers loop over the prior
// versions (oldest to newest; only the latest for non-transitive levels).
func checkAgainst(schemaType SchemaType, oldText, newText string, level CompatibilityLevel) ([]string, error) {
	base := level.base()
	if base == CompatibilityNone {
		return nil, nil
	}
	var directions []avro.Direction
	switch base {
	case CompatibilityBackward:
		directions = []avro.Direction{avro.Backward}
	case CompatibilityForward:
		directions = []avro.Direction{avro.Forward}
	case CompatibilityFull:
		directions = []avro.Direction{avro.Backward, avro.Forward}
	}

	var violations []string
	switch schemaType {
	case SchemaTypeAvro:
		oldSchema, err := avro.Parse(oldText)
		if err != nil {
			return nil, err
		}
		newSchema, err := avro.Parse(newText)
		if err != nil {
			return nil, err
		}
		for _, d := range directions {
			violations = append(violations, avro.CheckCompatibility(oldSchema, newSchema, d)...)
		}
	case SchemaTypeJSON:
		oldSchema, err := jsonschema.Parse(oldText)
		if err != nil {
			return nil, err
		}
		newSchema, err := jsonschema.Parse(newText)
		if err != nil {
			return nil, err
		}
		for _, d := range directions {
			dir := jsonschema.Backward
			if d == avro.Forward {
				dir = jsonschema.Forward
			}
			violations = append(violations, jsonschema.CheckCompatibility(oldSchema, newSchema, dir)...)
		}
	case SchemaTypeProtobuf:
		levelName := string(base)
		if base == CompatibilityFull {
			// protobuf.CheckCompatibility takes one level name; decompose FULL.
			for _, name := range []string{"BACKWARD", "FORWARD"} {
				result, err := protobuf.CheckCompatibility(oldText, newText, name, true)
				if err != nil {
					return nil, err
				}
				for _, v := range result.Violations {
					violations = append(violations, fmt.Sprint(v))
				}
			}
		} else {
			result, err := protobuf.CheckCompatibility(oldText, newText, levelName, true)
			if err != nil {
				return nil, err
			}
			for _, v := range result.Violations {
				violations = append(violations, fmt.Sprint(v))
			}
		}
	}
	return violations, nil
}

// Register registers a schema under a subject.
func (e *Engine) Register(ref SubjectRef, schemaType SchemaType, text string, refs []SchemaReference, explicitID *int) (*RegisterResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mode := e.config.ResolveMode(ref.Context, ref.Name)
	if mode != ModeReadWrite && mode != ModeImport {
		return nil, NewError(ErrOperationNotPermitted, fmt.Sprintf("subject %q is in %s mode", ref.String(), mode))
	}
	if explicitID != nil && mode != ModeImport {
		return nil, NewError(ErrOperationNotPermitted, "explicit id is only permitted in IMPORT mode")
	}

	parsed, err := parseSchema(schemaType, text)
	if err != nil {
		return nil, err
	}
	refFPs, err := e.resolveReferences(ref.Context, refs)
	if err != nil {
		return nil, err
	}
	fp := fingerprint.Fingerprint(string(schemaType), parsed.canonical, refFPs)

	rec, exists := e.byFingerprint[fp]

	if mode == ModeImport && explicitID != nil {
		if exists && rec.ID != *explicitID {
			return nil, NewError(ErrOperationNotPermitted, fmt.Sprintf("fingerprint already registered under id %d, cannot reuse at %d", rec.ID, *explicitID))
		}
		if existingAtID, ok := e.byID[*explicitID]; ok {
			if existingAtID.Fingerprint != fp {
				return nil, NewError(ErrOperationNotPermitted, fmt.Sprintf("id %d already registered with different content", *explicitID))
			}
			rec = existingAtID
			exists = true
		} else {
			rec = e.newRecord(*explicitID, schemaType, parsed.canonical, text, fp, refs)
			exists = true
			if *explicitID+1 > e.nextID {
				e.nextID = *explicitID + 1
			}
		}
	}

	if !exists {
		rec = e.newRecord(e.allocateID(), schemaType, parsed.canonical, text, fp, refs)
	}

	subj := e.getOrCreateSubject(ref)

	for _, v := range subj.Versions {
		if !v.Deleted && v.SchemaID == rec.ID {
			return &RegisterResult{ID: rec.ID, Version: v.VersionNumber}, nil
		}
	}

	level := e.config.ResolveCompatibility(ref.Context, ref.Name)
	prior := priorVersionTexts(e, subj, level.Transitive())
	for _, priorText := range prior {
		violations, err := checkAgainst(schemaType, priorText, parsed.canonical, level)
		if err != nil {
			return nil, err
		}
		if len(violations) > 0 {
			return nil, NewError(ErrIncompatibleSchema, violations[0])
		}
	}

	versionNumber := subj.MaxVersionNumber() + 1
	subj.Versions = append(subj.Versions, VersionEntry{VersionNumber: versionNumber, SchemaID: rec.ID})
	e.indexReferences(ref, versionNumber, refs)

	e.logMutation("schema registered", map[string]interface{}{
		"subject": ref.String(), "id": rec.ID, "version": versionNumber,
	})
	return &RegisterResult{ID: rec.ID, Version: versionNumber}, nil
}

// indexReferences records, in refGraph, which (subject, version) nodes the
// newly registered version points at. Call with mu held.
func (e *Engine) indexReferences(ref SubjectRef, version int, refs []SchemaReference) {
	node := dependencies.Ref{Subject: ref.String(), Version: version}
	depRefs := make([]dependencies.Ref, 0, len(refs))
	for _, r := range refs {
		target := SubjectRef{Context: ref.Context, Name: r.Subject}
		depRefs = append(depRefs, dependencies.Ref{Subject: target.String(), Version: r.Version})
	}
	e.refGraph.SetReferences(node, depRefs)
}

func (e *Engine) allocateID() int {
	id := e.nextID
	e.nextID++
	return id
}

func (e *Engine) newRecord(id int, schemaType SchemaType, canonical, raw, fp string, refs []SchemaReference) *SchemaRecord {
	rec := &SchemaRecord{
		ID:            id,
		SchemaType:    schemaType,
		CanonicalText: canonical,
		RawText:       raw,
		Fingerprint:   fp,
		References:    refs,
	}
	e.byID[id] = rec
	e.byFingerprint[fp] = rec
	return rec
}

func (e *Engine) getOrCreateSubject(ref SubjectRef) *Subject {
	key := subjectKey{ref.Context, ref.Name}
	subj, ok := e.subjects[key]
	if !ok {
		subj = &Subject{Context: ref.Context, Name: ref.Name}
		e.subjects[key] = subj
	}
	subj.Deleted = false
	return subj
}

// priorVersionTexts returns canonical texts of prior non-deleted versions,
// oldest first; transitive=false keeps only the latest.
func priorVersionTexts(e *Engine, subj *Subject, transitive bool) []string {
	active := subj.ActiveVersions()
	if len(active) == 0 {
		return nil
	}
	if !transitive {
		latest := active[len(active)-1]
		return []string{e.byID[latest.SchemaID].CanonicalText}
	}
	out := make([]string, 0, len(active))
	for _, v := range active {
		out = append(out, e.byID[v.SchemaID].CanonicalText)
	}
	return out
}

// LookupResult is the outcome of Lookup.
type LookupResult struct {
	Subject string
	ID      int
	Version int
	Record  *SchemaRecord
}

// Lookup is a read-only exact-match search
// by fingerprint among a subject's visible versions.
func (e *Engine) Lookup(ref SubjectRef, schemaType SchemaType, text string, refs []SchemaReference, includeDeleted bool) (*LookupResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	subj, ok := e.subjects[subjectKey{ref.Context, ref.Name}]
	if !ok || (subj.Deleted && !includeDeleted) {
		return nil, NewError(ErrSubjectNotFound, fmt.Sprintf("subject %q not found", ref.String()))
	}

	parsed, err := parseSchema(schemaType, text)
	if err != nil {
		return nil, err
	}
	refFPs, err := e.resolveReferences(ref.Context, refs)
	if err != nil {
		return nil, err
	}
	fp := fingerprint.Fingerprint(string(schemaType), parsed.canonical, refFPs)

	for _, v := range subj.Versions {
		if v.Deleted && !includeDeleted {
			continue
		}
		rec := e.byID[v.SchemaID]
		if rec.Fingerprint == fp {
			return &LookupResult{Subject: ref.Name, ID: rec.ID, Version: v.VersionNumber, Record: rec}, nil
		}
	}
	return nil, NewError(ErrSchemaNotFound, fmt.Sprintf("schema not found in subject %q", ref.String()))
}

// GetVersion resolves a version selector. selector is either a
// positive version number or "latest".
func (e *Engine) GetVersion(ref SubjectRef, selector string) (*Subject, *VersionEntry, *SchemaRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	subj, ok := e.subjects[subjectKey{ref.Context, ref.Name}]
	if !ok || subj.Deleted {
		return nil, nil, nil, NewError(ErrSubjectNotFound, fmt.Sprintf("subject %q not found", ref.String()))
	}

	var entry *VersionEntry
	if selector == "latest" {
		entry = subj.LatestActive()
		if entry == nil {
			return nil, nil, nil, NewError(ErrVersionNotFound, "no active version")
		}
	} else {
		n, err := parsePositiveInt(selector)
		if err != nil {
			return nil, nil, nil, NewError(ErrInvalidVersion, fmt.Sprintf("invalid version %q", selector))
		}
		found, ok := subj.FindVersion(n)
		if !ok || found.Deleted {
			return nil, nil, nil, NewError(ErrVersionNotFound, fmt.Sprintf("version %d not found", n))
		}
		entry = found
	}
	return subj, entry, e.byID[entry.SchemaID], nil
}

func parsePositiveInt(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("version must be positive")
	}
	// reject trailing garbage like "1x"
	if fmt.Sprintf("%d", n) != s {
		return 0, fmt.Errorf("invalid version")
	}
	return n, nil
}

// GetByID fetches a schema record by its global id.
func (e *Engine) GetByID(id int) (*SchemaRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.byID[id]
	if !ok {
		return nil, NewError(ErrSchemaNotFound, fmt.Sprintf("schema %d not found", id))
	}
	return rec, nil
}

// SubjectAndVersion names one version within one subject.
type SubjectAndVersion struct {
	Subject string
	Version int
}

// SubjectsForID lists the subjects a schema id appears under.
func (e *Engine) SubjectsForID(ctxName string, id int, includeDeleted bool) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	set := make(map[string]struct{})
	for key, subj := range e.subjects {
		if key.Context != ctxName {
			continue
		}
		for _, v := range subj.Versions {
			if v.Deleted && !includeDeleted {
				continue
			}
			if v.SchemaID == id {
				set[subj.Name] = struct{}{}
				break
			}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// VersionsForID lists the subject/version pairs a schema id appears under.
func (e *Engine) VersionsForID(ctxName string, id int, includeDeleted bool) []SubjectAndVersion {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []SubjectAndVersion
	for key, subj := range e.subjects {
		if key.Context != ctxName {
			continue
		}
		for _, v := range subj.Versions {
			if v.Deleted && !includeDeleted {
				continue
			}
			if v.SchemaID == id {
				out = append(out, SubjectAndVersion{Subject: subj.Name, Version: v.VersionNumber})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// ReferencedBy returns the ids of every
// schema whose references resolve to this (subject, version).
func (e *Engine) ReferencedBy(ref SubjectRef, version int) ([]int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	subj, ok := e.subjects[subjectKey{ref.Context, ref.Name}]
	if !ok {
		return nil, NewError(ErrSubjectNotFound, fmt.Sprintf("subject %q not found", ref.String()))
	}
	if _, ok := subj.FindVersion(version); !ok {
		return nil, NewError(ErrVersionNotFound, fmt.Sprintf("version %d not found", version))
	}

	dependents := e.refGraph.Dependents(dependencies.Ref{Subject: ref.String(), Version: version})
	idSet := make(map[int]struct{})
	for _, dep := range dependents {
		depCtx, depName := splitSubjectRefString(dep.Subject)
		if depSubj, ok := e.subjects[subjectKey{depCtx, depName}]; ok {
			if entry, ok := depSubj.FindVersion(dep.Version); ok {
				idSet[entry.SchemaID] = struct{}{}
			}
		}
	}
	out := make([]int, 0, len(idSet))
	for id := range idSet {
		out = append(out, id)
	}
	sort.Ints(out)
	return out, nil
}

// splitSubjectRefString recovers the (context, name) a SubjectRef.String()
// was built from, the inverse of SubjectRef.String.
func splitSubjectRefString(s string) (ctx string, name string) {
	parsed := ParseSubjectRef(s)
	return parsed.Context, parsed.Name
}

// DeleteVersion soft- or hard-deletes a single version.
func (e *Engine) DeleteVersion(ref SubjectRef, version int, permanent bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	subj, ok := e.subjects[subjectKey{ref.Context, ref.Name}]
	if !ok {
		return NewError(ErrSubjectNotFound, fmt.Sprintf("subject %q not found", ref.String()))
	}
	idx := -1
	for i := range subj.Versions {
		if subj.Versions[i].VersionNumber == version {
			idx = i
			break
		}
	}
	if idx == -1 {
		return NewError(ErrVersionNotFound, fmt.Sprintf("version %d not found", version))
	}

	if permanent {
		if !subj.Versions[idx].Deleted {
			return NewError(ErrVersionNotSoftDeleted, fmt.Sprintf("version %d is not soft-deleted", version))
		}
		subj.Versions = append(subj.Versions[:idx], subj.Versions[idx+1:]...)
		if len(subj.Versions) == 0 {
			delete(e.subjects, subjectKey{ref.Context, ref.Name})
		}
		e.logMutation("version permanently deleted", map[string]interface{}{"subject": ref.String(), "version": version})
		return nil
	}
	subj.Versions[idx].Deleted = true
	e.logMutation("version soft-deleted", map[string]interface{}{"subject": ref.String(), "version": version})
	return nil
}

// DeleteSubject soft- or hard-deletes every version of a subject.
func (e *Engine) DeleteSubject(ref SubjectRef, permanent bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := subjectKey{ref.Context, ref.Name}
	subj, ok := e.subjects[key]
	if !ok {
		return NewError(ErrSubjectNotFound, fmt.Sprintf("subject %q not found", ref.String()))
	}

	if permanent {
		if !subj.Deleted {
			return NewError(ErrSubjectNotSoftDeleted, fmt.Sprintf("subject %q is not soft-deleted", ref.String()))
		}
		delete(e.subjects, key)
		e.logMutation("subject permanently deleted", map[string]interface{}{"subject": ref.String()})
		return nil
	}
	subj.Deleted = true
	for i := range subj.Versions {
		subj.Versions[i].Deleted = true
	}
	e.logMutation("subject soft-deleted", map[string]interface{}{"subject": ref.String()})
	return nil
}

// ListSubjects lists subject names in a context.
func (e *Engine) ListSubjects(ctxName string, includeDeleted bool) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []string
	for key, subj := range e.subjects {
		if key.Context != ctxName {
			continue
		}
		if subj.Deleted && !includeDeleted {
			continue
		}
		out = append(out, subj.Name)
	}
	sort.Strings(out)
	return out
}

// ListVersions lists the version numbers registered under a subject.
func (e *Engine) ListVersions(ref SubjectRef, includeDeleted bool) ([]int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	subj, ok := e.subjects[subjectKey{ref.Context, ref.Name}]
	if !ok {
		return nil, NewError(ErrSubjectNotFound, fmt.Sprintf("subject %q not found", ref.String()))
	}
	var out []int
	for _, v := range subj.Versions {
		if v.Deleted && !includeDeleted {
			continue
		}
		out = append(out, v.VersionNumber)
	}
	sort.Ints(out)
	return out, nil
}

// ListContexts implements the `/contexts` listing: the default context plus
// every context that owns a subject, config, or mode entry, sorted.
func (e *Engine) ListContexts() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	set := map[string]struct{}{DefaultContext: {}}
	for key := range e.subjects {
		set[key.Context] = struct{}{}
	}
	for name := range e.config.contextNames() {
		set[name] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Stats reports the size of the registry's two headline gauges: the number
// of distinct schemas held, and the number of subjects not currently
// soft-deleted.
func (e *Engine) Stats() (schemas int, activeSubjects int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, subj := range e.subjects {
		if !subj.Deleted {
			activeSubjects++
		}
	}
	return len(e.byID), activeSubjects
}

// Snapshot exports the full engine state for persistence by a
// storage.SnapshotStore.
func (e *Engine) Snapshot() *storage.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	schemas := make([]storage.SnapshotSchema, 0, len(e.byID))
	for _, rec := range e.byID {
		refs := make([]storage.SnapshotSchemaRef, 0, len(rec.References))
		for _, r := range rec.References {
			refs = append(refs, storage.SnapshotSchemaRef{Name: r.Name, Subject: r.Subject, Version: r.Version})
		}
		schemas = append(schemas, storage.SnapshotSchema{
			ID:            rec.ID,
			SchemaType:    string(rec.SchemaType),
			CanonicalText: rec.CanonicalText,
			RawText:       rec.RawText,
			Fingerprint:   rec.Fingerprint,
			References:    refs,
		})
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].ID < schemas[j].ID })

	subjects := make([]storage.SnapshotSubject, 0, len(e.subjects))
	for key, subj := range e.subjects {
		versions := make([]storage.SnapshotVersionEntry, 0, len(subj.Versions))
		for _, v := range subj.Versions {
			versions = append(versions, storage.SnapshotVersionEntry{
				VersionNumber: v.VersionNumber,
				SchemaID:      v.SchemaID,
				Deleted:       v.Deleted,
			})
		}
		subjects = append(subjects, storage.SnapshotSubject{
			Context:  key.Context,
			Name:     key.Name,
			Deleted:  subj.Deleted,
			Versions: versions,
		})
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].Context != subjects[j].Context {
			return subjects[i].Context < subjects[j].Context
		}
		return subjects[i].Name < subjects[j].Name
	})

	configEntries, modeEntries := e.config.exportAll()
	config := make([]storage.SnapshotScopeLvl, 0, len(configEntries))
	for _, c := range configEntries {
		config = append(config, storage.SnapshotScopeLvl{Context: c.Context, Subject: c.Subject, Level: string(c.Level)})
	}
	modes := make([]storage.SnapshotScopeMode, 0, len(modeEntries))
	for _, m := range modeEntries {
		modes = append(modes, storage.SnapshotScopeMode{Context: m.Context, Subject: m.Subject, Mode: string(m.Mode)})
	}

	return &storage.Snapshot{
		NextID:   e.nextID,
		Schemas:  schemas,
		Subjects: subjects,
		Config:   config,
		Mode:     modes,
	}
}

// NewEngineFromSnapshot rebuilds an Engine from a previously saved
// snapshot, reindexing the fingerprint table, and the reference graph for
// every version not soft-deleted, without re-running compatibility checks (a
// restored snapshot is assumed to already be internally consistent).
func NewEngineFromSnapshot(snap *storage.Snapshot) *Engine {
	e := NewEngine()
	if snap == nil {
		return e
	}

	e.nextID = snap.NextID
	for _, s := range snap.Schemas {
		refs := make([]SchemaReference, 0, len(s.References))
		for _, r := range s.References {
			refs = append(refs, SchemaReference{Name: r.Name, Subject: r.Subject, Version: r.Version})
		}
		rec := &SchemaRecord{
			ID:            s.ID,
			SchemaType:    SchemaType(s.SchemaType),
			CanonicalText: s.CanonicalText,
			RawText:       s.RawText,
			Fingerprint:   s.Fingerprint,
			References:    refs,
		}
		e.byID[rec.ID] = rec
		e.byFingerprint[rec.Fingerprint] = rec
	}

	for _, s := range snap.Subjects {
		versions := make([]VersionEntry, 0, len(s.Versions))
		for _, v := range s.Versions {
			versions = append(versions, VersionEntry{VersionNumber: v.VersionNumber, SchemaID: v.SchemaID, Deleted: v.Deleted})
		}
		subj := &Subject{Context: s.Context, Name: s.Name, Deleted: s.Deleted, Versions: versions}
		e.subjects[subjectKey{s.Context, s.Name}] = subj

		ref := SubjectRef{Context: s.Context, Name: s.Name}
		for _, v := range versions {
			if v.Deleted {
				continue
			}
			if rec, ok := e.byID[v.SchemaID]; ok {
				e.indexReferences(ref, v.VersionNumber, rec.References)
			}
		}
	}

	configEntries := make([]scopeLevelEntry, 0, len(snap.Config))
	for _, c := range snap.Config {
		configEntries = append(configEntries, scopeLevelEntry{Context: c.Context, Subject: c.Subject, Level: CompatibilityLevel(c.Level)})
	}
	modeEntries := make([]scopeModeEntry, 0, len(snap.Mode))
	for _, m := range snap.Mode {
		modeEntries = append(modeEntries, scopeModeEntry{Context: m.Context, Subject: m.Subject, Mode: Mode(m.Mode)})
	}
	e.config.restoreAll(configEntries, modeEntries)

	return e
}

// CheckCompatibility evaluates a candidate schema against its subject, without
// mutating state. versionSelector is "" or "versions" for the all-versions
// form, else a specific version number or "latest".
func (e *Engine) CheckCompatibility(ref SubjectRef, versionSelector string, schemaType SchemaType, text string, refs []SchemaReference, verbose bool) (*CompatibilityCheckResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allVersions := versionSelector == "" || versionSelector == "versions"

	subj, ok := e.subjects[subjectKey{ref.Context, ref.Name}]
	if !ok {
		if allVersions {
			return &CompatibilityCheckResult{IsCompatible: true}, nil
		}
		return nil, NewError(ErrSubjectNotFound, fmt.Sprintf("subject %q not found", ref.String()))
	}

	level := e.config.ResolveCompatibility(ref.Context, ref.Name)

	var priors []string
	if allVersions {
		priors = priorVersionTexts(e, subj, level.Transitive())
	} else {
		var entry *VersionEntry
		if versionSelector == "latest" {
			entry = subj.LatestActive()
			if entry == nil {
				return nil, NewError(ErrVersionNotFound, "no active version")
			}
		} else {
			n, err := parsePositiveInt(versionSelector)
			if err != nil {
				return nil, NewError(ErrInvalidVersion, fmt.Sprintf("invalid version %q", versionSelector))
			}
			found, ok := subj.FindVersion(n)
			if !ok || found.Deleted {
				return nil, NewError(ErrVersionNotFound, fmt.Sprintf("version %d not found", n))
			}
			entry = found
		}
		priors = []string{e.byID[entry.SchemaID].CanonicalText}
	}

	parsed, err := parseSchema(schemaType, text)
	if err != nil {
		return nil, err
	}

	var messages []string
	for _, priorText := range priors {
		violations, err := checkAgainst(schemaType, priorText, parsed.canonical, level)
		if err != nil {
			return nil, err
		}
		messages = append(messages, violations...)
	}
	result := &CompatibilityCheckResult{IsCompatible: len(messages) == 0}
	if verbose {
		result.Messages = messages
	}
	return result, nil
}

// ImportItem is one entry of an ImportBulk request.
type ImportItem struct {
	ID         int
	Ref        SubjectRef
	SchemaType SchemaType
	Text       string
	References []SchemaReference
}

// ImportItemResult is the per-item outcome of ImportBulk.
type ImportItemResult struct {
	ID      int
	Version int
	Error   *Error
}

// ImportSummary is ImportBulk's aggregate result.
type ImportSummary struct {
	Imported int
	Errors   int
	Items    []ImportItemResult
}

// ImportBulk applies a batch of pre-assigned (id, subject, schema) triples
// in IMPORT mode: each item is processed
// independently against IMPORT-mode registration semantics, in request
// order so resulting ids are deterministic.
func (e *Engine) ImportBulk(items []ImportItem) (*ImportSummary, error) {
	parseErrs := make([]error, len(items))
	var g errgroup.Group
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			_, err := parseSchema(item.SchemaType, item.Text)
			parseErrs[i] = err
			return nil
		})
	}
	g.Wait() // each goroutine only ever returns nil; errors are collected per-item

	summary := &ImportSummary{Items: make([]ImportItemResult, len(items))}
	for i, item := range items {
		if parseErrs[i] != nil {
			regErr, ok := AsRegistryError(parseErrs[i])
			if !ok {
				regErr = NewError(ErrInternal, parseErrs[i].Error())
			}
			summary.Items[i] = ImportItemResult{Error: regErr}
			summary.Errors++
			continue
		}
		mode := e.config.ResolveMode(item.Ref.Context, item.Ref.Name)
		if mode != ModeImport {
			summary.Items[i] = ImportItemResult{Error: NewError(ErrOperationNotPermitted, fmt.Sprintf("subject %q is not in IMPORT mode", item.Ref.String()))}
			summary.Errors++
			continue
		}
		id := item.ID
		res, err := e.Register(item.Ref, item.SchemaType, item.Text, item.References, &id)
		if err != nil {
			regErr, _ := AsRegistryError(err)
			if regErr == nil {
				regErr = NewError(ErrInternal, err.Error())
			}
			summary.Items[i] = ImportItemResult{Error: regErr}
			summary.Errors++
			continue
		}
		summary.Items[i] = ImportItemResult{ID: res.ID, Version: res.Version}
		summary.Imported++
	}
	return summary, nil
}

// ResolveCompatibility exposes the config store's fallback resolution for
// the HTTP layer's GET /config endpoints.
func (e *Engine) ResolveCompatibility(ctxName, subject string) CompatibilityLevel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config.ResolveCompatibility(ctxName, subject)
}

// ExplicitCompatibility exposes the config store's exact-entry lookup.
func (e *Engine) ExplicitCompatibility(ctxName, subject string) (CompatibilityLevel, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config.ExplicitCompatibility(ctxName, subject)
}

// SetCompatibility sets a compatibility override at (ctxName, subject).
func (e *Engine) SetCompatibility(ctxName, subject string, level CompatibilityLevel) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config.SetCompatibility(ctxName, subject, level)
	e.logMutation("compatibility config set", map[string]interface{}{"context": ctxName, "subject": subject, "level": string(level)})
}

// DeleteCompatibility removes a compatibility override.
func (e *Engine) DeleteCompatibility(ctxName, subject string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config.DeleteCompatibility(ctxName, subject)
	e.logMutation("compatibility config deleted", map[string]interface{}{"context": ctxName, "subject": subject})
}

// ResolveMode exposes the config store's fallback resolution for the HTTP
// layer's GET /mode endpoints.
func (e *Engine) ResolveMode(ctxName, subject string) Mode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config.ResolveMode(ctxName, subject)
}

// ExplicitMode exposes the config store's exact-entry lookup.
func (e *Engine) ExplicitMode(ctxName, subject string) (Mode, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config.ExplicitMode(ctxName, subject)
}

// SetMode sets a mode override at (ctxName, subject).
func (e *Engine) SetMode(ctxName, subject string, mode Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config.SetMode(ctxName, subject, mode)
	e.logMutation("mode set", map[string]interface{}{"context": ctxName, "subject": subject, "mode": string(mode)})
}

// DeleteMode removes a mode override.
func (e *Engine) DeleteMode(ctxName, subject string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config.DeleteMode(ctxName, subject)
	e.logMutation("mode deleted", map[string]interface{}{"context": ctxName, "subject": subject})
}
