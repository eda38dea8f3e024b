package api

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/schema-registry/pkg/observability"
	"github.com/platinummonkey/schema-registry/pkg/registry"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeRegistryError renders err as the {error_code, message} envelope. A
// plain Go error (never expected from the Engine, but handled defensively
// for decode failures) maps to an internal error. Client errors (bad
// input, not-found, conflicting state) log at warn; internal failures log
// at error with a stack trace, since those indicate a bug or a storage
// failure rather than caller misuse.
func writeRegistryError(w http.ResponseWriter, r *http.Request, err error) {
	regErr, ok := registry.AsRegistryError(err)
	if !ok {
		regErr = registry.NewError(registry.ErrInternal, err.Error())
	}
	logger := observability.FromContext(r.Context()).WithError(regErr)
	if regErr.Code == registry.ErrInternal {
		logger.WithField("stack_trace", string(debug.Stack())).Error("request failed")
	} else {
		logger.Warn("request failed")
	}
	writeJSON(w, regErr.HTTPStatus(), ErrorResponse{ErrorCode: int(regErr.Code), Message: regErr.Message})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{ErrorCode: int(registry.ErrInvalidSchema), Message: message})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{ErrorCode: http.StatusNotFound, Message: "Not Found"})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{ErrorCode: int(registry.ErrMethodNotAllowed), Message: "Method Not Allowed"})
}

func subjectRefFromPath(r *http.Request) registry.SubjectRef {
	return registry.ParseSubjectRef(mux.Vars(r)["subject"])
}

func idFromPath(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

func decodeRegisterRequest(r *http.Request) (registry.SchemaType, string, []registry.SchemaReference, *int, error) {
	var body RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", "", nil, nil, registry.NewError(registry.ErrInvalidSchema, "malformed request body: "+err.Error())
	}
	schemaType, err := registry.ParseSchemaType(body.SchemaType)
	if err != nil {
		return "", "", nil, nil, registry.NewError(registry.ErrInvalidSchema, err.Error())
	}
	return schemaType, body.Schema, referencesFromWire(body.References), body.ID, nil
}

// --- /schemas ---

func (s *Server) listSchemaTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []string{string(registry.SchemaTypeAvro), string(registry.SchemaTypeJSON), string(registry.SchemaTypeProtobuf)})
}

func (s *Server) recordByID(id int) (*registry.SchemaRecord, error) {
	if rec, ok := s.idCache.Get(id); ok {
		if s.metrics != nil {
			s.metrics.CacheHitsTotal.WithLabelValues("schema_id").Inc()
		}
		return rec, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.WithLabelValues("schema_id").Inc()
	}
	rec, err := s.engine.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.idCache.Add(id, rec)
	return rec, nil
}

func (s *Server) getSchemaByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		badRequest(w, "invalid schema id")
		return
	}
	rec, err := s.recordByID(id)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSchemaByIDResponse(rec))
}

func (s *Server) getSchemaTextByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		badRequest(w, "invalid schema id")
		return
	}
	rec, err := s.recordByID(id)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.RawText)
}

func (s *Server) getSubjectsForID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		badRequest(w, "invalid schema id")
		return
	}
	ctxName := contextFromQuery(r)
	subjects := s.engine.SubjectsForID(ctxName, id, deletedFromQuery(r))
	if subjects == nil {
		subjects = []string{}
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (s *Server) getVersionsForID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r)
	if err != nil {
		badRequest(w, "invalid schema id")
		return
	}
	ctxName := contextFromQuery(r)
	pairs := s.engine.VersionsForID(ctxName, id, deletedFromQuery(r))
	out := make([]SubjectVersionPair, len(pairs))
	for i, p := range pairs {
		out[i] = SubjectVersionPair{Subject: p.Subject, Version: p.Version}
	}
	writeJSON(w, http.StatusOK, out)
}

// --- /subjects ---

func contextFromQuery(r *http.Request) string {
	if c := r.URL.Query().Get("context"); c != "" {
		return c
	}
	return registry.DefaultContext
}

func deletedFromQuery(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("deleted"))
	return v
}

func permanentFromQuery(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("permanent"))
	return v
}

func verboseFromQuery(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("verbose"))
	return v
}

func defaultToGlobalFromQuery(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("defaultToGlobal"))
	return v
}

func (s *Server) listSubjects(w http.ResponseWriter, r *http.Request) {
	names := s.engine.ListSubjects(contextFromQuery(r), deletedFromQuery(r))
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) registerSchema(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	schemaType, text, refs, explicitID, err := decodeRegisterRequest(r)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	result, err := s.engine.Register(ref, schemaType, text, refs, explicitID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RegisterRequestsTotal.WithLabelValues("error").Inc()
		}
		writeRegistryError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.RegisterRequestsTotal.WithLabelValues("success").Inc()
		s.updateRegistryGauges()
	}
	writeJSON(w, http.StatusOK, RegisterResponse{ID: result.ID})
}

// updateRegistryGauges refreshes the schema/subject count gauges. Called
// after mutations; cheap relative to the request itself since Stats is a
// single RLock pass over in-memory maps.
func (s *Server) updateRegistryGauges() {
	schemas, subjects := s.engine.Stats()
	s.metrics.SchemasRegisteredTotal.Set(float64(schemas))
	s.metrics.SubjectsActiveTotal.Set(float64(subjects))
}

func (s *Server) lookupSchema(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	schemaType, text, refs, _, err := decodeRegisterRequest(r)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	result, err := s.engine.Lookup(ref, schemaType, text, refs, deletedFromQuery(r))
	if err != nil {
		if s.metrics != nil {
			s.metrics.LookupRequestsTotal.WithLabelValues("error").Inc()
		}
		writeRegistryError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.LookupRequestsTotal.WithLabelValues("success").Inc()
	}
	writeJSON(w, http.StatusOK, newSubjectSchemaResponse(ref.String(), result.ID, result.Version, result.Record))
}

func (s *Server) deleteSubject(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	permanent := permanentFromQuery(r)
	versions, err := s.engine.ListVersions(ref, true)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	if err := s.engine.DeleteSubject(ref, permanent); err != nil {
		writeRegistryError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.updateRegistryGauges()
	}
	if versions == nil {
		versions = []int{}
	}
	writeJSON(w, http.StatusOK, versions)
}

func (s *Server) listVersions(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	versions, err := s.engine.ListVersions(ref, deletedFromQuery(r))
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	if versions == nil {
		versions = []int{}
	}
	writeJSON(w, http.StatusOK, versions)
}

func (s *Server) getVersion(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	selector := mux.Vars(r)["version"]
	_, entry, rec, err := s.engine.GetVersion(ref, selector)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubjectSchemaResponse(ref.String(), rec.ID, entry.VersionNumber, rec))
}

func (s *Server) getVersionSchemaText(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	selector := mux.Vars(r)["version"]
	_, _, rec, err := s.engine.GetVersion(ref, selector)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.RawText)
}

func (s *Server) deleteVersion(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	selector := mux.Vars(r)["version"]
	_, entry, _, err := s.engine.GetVersion(ref, selector)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	if err := s.engine.DeleteVersion(ref, entry.VersionNumber, permanentFromQuery(r)); err != nil {
		writeRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry.VersionNumber)
}

func (s *Server) getReferencedBy(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	selector := mux.Vars(r)["version"]
	_, entry, _, err := s.engine.GetVersion(ref, selector)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	ids, err := s.engine.ReferencedBy(ref, entry.VersionNumber)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	if ids == nil {
		ids = []int{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// --- /compatibility ---

func (s *Server) checkCompatibility(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	versionSelector := mux.Vars(r)["version"] // empty for the all-versions route
	schemaType, text, refs, _, err := decodeRegisterRequest(r)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	result, err := s.engine.CheckCompatibility(ref, versionSelector, schemaType, text, refs, verboseFromQuery(r))
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	if s.metrics != nil {
		outcome := "incompatible"
		if result.IsCompatible {
			outcome = "compatible"
		}
		s.metrics.CompatibilityChecksTotal.WithLabelValues(outcome).Inc()
	}
	writeJSON(w, http.StatusOK, CompatibilityResponse{IsCompatible: result.IsCompatible, Messages: result.Messages})
}

// --- /config ---

func decodeConfigRequest(r *http.Request) (registry.CompatibilityLevel, error) {
	var body ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", registry.NewError(registry.ErrInvalidSchema, "malformed request body: "+err.Error())
	}
	level, err := registry.ParseCompatibilityLevel(body.Compatibility)
	if err != nil {
		return "", registry.NewError(registry.ErrInvalidCompatibility, err.Error())
	}
	return level, nil
}

func (s *Server) getGlobalConfig(w http.ResponseWriter, r *http.Request) {
	level := s.engine.ResolveCompatibility(contextFromQuery(r), "")
	writeJSON(w, http.StatusOK, ConfigResponse{CompatibilityLevel: string(level)})
}

func (s *Server) putGlobalConfig(w http.ResponseWriter, r *http.Request) {
	level, err := decodeConfigRequest(r)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	s.engine.SetCompatibility(contextFromQuery(r), "", level)
	writeJSON(w, http.StatusOK, ConfigResponse{CompatibilityLevel: string(level)})
}

func (s *Server) getSubjectConfig(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	level, ok := s.engine.ExplicitCompatibility(ref.Context, ref.Name)
	if !ok {
		writeRegistryError(w, r, registry.NewError(registry.ErrSubjectNotFound, "subject compatibility override not found"))
		return
	}
	writeJSON(w, http.StatusOK, ConfigResponse{CompatibilityLevel: string(level)})
}

func (s *Server) putSubjectConfig(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	level, err := decodeConfigRequest(r)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	s.engine.SetCompatibility(ref.Context, ref.Name, level)
	writeJSON(w, http.StatusOK, ConfigResponse{CompatibilityLevel: string(level)})
}

func (s *Server) deleteSubjectConfig(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	level, ok := s.engine.ExplicitCompatibility(ref.Context, ref.Name)
	if !ok {
		writeRegistryError(w, r, registry.NewError(registry.ErrSubjectNotFound, "subject compatibility override not found"))
		return
	}
	s.engine.DeleteCompatibility(ref.Context, ref.Name)
	writeJSON(w, http.StatusOK, ConfigResponse{CompatibilityLevel: string(level)})
}

// --- /mode ---

func decodeModeRequest(r *http.Request) (registry.Mode, error) {
	var body ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", registry.NewError(registry.ErrInvalidSchema, "malformed request body: "+err.Error())
	}
	mode, err := registry.ParseMode(body.Mode)
	if err != nil {
		return "", registry.NewError(registry.ErrInvalidMode, err.Error())
	}
	return mode, nil
}

func (s *Server) getGlobalMode(w http.ResponseWriter, r *http.Request) {
	mode := s.engine.ResolveMode(contextFromQuery(r), "")
	writeJSON(w, http.StatusOK, ModeResponse{Mode: string(mode)})
}

func (s *Server) putGlobalMode(w http.ResponseWriter, r *http.Request) {
	mode, err := decodeModeRequest(r)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	s.engine.SetMode(contextFromQuery(r), "", mode)
	writeJSON(w, http.StatusOK, ModeResponse{Mode: string(mode)})
}

func (s *Server) getSubjectMode(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	mode, ok := s.engine.ExplicitMode(ref.Context, ref.Name)
	if !ok {
		if defaultToGlobalFromQuery(r) {
			writeJSON(w, http.StatusOK, ModeResponse{Mode: string(s.engine.ResolveMode(ref.Context, ref.Name))})
			return
		}
		writeRegistryError(w, r, registry.NewError(registry.ErrSubjectNotFound, "subject mode override not found"))
		return
	}
	writeJSON(w, http.StatusOK, ModeResponse{Mode: string(mode)})
}

func (s *Server) putSubjectMode(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	mode, err := decodeModeRequest(r)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	s.engine.SetMode(ref.Context, ref.Name, mode)
	writeJSON(w, http.StatusOK, ModeResponse{Mode: string(mode)})
}

func (s *Server) deleteSubjectMode(w http.ResponseWriter, r *http.Request) {
	ref := subjectRefFromPath(r)
	mode, ok := s.engine.ExplicitMode(ref.Context, ref.Name)
	if !ok {
		writeRegistryError(w, r, registry.NewError(registry.ErrSubjectNotFound, "subject mode override not found"))
		return
	}
	s.engine.DeleteMode(ref.Context, ref.Name)
	writeJSON(w, http.StatusOK, ModeResponse{Mode: string(mode)})
}

// --- /contexts, /import/schemas ---

func (s *Server) listContexts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.ListContexts())
}

func (s *Server) importSchemas(w http.ResponseWriter, r *http.Request) {
	var body []ImportItem
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "malformed request body: "+err.Error())
		return
	}
	items := make([]registry.ImportItem, len(body))
	for i, it := range body {
		schemaType, err := registry.ParseSchemaType(it.SchemaType)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		items[i] = registry.ImportItem{
			ID:         it.ID,
			Ref:        registry.ParseSubjectRef(it.Subject),
			SchemaType: schemaType,
			Text:       it.Schema,
			References: referencesFromWire(it.References),
		}
	}
	summary, err := s.engine.ImportBulk(items)
	if err != nil {
		writeRegistryError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.updateRegistryGauges()
	}
	out := ImportSummary{Imported: summary.Imported, Errors: summary.Errors, Items: make([]ImportItemResult, len(summary.Items))}
	for i, it := range summary.Items {
		res := ImportItemResult{ID: it.ID, Version: it.Version}
		if it.Error != nil {
			res.Error = &ErrorResponse{ErrorCode: int(it.Error.Code), Message: it.Error.Message}
		}
		out.Items[i] = res
	}
	writeJSON(w, http.StatusOK, out)
}

// --- health ---

func (s *Server) liveness(w http.ResponseWriter, r *http.Request) {
	s.health.Liveness(w, r)
}

func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	s.health.Readiness(w, r)
}
