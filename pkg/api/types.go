package api

import "github.com/platinummonkey/schema-registry/pkg/registry"

// ContentType is the schema registry wire format. Confluent-compatible
// clients send and accept this alongside plain application/json.
const ContentType = "application/vnd.schemaregistry.v1+json"

// SchemaReference is the wire form of registry.SchemaReference.
type SchemaReference struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Version int    `json:"version"`
}

func referencesFromWire(refs []SchemaReference) []registry.SchemaReference {
	if len(refs) == 0 {
		return nil
	}
	out := make([]registry.SchemaReference, len(refs))
	for i, r := range refs {
		out[i] = registry.SchemaReference{Name: r.Name, Subject: r.Subject, Version: r.Version}
	}
	return out
}

func referencesToWire(refs []registry.SchemaReference) []SchemaReference {
	if len(refs) == 0 {
		return nil
	}
	out := make([]SchemaReference, len(refs))
	for i, r := range refs {
		out[i] = SchemaReference{Name: r.Name, Subject: r.Subject, Version: r.Version}
	}
	return out
}

// RegisterRequest is the body of a schema register/lookup/compatibility-check
// call. Id is only honored in IMPORT mode.
type RegisterRequest struct {
	Schema     string            `json:"schema"`
	SchemaType string            `json:"schemaType,omitempty"`
	References []SchemaReference `json:"references,omitempty"`
	ID         *int              `json:"id,omitempty"`
}

// RegisterResponse is the body returned by a successful registration.
type RegisterResponse struct {
	ID int `json:"id"`
}

// SchemaByIDResponse is the body of GET /schemas/ids/{id}. SchemaType is
// omitted on the wire for AVRO, the implicit default.
type SchemaByIDResponse struct {
	Schema     string            `json:"schema"`
	SchemaType string            `json:"schemaType,omitempty"`
	References []SchemaReference `json:"references,omitempty"`
}

// SubjectSchemaResponse is the body of GET /subjects/{subject}/versions/{version}
// and the lookup POST /subjects/{subject}.
type SubjectSchemaResponse struct {
	Subject    string            `json:"subject"`
	ID         int               `json:"id"`
	Version    int               `json:"version"`
	Schema     string            `json:"schema"`
	SchemaType string            `json:"schemaType,omitempty"`
	References []SchemaReference `json:"references,omitempty"`
}

func schemaTypeOnWire(t registry.SchemaType) string {
	if t == registry.SchemaTypeAvro {
		return ""
	}
	return string(t)
}

func newSchemaByIDResponse(rec *registry.SchemaRecord) SchemaByIDResponse {
	return SchemaByIDResponse{
		Schema:     rec.RawText,
		SchemaType: schemaTypeOnWire(rec.SchemaType),
		References: referencesToWire(rec.References),
	}
}

func newSubjectSchemaResponse(subject string, id, version int, rec *registry.SchemaRecord) SubjectSchemaResponse {
	return SubjectSchemaResponse{
		Subject:    subject,
		ID:         id,
		Version:    version,
		Schema:     rec.RawText,
		SchemaType: schemaTypeOnWire(rec.SchemaType),
		References: referencesToWire(rec.References),
	}
}

// SubjectVersionPair names one version within one subject, on the wire.
type SubjectVersionPair struct {
	Subject string `json:"subject"`
	Version int    `json:"version"`
}

// CompatibilityRequest is the body of POST /compatibility/subjects/{subject}/...
type CompatibilityRequest = RegisterRequest

// CompatibilityResponse is the body of a compatibility check.
type CompatibilityResponse struct {
	IsCompatible bool     `json:"is_compatible"`
	Messages     []string `json:"messages,omitempty"`
}

// ConfigRequest is the body of PUT /config and PUT /config/{subject}.
type ConfigRequest struct {
	Compatibility string `json:"compatibility"`
}

// ConfigResponse is the body returned by the /config family.
type ConfigResponse struct {
	CompatibilityLevel string `json:"compatibilityLevel"`
}

// ModeRequest is the body of PUT /mode and PUT /mode/{subject}.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// ModeResponse is the body returned by the /mode family.
type ModeResponse struct {
	Mode string `json:"mode"`
}

// ErrorResponse is the standard error envelope: {error_code, message}.
type ErrorResponse struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
}

// ImportItem is one entry of a bulk POST /import/schemas request.
type ImportItem struct {
	ID         int               `json:"id"`
	Subject    string            `json:"subject"`
	Schema     string            `json:"schema"`
	SchemaType string            `json:"schemaType,omitempty"`
	References []SchemaReference `json:"references,omitempty"`
}

// ImportItemResult is the per-item outcome reported back by ImportSummary.
type ImportItemResult struct {
	ID      int            `json:"id,omitempty"`
	Version int            `json:"version,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ImportSummary is the body returned by POST /import/schemas.
type ImportSummary struct {
	Imported int                `json:"imported"`
	Errors   int                `json:"errors"`
	Items    []ImportItemResult `json:"items"`
}
