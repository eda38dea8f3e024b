package compatibility

import (
	"github.com/platinummonkey/schema-registry/pkg/registry/protobuf"
)

// SchemaGraph represents a complete parsed protobuf schema with enhanced metadata
type SchemaGraph struct {
	Package      string
	Syntax       string // "proto2" or "proto3"
	Imports      []Import
	Messages     map[string]*Message  // Fully qualified name -> Message
	Enums        map[string]*Enum     // Fully qualified name -> Enum
	Services     map[string]*Service  // Fully qualified name -> Service
	Dependencies map[string]*SchemaGraph // Import path -> dependency graph
}

// Import represents an import statement
type Import struct {
	Path   string
	Public bool
	Weak   bool
}

// Message represents a protobuf message with all fields
type Message struct {
	Name         string
	FullName     string // package.Message or package.Outer.Inner
	Fields       map[int]*Field  // Field number -> Field (for fast lookup)
	FieldsByName map[string]*Field
	Reserved     *Reserved
	Nested       map[string]*Message
	NestedEnums  map[string]*Enum
	OneOfs       map[string]*OneOf
	Options      map[string]string
}

// Field represents a message field with complete metadata
type Field struct {
	Name         string
	Number       int
	Type         FieldType
	Label        FieldLabel // optional, required, repeated
	TypeName     string     // For message/enum types
	IsMap        bool
	MapKeyType   string
	MapValueType string
	InOneOf      string     // OneOf name if part of oneof
	Deprecated   bool
	Packed       *bool
	DefaultValue string
}

// FieldType represents the protobuf field type
type FieldType int

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeDouble
	FieldTypeFloat
	FieldTypeInt32
	FieldTypeInt64
	FieldTypeUint32
	FieldTypeUint64
	FieldTypeSint32
	FieldTypeSint64
	FieldTypeFixed32
	FieldTypeFixed64
	FieldTypeSfixed32
	FieldTypeSfixed64
	FieldTypeBool
	FieldTypeString
	FieldTypeBytes
	FieldTypeMessage
	FieldTypeEnum
)

func (ft FieldType) String() string {
	return []string{
		"unknown", "double", "float", "int32", "int64", "uint32", "uint64",
		"sint32", "sint64", "fixed32", "fixed64", "sfixed32", "sfixed64",
		"bool", "string", "bytes", "message", "enum",
	}[ft]
}

// FieldLabel represents field cardinality
type FieldLabel int

const (
	FieldLabelOptional FieldLabel = iota
	FieldLabelRequired
	FieldLabelRepeated
)

func (fl FieldLabel) String() string {
	return []string{"optional", "required", "repeated"}[fl]
}

// Enum represents an enum with values
type Enum struct {
	Name         string
	FullName     string
	Values       map[int]*EnumValue  // Number -> Value
	ValuesByName map[string]*EnumValue
	Reserved     *Reserved
	Options      map[string]string
}

// EnumValue represents an enum value
type EnumValue struct {
	Name       string
	Number     int
	Deprecated bool
}

// Service represents a gRPC service
type Service struct {
	Name     string
	FullName string
	Methods  map[string]*Method
}

// Method represents an RPC method
type Method struct {
	Name            string
	InputType       string
	OutputType      string
	ClientStreaming bool
	ServerStreaming bool
	Deprecated      bool
}

// Reserved tracks reserved fields
type Reserved struct {
	Numbers []int
	Ranges  [][2]int
	Names   []string
}

// OneOf represents a oneof group
type OneOf struct {
	Name   string
	Fields []int // Field numbers in this oneof
}

// SchemaGraphBuilder converts protobuf AST to SchemaGraph
type SchemaGraphBuilder struct {
	currentPackage string
	imports        map[string]*SchemaGraph
}

// NewSchemaGraphBuilder creates a new builder
func NewSchemaGraphBuilder() *SchemaGraphBuilder {
	return &SchemaGraphBuilder{
		imports: make(map[string]*SchemaGraph),
	}
}

// BuildFromAST converts a protobuf AST to a SchemaGraph
func (b *SchemaGraphBuilder) BuildFromAST(ast *protobuf.RootNode) (*SchemaGraph, error) {
	b.currentPackage = b.extractPackage(ast)
	graph := &SchemaGraph{
		Package:  b.currentPackage,
		Syntax:   b.extractSyntax(ast),
		Imports:  b.extractImports(ast),
		Messages: make(map[string]*Message),
		Enums:    make(map[string]*Enum),
		Services: make(map[string]*Service),
	}

	for _, m := range ast.Messages {
		b.addMessage(graph, m, b.currentPackage)
	}
	for _, e := range ast.Enums {
		b.addEnum(graph, e, b.currentPackage)
	}
	for _, s := range ast.Services {
		graph.Services[b.qualify(b.currentPackage, s.Name)] = b.buildService(s, b.currentPackage)
	}

	return graph, nil
}

func (b *SchemaGraphBuilder) qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

func (b *SchemaGraphBuilder) addMessage(graph *SchemaGraph, node *protobuf.MessageNode, scope string) {
	msg := b.buildMessage(node, scope)
	graph.Messages[msg.FullName] = msg
	for _, nestedEnum := range node.Enums {
		graph.Enums[b.qualify(msg.FullName, nestedEnum.Name)] = b.buildEnum(nestedEnum, msg.FullName)
	}
	for _, nested := range node.Nested {
		b.addMessage(graph, nested, msg.FullName)
	}
}

func (b *SchemaGraphBuilder) addEnum(graph *SchemaGraph, node *protobuf.EnumNode, scope string) {
	graph.Enums[b.qualify(scope, node.Name)] = b.buildEnum(node, scope)
}

func (b *SchemaGraphBuilder) buildMessage(node *protobuf.MessageNode, scope string) *Message {
	msg := &Message{
		Name:         node.Name,
		FullName:     b.qualify(scope, node.Name),
		Fields:       make(map[int]*Field),
		FieldsByName: make(map[string]*Field),
		Nested:       make(map[string]*Message),
		NestedEnums:  make(map[string]*Enum),
		OneOfs:       make(map[string]*OneOf),
		Options:      optionsToMap(node.Options),
	}
	for _, f := range node.Fields {
		field := fieldFromNode(f, "")
		msg.Fields[field.Number] = field
		msg.FieldsByName[field.Name] = field
	}
	for _, oo := range node.OneOfs {
		var numbers []int
		for _, f := range oo.Fields {
			field := fieldFromNode(f, oo.Name)
			msg.Fields[field.Number] = field
			msg.FieldsByName[field.Name] = field
			numbers = append(numbers, field.Number)
		}
		msg.OneOfs[oo.Name] = &OneOf{Name: oo.Name, Fields: numbers}
	}
	for _, nested := range node.Nested {
		nestedMsg := b.buildMessage(nested, msg.FullName)
		msg.Nested[nested.Name] = nestedMsg
	}
	for _, e := range node.Enums {
		msg.NestedEnums[e.Name] = b.buildEnum(e, msg.FullName)
	}
	return msg
}

func (b *SchemaGraphBuilder) buildEnum(node *protobuf.EnumNode, scope string) *Enum {
	e := &Enum{
		Name:         node.Name,
		FullName:     b.qualify(scope, node.Name),
		Values:       make(map[int]*EnumValue),
		ValuesByName: make(map[string]*EnumValue),
		Options:      optionsToMap(node.Options),
	}
	for _, v := range node.Values {
		val := &EnumValue{Name: v.Name, Number: v.Number}
		e.Values[v.Number] = val
		e.ValuesByName[v.Name] = val
	}
	return e
}

func (b *SchemaGraphBuilder) buildService(node *protobuf.ServiceNode, scope string) *Service {
	svc := &Service{
		Name:     node.Name,
		FullName: b.qualify(scope, node.Name),
		Methods:  make(map[string]*Method),
	}
	for _, rpc := range node.RPCs {
		svc.Methods[rpc.Name] = &Method{
			Name:            rpc.Name,
			InputType:       rpc.InputType,
			OutputType:      rpc.OutputType,
			ClientStreaming: rpc.ClientStreaming,
			ServerStreaming: rpc.ServerStreaming,
		}
	}
	return svc
}

func optionsToMap(opts []*protobuf.OptionNode) map[string]string {
	m := make(map[string]string, len(opts))
	for _, o := range opts {
		m[o.Name] = o.Value
	}
	return m
}

func fieldFromNode(node *protobuf.FieldNode, oneOf string) *Field {
	label := FieldLabelOptional
	switch {
	case node.Repeated:
		label = FieldLabelRepeated
	case node.Required:
		label = FieldLabelRequired
	}
	ft, typeName := fieldTypeFromString(node.Type)
	return &Field{
		Name:     node.Name,
		Number:   node.Number,
		Type:     ft,
		Label:    label,
		TypeName: typeName,
		InOneOf:  oneOf,
	}
}

// fieldTypeFromString maps a protobuf scalar keyword to FieldType; any other
// identifier is treated as a message or enum type name resolved later by the
// comparator (it only needs wire-compatibility for scalars).
func fieldTypeFromString(s string) (FieldType, string) {
	switch s {
	case "double":
		return FieldTypeDouble, ""
	case "float":
		return FieldTypeFloat, ""
	case "int32":
		return FieldTypeInt32, ""
	case "int64":
		return FieldTypeInt64, ""
	case "uint32":
		return FieldTypeUint32, ""
	case "uint64":
		return FieldTypeUint64, ""
	case "sint32":
		return FieldTypeSint32, ""
	case "sint64":
		return FieldTypeSint64, ""
	case "fixed32":
		return FieldTypeFixed32, ""
	case "fixed64":
		return FieldTypeFixed64, ""
	case "sfixed32":
		return FieldTypeSfixed32, ""
	case "sfixed64":
		return FieldTypeSfixed64, ""
	case "bool":
		return FieldTypeBool, ""
	case "string":
		return FieldTypeString, ""
	case "bytes":
		return FieldTypeBytes, ""
	default:
		// Unknown scalar keyword: treat as a named message/enum type. The
		// comparator only needs FieldTypeMessage/FieldTypeEnum to agree on
		// TypeName equality, so either tag works for its purposes here.
		return FieldTypeMessage, s
	}
}

func (b *SchemaGraphBuilder) extractPackage(ast *protobuf.RootNode) string {
	if ast.Package != nil {
		return ast.Package.Name
	}
	return ""
}

func (b *SchemaGraphBuilder) extractSyntax(ast *protobuf.RootNode) string {
	if ast.Syntax != nil {
		return ast.Syntax.Value
	}
	return "proto2" // default
}

func (b *SchemaGraphBuilder) extractImports(ast *protobuf.RootNode) []Import {
	var imports []Import
	for _, imp := range ast.Imports {
		imports = append(imports, Import{
			Path:   imp.Path,
			Public: imp.Public,
			Weak:   imp.Weak,
		})
	}
	return imports
}
