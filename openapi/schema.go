package openapi

import (
	"reflect"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

var timeType = reflect.TypeOf(time.Time{})

func typed(name string) *openapi3.Schema {
	return &openapi3.Schema{Type: &openapi3.Types{name}}
}

func object() *openapi3.Schema {
	return &openapi3.Schema{Type: &openapi3.Types{"object"}, Properties: make(openapi3.Schemas)}
}

func ref(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name}
}

func inline(schema *openapi3.Schema) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: schema}
}

// schemaGenerator turns Go values into schemas. Named structs are registered
// once under components and referenced afterwards.
type schemaGenerator struct {
	components openapi3.Schemas
	names      map[reflect.Type]string
}

func newSchemaGenerator(components openapi3.Schemas) *schemaGenerator {
	return &schemaGenerator{components: components, names: make(map[reflect.Type]string)}
}

func (g *schemaGenerator) generate(example any) *openapi3.SchemaRef {
	if example == nil {
		return inline(object())
	}
	return g.fromType(reflect.TypeOf(example))
}

func (g *schemaGenerator) fromType(t reflect.Type) *openapi3.SchemaRef {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return inline(typed("string"))
	case reflect.Bool:
		return inline(typed("boolean"))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return inline(typed("integer"))
	case reflect.Float32, reflect.Float64:
		return inline(typed("number"))
	case reflect.Slice, reflect.Array:
		schema := typed("array")
		schema.Items = g.fromType(t.Elem())
		return inline(schema)
	case reflect.Map:
		schema := typed("object")
		schema.AdditionalProperties = openapi3.AdditionalProperties{Schema: g.fromType(t.Elem())}
		return inline(schema)
	case reflect.Struct:
		return g.fromStruct(t)
	}
	return inline(object())
}

func (g *schemaGenerator) fromStruct(t reflect.Type) *openapi3.SchemaRef {
	if t == timeType {
		schema := typed("string")
		schema.Format = "date-time"
		return inline(schema)
	}
	if t.Name() == "" {
		return inline(g.buildStruct(t))
	}

	if name, ok := g.names[t]; ok {
		return ref(name)
	}

	name := t.Name()
	g.names[t] = name
	g.components[name] = inline(g.buildStruct(t))
	return ref(name)
}

func (g *schemaGenerator) buildStruct(t reflect.Type) *openapi3.Schema {
	schema := object()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		if field.Anonymous && name == "" {
			embedded := field.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				inner := g.buildStruct(embedded)
				for prop, s := range inner.Properties {
					schema.Properties[prop] = s
				}
				schema.Required = append(schema.Required, inner.Required...)
				continue
			}
		}

		if name == "" {
			name = field.Name
		}
		schema.Properties[name] = g.fromType(field.Type)
		if !strings.Contains(opts, "omitempty") {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema
}
