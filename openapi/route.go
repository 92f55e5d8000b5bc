package openapi

import (
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

type RouteBuilder struct {
	openapi   *OpenAPI
	method    string
	path      string
	operation *openapi3.Operation
}

func (rb *RouteBuilder) extractPathParams() {
	for _, part := range strings.Split(rb.path, "/") {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			rb.param(name, "path").Required = true
		}
	}
}

func (rb *RouteBuilder) param(name, in string) *openapi3.Parameter {
	for _, p := range rb.operation.Parameters {
		if p.Value != nil && p.Value.Name == name && p.Value.In == in {
			return p.Value
		}
	}

	param := &openapi3.Parameter{
		Name:   name,
		In:     in,
		Schema: &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
	}
	rb.operation.Parameters = append(rb.operation.Parameters, &openapi3.ParameterRef{Value: param})
	return param
}

func (rb *RouteBuilder) Summary(summary string) *RouteBuilder {
	rb.operation.Summary = summary
	return rb
}

func (rb *RouteBuilder) Description(description string) *RouteBuilder {
	rb.operation.Description = description
	return rb
}

func (rb *RouteBuilder) Tags(tags ...string) *RouteBuilder {
	rb.operation.Tags = append(rb.operation.Tags, tags...)
	return rb
}

func (rb *RouteBuilder) PathParam(name, description string) *RouteBuilder {
	p := rb.param(name, "path")
	p.Description = description
	p.Required = true
	return rb
}

func (rb *RouteBuilder) Body(example any, description string) *RouteBuilder {
	rb.operation.RequestBody = &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Description: description,
			Required:    true,
			Content:     jsonContent(rb.openapi.schemaFor(example)),
		},
	}
	return rb
}

func (rb *RouteBuilder) Response(statusCode int, example any, description string) *RouteBuilder {
	resp := &openapi3.Response{Description: &description}
	if example != nil {
		resp.Content = jsonContent(rb.openapi.schemaFor(example))
	}
	rb.operation.Responses.Set(strconv.Itoa(statusCode), &openapi3.ResponseRef{Value: resp})
	return rb
}

func (rb *RouteBuilder) Security(schemes ...string) *RouteBuilder {
	if rb.operation.Security == nil {
		rb.operation.Security = &openapi3.SecurityRequirements{}
	}
	for _, scheme := range schemes {
		*rb.operation.Security = append(*rb.operation.Security, openapi3.SecurityRequirement{scheme: []string{}})
	}
	return rb
}

func jsonContent(schema *openapi3.SchemaRef) openapi3.Content {
	return openapi3.Content{"application/json": &openapi3.MediaType{Schema: schema}}
}

func (rb *RouteBuilder) Build() {
	rb.openapi.addOperation(rb.method, rb.path, rb.operation)
}
