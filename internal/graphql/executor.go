package graphql

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"time"

	gqlgen "github.com/99designs/gqlgen/graphql"
	json "github.com/goccy/go-json"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

//go:embed schema.graphqls
var schemaSDL string

// Schema is the parsed service schema.
var Schema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: schemaSDL})

// Executor runs GraphQL operations against a Resolver.
type Executor struct {
	schema   *ast.Schema
	resolver *Resolver
}

// NewExecutor creates an executor for the service schema.
func NewExecutor(resolver *Resolver) *Executor {
	return &Executor{schema: Schema, resolver: resolver}
}

// Execute parses, validates and runs one operation. It returns the response
// and the HTTP status to serve it with: 422 when the request never reached the
// resolvers, 200 otherwise, even with field errors.
func (e *Executor) Execute(ctx context.Context, params *gqlgen.RawParams) (*gqlgen.Response, int) {
	if params.Query == "" {
		return errorResponse(gqlerror.Errorf("no query provided")), http.StatusUnprocessableEntity
	}

	doc, errs := gqlparser.LoadQuery(e.schema, params.Query)
	if len(errs) > 0 {
		return &gqlgen.Response{Errors: errs}, http.StatusUnprocessableEntity
	}

	op := doc.Operations.ForName(params.OperationName)
	if op == nil {
		if params.OperationName == "" {
			return errorResponse(gqlerror.Errorf("operation name is required when the document has several operations")), http.StatusUnprocessableEntity
		}
		return errorResponse(gqlerror.Errorf("operation %s not found", params.OperationName)), http.StatusUnprocessableEntity
	}

	vars, err := validator.VariableValues(e.schema, op, params.Variables)
	if err != nil {
		return errorResponse(asGQLError(err)), http.StatusUnprocessableEntity
	}

	ex := &execution{Executor: e, vars: vars}
	var data map[string]any
	switch op.Operation {
	case ast.Query:
		data = ex.root(ctx, op, ex.resolveQuery)
	case ast.Mutation:
		data = ex.root(ctx, op, ex.resolveMutation)
	default:
		return errorResponse(gqlerror.Errorf("%s operations are not supported", op.Operation)), http.StatusUnprocessableEntity
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return errorResponse(gqlerror.Errorf("encoding response: %v", err)), http.StatusInternalServerError
	}
	return &gqlgen.Response{Data: raw, Errors: ex.errs}, http.StatusOK
}

func errorResponse(err *gqlerror.Error) *gqlgen.Response {
	return &gqlgen.Response{Errors: gqlerror.List{err}}
}

func asGQLError(err error) *gqlerror.Error {
	if gqlErr, ok := err.(*gqlerror.Error); ok {
		return gqlErr
	}
	return gqlerror.Wrap(err)
}

type fieldResolver func(ctx context.Context, field *ast.Field, args map[string]any) (any, error)

// execution is the state of a single operation.
type execution struct {
	*Executor
	vars map[string]any
	errs gqlerror.List
}

// root resolves the top-level fields serially in document order.
func (ex *execution) root(ctx context.Context, op *ast.OperationDefinition, resolve fieldResolver) map[string]any {
	data := make(map[string]any, len(op.SelectionSet))
	for _, field := range ex.collectFields(op.SelectionSet) {
		if field.Name == "__typename" {
			data[field.Alias] = field.ObjectDefinition.Name
			continue
		}
		data[field.Alias] = ex.resolveField(ctx, field, resolve)
	}
	return data
}

func (ex *execution) resolveField(ctx context.Context, field *ast.Field, resolve fieldResolver) any {
	r := ex.resolver
	ctx, span := r.Tracer.Start(ctx, "graphql."+field.Name)
	defer span.End()
	start := time.Now()

	path := ast.Path{ast.PathName(field.Alias)}
	value, err := resolve(ctx, field, field.ArgumentMap(ex.vars))
	if err == nil {
		value, err = ex.project(value, field.SelectionSet)
	}

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		gqlErr := fieldError(path, err)
		span.SetAttributes(attribute.String("graphql.error.code", fmt.Sprint(gqlErr.Extensions["code"])))
		ex.errs = append(ex.errs, gqlErr)
		value = nil
	}
	r.Metrics.RecordRequest(field.Name, status, time.Since(start).Seconds())
	if err != nil {
		r.Logger.Ctx(ctx).Debug("GraphQL field failed", zap.String("field", field.Name), zap.Error(err))
	}
	return value
}

func (ex *execution) resolveQuery(ctx context.Context, field *ast.Field, args map[string]any) (any, error) {
	q := ex.resolver.Query()
	switch field.Name {
	case "health":
		return q.Health(ctx)

	case "shippingRates":
		var in struct {
			StoreID string       `json:"storeId"`
			Items   []*ItemInput `json:"items"`
			Address AddressInput `json:"address"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return q.ShippingRates(ctx, in.StoreID, in.Items, in.Address)

	case "validateAddress":
		var in struct {
			Address AddressInput `json:"address"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return q.ValidateAddress(ctx, in.Address)

	case "shippingZones":
		var in struct {
			StoreID string `json:"storeId"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return q.ShippingZones(ctx, in.StoreID)
	}
	return nil, fmt.Errorf("%w: unknown query field %s", errBadRequest, field.Name)
}

func (ex *execution) resolveMutation(ctx context.Context, field *ast.Field, args map[string]any) (any, error) {
	m := ex.resolver.Mutation()
	switch field.Name {
	case "invalidateStore":
		var in struct {
			StoreID string `json:"storeId"`
		}
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		return m.InvalidateStore(ctx, in.StoreID)
	}
	return nil, fmt.Errorf("%w: unknown mutation field %s", errBadRequest, field.Name)
}

// decodeArgs converts coerced argument values into a typed struct.
func decodeArgs(args map[string]any, dst any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// project reduces a resolved value to the selected fields.
func (ex *execution) project(value any, sel ast.SelectionSet) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return ex.selectFields(generic, sel), nil
}

func (ex *execution) selectFields(value any, sel ast.SelectionSet) any {
	if len(sel) == 0 {
		return value
	}
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = ex.selectFields(elem, sel)
		}
		return out
	case map[string]any:
		fields := ex.collectFields(sel)
		out := make(map[string]any, len(fields))
		for _, f := range fields {
			if f.Name == "__typename" {
				out[f.Alias] = f.ObjectDefinition.Name
				continue
			}
			out[f.Alias] = ex.selectFields(v[f.Name], f.SelectionSet)
		}
		return out
	}
	return value
}

// collectFields flattens fragments and drops fields excluded by @skip or @include.
func (ex *execution) collectFields(sel ast.SelectionSet) []*ast.Field {
	var fields []*ast.Field
	for _, s := range sel {
		switch s := s.(type) {
		case *ast.Field:
			if ex.included(s.Directives) {
				fields = append(fields, s)
			}
		case *ast.InlineFragment:
			if ex.included(s.Directives) {
				fields = append(fields, ex.collectFields(s.SelectionSet)...)
			}
		case *ast.FragmentSpread:
			if ex.included(s.Directives) && s.Definition != nil {
				fields = append(fields, ex.collectFields(s.Definition.SelectionSet)...)
			}
		}
	}
	return fields
}

func (ex *execution) included(directives ast.DirectiveList) bool {
	if d := directives.ForName("skip"); d != nil {
		if skip, _ := d.ArgumentMap(ex.vars)["if"].(bool); skip {
			return false
		}
	}
	if d := directives.ForName("include"); d != nil {
		if include, _ := d.ArgumentMap(ex.vars)["if"].(bool); !include {
			return false
		}
	}
	return true
}
