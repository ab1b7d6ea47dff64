// Package graphql exposes the analytics service as a GraphQL API.
package graphql

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/gocommerce-analytics/internal/service"
	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/graph-gophers/graphql-go/trace/otel"
)

//go:embed schema.graphql
var schemaSDL string

const maxQueryDepth = 8

// panicLogger reports resolver panics through slog.
type panicLogger struct {
	logger *slog.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.logger.ErrorContext(ctx, "GraphQL resolver panic", "panic", fmt.Sprint(value))
}

// NewSchema parses the embedded schema and binds it to the service.
func NewSchema(svc service.AnalyticsService, logger *slog.Logger) (*gql.Schema, error) {
	schema, err := gql.ParseSchema(schemaSDL, NewResolver(svc, logger),
		gql.UseStringDescriptions(),
		gql.MaxDepth(maxQueryDepth),
		gql.Tracer(otel.DefaultTracer()),
		gql.Logger(panicLogger{logger: logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GraphQL schema: %w", err)
	}
	return schema, nil
}

// NewHandler serves POST requests carrying {query, operationName, variables}.
func NewHandler(schema *gql.Schema) http.Handler {
	return &relay.Handler{Schema: schema}
}
