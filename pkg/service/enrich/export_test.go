package enrich

import "github.com/m-mizutani/gollem"

// ResponseSchema exposes the generation schema for testing
func ResponseSchema() *gollem.Parameter {
	return buildResponseSchema()
}
