package ports

import (
	"context"
	"route-scenario-service/internal/domain"
)

// Contract for the external spreadsheet parse/validate operation.
type InputParser interface {
	// Parse a raw source file into a validated NormalizedInput.
	ParseAndValidate(ctx context.Context, file domain.SourceFile) (domain.ParseResult, error)
}

// Contract for the external optimization operation.
type Optimizer interface {
	// Run the optimizer on a normalized input.
	Optimize(ctx context.Context, input domain.NormalizedInput) (*domain.Result, error)
}

// Contract for rendering a result as a spreadsheet.
type ResultExporter interface {
	// Return the binary spreadsheet payload for a result.
	Export(ctx context.Context, result domain.Result) ([]byte, error)
}

// Optional store for optimizer results keyed by an input fingerprint.
type ResultCache interface {
	// Return the cached result and whether it was found.
	Get(ctx context.Context, key string) (*domain.Result, bool, error)
	// Store a result under key.
	Put(ctx context.Context, key string, result domain.Result) error
}
