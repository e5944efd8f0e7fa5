package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/variscan/domain"
)

// DiffUseCase orchestrates building and reporting a variability model
type DiffUseCase struct {
	service   domain.DiffService
	formatter domain.DiffOutputFormatter
	output    domain.ReportWriter
}

// NewDiffUseCase creates a new diff use case
func NewDiffUseCase(
	service domain.DiffService,
	formatter domain.DiffOutputFormatter,
	output domain.ReportWriter,
) *DiffUseCase {
	return &DiffUseCase{
		service:   service,
		formatter: formatter,
		output:    output,
	}
}

// Execute builds the model for the request and writes it to the request's
// output. The response is returned for callers that need the model itself.
func (uc *DiffUseCase) Execute(ctx context.Context, req domain.DiffRequest) (*domain.DiffResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	response, err := uc.service.Diff(ctx, &req)
	if err != nil {
		return nil, err
	}

	if err := uc.output.Write(req.OutputWriter, req.OutputPath, req.OutputFormat, func(w io.Writer) error {
		return uc.formatter.Write(response, req.OutputFormat, w)
	}); err != nil {
		return nil, err
	}

	return response, nil
}

// Build builds the model without writing it
func (uc *DiffUseCase) Build(ctx context.Context, req domain.DiffRequest) (*domain.DiffResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return uc.service.Diff(ctx, &req)
}

// validateRequest validates the diff request
func (uc *DiffUseCase) validateRequest(req domain.DiffRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if !req.HasValidOutputWriter() {
		return domain.NewInvalidInputError("output writer or output path is required", nil)
	}
	return nil
}

// DiffUseCaseBuilder provides a builder pattern for creating DiffUseCase
type DiffUseCaseBuilder struct {
	service   domain.DiffService
	formatter domain.DiffOutputFormatter
	output    domain.ReportWriter
}

// NewDiffUseCaseBuilder creates a new builder
func NewDiffUseCaseBuilder() *DiffUseCaseBuilder {
	return &DiffUseCaseBuilder{}
}

// WithService sets the diff service
func (b *DiffUseCaseBuilder) WithService(service domain.DiffService) *DiffUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *DiffUseCaseBuilder) WithFormatter(formatter domain.DiffOutputFormatter) *DiffUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithOutputWriter sets the report writer
func (b *DiffUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *DiffUseCaseBuilder {
	b.output = output
	return b
}

// Build creates the DiffUseCase with the configured dependencies
func (b *DiffUseCaseBuilder) Build() (*DiffUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("diff service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}
	if b.output == nil {
		return nil, fmt.Errorf("report writer is required")
	}
	return NewDiffUseCase(b.service, b.formatter, b.output), nil
}
