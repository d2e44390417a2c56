package app

import (
	"context"

	"github.com/variantlab/codesim/domain"
)

// CompareUseCase orchestrates the pairwise comparison workflow
type CompareUseCase struct {
	service domain.CompareService
}

// NewCompareUseCase creates a new compare use case
func NewCompareUseCase(service domain.CompareService) *CompareUseCase {
	return &CompareUseCase{service: service}
}

// Execute performs the complete comparison workflow
func (uc *CompareUseCase) Execute(ctx context.Context, req domain.CompareRequest) (*domain.CompareResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	response, err := uc.service.Compare(ctx, req)
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (uc *CompareUseCase) validateRequest(req domain.CompareRequest) error {
	if len(req.Paths) == 0 {
		return domain.NewInvalidInputError("no input paths provided", nil)
	}
	if !req.OutputFormat.IsValid() {
		return domain.NewUnsupportedFormatError(string(req.OutputFormat))
	}
	return nil
}
