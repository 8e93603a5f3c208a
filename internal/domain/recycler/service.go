package recycler

import (
	"context"
	"log/slog"
	"math"

	apperrors "github.com/yanqian/mars-recycler/pkg/errors"
)

var workflowSteps = []string{
	"Collect waste on Mars base",
	"Sort waste (organic, plastic, metal, e-waste)",
	"Send to recycling module",
	"Convert into energy via plasma/biogas/pyrolysis",
	"Store generated energy for habitat use",
}

// InvalidInputMessage is returned for any malformed conversion request.
const InvalidInputMessage = "Invalid input. Provide wasteMix object and totalWeight."

// Service exposes the waste catalog and the energy conversion calculator.
type Service interface {
	WasteTypes() []WasteType
	Workflow() Workflow
	Process(ctx context.Context, req ProcessRequest) (ConversionResult, error)
}

type service struct {
	logger *slog.Logger
}

// NewService is a wire provider for the recycler domain.
func NewService(logger *slog.Logger) Service {
	return &service{logger: logger.With("component", "recycler.service")}
}

func (s *service) WasteTypes() []WasteType {
	return All()
}

func (s *service) Workflow() Workflow {
	steps := make([]string, len(workflowSteps))
	copy(steps, workflowSteps)
	return Workflow{Steps: steps}
}

func (s *service) Process(_ context.Context, req ProcessRequest) (ConversionResult, error) {
	if req.WasteMix == nil {
		return ConversionResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, InvalidInputMessage, nil)
	}
	if req.TotalWeight == nil || !validWeight(*req.TotalWeight) {
		return ConversionResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, InvalidInputMessage, nil)
	}

	res := Compute(*req.WasteMix, *req.TotalWeight)
	s.logger.Debug("waste batch processed", "types", req.WasteMix.Len(), "weight", res.InputWeight, "energy_kwh", res.EnergyKWh)
	return res, nil
}

func validWeight(w float64) bool {
	return w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}
