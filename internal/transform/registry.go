// Package transform refines normalized series into the silver layer. Each
// indicator kind is bound to one Policy that knows which derived metrics
// that family of series carries.
package transform

import (
	"context"
	"time"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// Policy refines a normalized series of one indicator kind.
type Policy interface {
	Kind() catalog.Kind
	Transform(ctx context.Context, ind catalog.Indicator, s *timeseries.Series) (*timeseries.Series, error)
}

// Registry maps indicator kinds to their refinement policies.
type Registry struct {
	policies map[catalog.Kind]Policy
}

// NewRegistry returns a registry holding the built-in policies.
func NewRegistry() *Registry {
	r := &Registry{policies: make(map[catalog.Kind]Policy)}
	r.Register(&PriceIndexPolicy{})
	r.Register(&PolicyRatePolicy{})
	r.Register(&FXPolicy{})
	r.Register(&LaborPolicy{})
	r.Register(&GDPPolicy{})
	return r
}

// Register binds a policy to its kind, replacing any previous binding.
func (r *Registry) Register(p Policy) {
	r.policies[p.Kind()] = p
}

// ForIndicator resolves the policy for an indicator's kind.
func (r *Registry) ForIndicator(ind catalog.Indicator) (Policy, error) {
	p, ok := r.policies[ind.Kind]
	if !ok {
		return nil, apperrors.NewUnsupportedIndicatorError(ind.Key).
			WithContext("kind", string(ind.Kind))
	}
	return p, nil
}

// requirepoints guards every policy against an empty input, which would
// otherwise silently produce an empty silver file.
func requirePoints(ind catalog.Indicator, s *timeseries.Series) error {
	if s == nil || len(s.Points) == 0 {
		return apperrors.NewTransformationError("cannot refine an empty series", nil).
			WithContext("indicator", ind.Key)
	}
	return nil
}

// stampMeta fills the series metadata from the catalog entry and marks the
// refinement time.
func stampMeta(ind catalog.Indicator, s *timeseries.Series, freq timeseries.Frequency) {
	s.Meta.Indicator = ind.Key
	s.Meta.IndicatorName = ind.Name
	s.Meta.Unit = ind.Unit
	s.Meta.Source = string(ind.Source)
	s.Meta.Frequency = freq
	s.Meta.ProcessedAt = time.Now().UTC()
}
