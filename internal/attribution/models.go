package attribution

import (
	"fmt"
	"math"

	"github.com/ignite/attribution-engine/internal/domain"
)

// Model is a closed set of credit-allocation models. Using a typed enum
// instead of raw strings makes the calculator switch exhaustive.
type Model int

const (
	FirstTouch Model = iota
	LastTouch
	Linear
	TimeDecay
	PositionBased
)

var modelNames = map[Model]string{
	FirstTouch:    "first_touch",
	LastTouch:     "last_touch",
	Linear:        "linear",
	TimeDecay:     "time_decay",
	PositionBased: "position_based",
}

// AllModels lists every model in comparison-report order.
var AllModels = []Model{FirstTouch, LastTouch, Linear, TimeDecay, PositionBased}

// String returns the wire name of the model.
func (m Model) String() string {
	if name, ok := modelNames[m]; ok {
		return name
	}
	return fmt.Sprintf("model(%d)", int(m))
}

// ParseModel maps a wire name to its Model. Returns ErrUnknownModel for
// anything outside the closed set.
func ParseModel(name string) (Model, error) {
	for m, n := range modelNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

// ModelConfig carries the model plus its parameters. HalfLifeDays is only
// consulted for TimeDecay.
type ModelConfig struct {
	Model        Model
	HalfLifeDays float64
}

// Position-based split for paths of three or more touchpoints.
const (
	positionFirstShare  = 0.40
	positionLastShare   = 0.40
	positionMiddleShare = 0.20
)

// Calculate splits one conversion's credit across the path's touchpoints
// according to the configured model. Credit fractions always sum to 1.0
// within floating-point tolerance.
//
// Convention: the terminal conversion event counts as the final touchpoint
// when it carries channel data of its own; otherwise it is only the path
// terminator and credit is split across the preceding touchpoints. A path
// consisting of just the conversion credits the conversion itself.
func Calculate(path domain.ConversionPath, cfg ModelConfig) (domain.AttributionResult, error) {
	if len(path.Events) == 0 {
		return domain.AttributionResult{}, ErrEmptyPath
	}
	if cfg.Model == TimeDecay && cfg.HalfLifeDays <= 0 {
		return domain.AttributionResult{}, ErrInvalidHalfLife
	}

	n := len(path.Events)
	conversion := path.Conversion()
	if n > 1 && !conversion.HasChannel() {
		n--
	}

	credits := make([]float64, n)
	switch cfg.Model {
	case FirstTouch:
		credits[0] = 1.0
	case LastTouch:
		credits[n-1] = 1.0
	case Linear:
		for i := range credits {
			credits[i] = 1.0 / float64(n)
		}
	case TimeDecay:
		timeDecayCredits(path.Events[:n], conversion, cfg.HalfLifeDays, credits)
	case PositionBased:
		positionBasedCredits(credits)
	default:
		return domain.AttributionResult{}, fmt.Errorf("%w: %v", ErrUnknownModel, cfg.Model)
	}

	return domain.AttributionResult{
		Credits:       credits,
		PathLength:    n,
		DaysToConvert: path.DaysToConvert,
	}, nil
}

// timeDecayCredits weights each touchpoint by 2^(-d/halfLife) where d is
// its age in days at conversion time, then normalizes so the weights sum
// to 1.0.
func timeDecayCredits(events []domain.TouchpointEvent, conversion domain.TouchpointEvent, halfLifeDays float64, credits []float64) {
	var total float64
	for i, e := range events {
		d := conversion.OccurredAt.Sub(e.OccurredAt).Hours() / hoursPerDay
		credits[i] = math.Exp2(-d / halfLifeDays)
		total += credits[i]
	}
	for i := range credits {
		credits[i] /= total
	}
}

func positionBasedCredits(credits []float64) {
	switch n := len(credits); n {
	case 1:
		credits[0] = 1.0
	case 2:
		credits[0], credits[1] = 0.5, 0.5
	default:
		credits[0] = positionFirstShare
		credits[n-1] = positionLastShare
		middle := positionMiddleShare / float64(n-2)
		for i := 1; i < n-1; i++ {
			credits[i] = middle
		}
	}
}
