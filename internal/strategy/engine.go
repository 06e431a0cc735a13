package strategy

import (
	"errors"

	"IndexNotifier/internal/model"

	"github.com/guregu/null/v5"
)

// ErrNoDistance is returned when asked to classify an absent distance.
var ErrNoDistance = errors.New("distance not available")

// Bands maps a distance to its status, checked top-down: the first band whose
// floor the value exceeds wins.
var Bands = []struct {
	Above  float64
	Status model.Status
}{
	{0.025, model.Status{Emoji: "🟩", Color: "#4CAE2F", Action: model.ActionBuy}},
	{0, model.Status{Emoji: "🟨", Color: "#FFCC00", Action: model.ActionBuy}},
}

// DefaultStatus covers every value <= 0.
var DefaultStatus = model.Status{Emoji: "🟥", Color: "#FF0000", Action: model.ActionSell}

// ClassifyValue maps any float to a status. NaN falls through to DefaultStatus.
func ClassifyValue(distance float64) model.Status {
	for _, b := range Bands {
		if distance > b.Above {
			return b.Status
		}
	}
	return DefaultStatus
}

// Classify maps a possibly absent distance to a status.
func Classify(distance null.Float) (model.Status, error) {
	if !distance.Valid {
		return model.Status{}, ErrNoDistance
	}
	return ClassifyValue(distance.Float64), nil
}
