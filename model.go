package growthcast

import "growthcast/forecast"

// Model is the serializeable representation of a fit Predictor composing of
// the predictor options, the series model, and the uncertainty model. This
// can be used to initialize a new Predictor for immediate predictions
// skipping the training step.
type Model struct {
	Options  *Options       `json:"options"`
	Series   forecast.Model `json:"series_model"`
	Residual forecast.Model `json:"residual_model"`
}
