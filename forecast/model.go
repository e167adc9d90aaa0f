package forecast

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"growthcast/feature"

	"github.com/goccy/go-json"
)

var ErrUnknownFeatureType = errors.New("unknown feature type")

// Model represents a serializeable format of a fit forecast storing the
// options, training window, fit scores, and coefficients
type Model struct {
	TrainStartTime time.Time `json:"train_start_time"`
	TrainEndTime   time.Time `json:"train_end_time"`
	Options        *Options  `json:"options"`
	Scores         *Scores   `json:"scores"`
	Weights        Weights   `json:"weights"`
}

// TablePrint writes a human readable representation of the model to the
// given writer.
func (m Model) TablePrint(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "training window: %s - %s\n", m.TrainStartTime.Format(time.DateOnly), m.TrainEndTime.Format(time.DateOnly)); err != nil {
		return err
	}
	if m.Scores != nil {
		if _, err := fmt.Fprintf(w, "scores: mape: %.3f  mse: %.3f  r2: %.3f\n", m.Scores.MAPE, m.Scores.MSE, m.Scores.R2); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "intercept: %.3f\n", m.Weights.Intercept); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "type\tlabels\tvalue\t\n"); err != nil {
		return err
	}
	for _, fw := range m.Weights.Coef {
		labelOut, err := json.Marshal(fw.Labels)
		if err != nil {
			return err
		}
		val := fmt.Sprintf("%.3f", fw.Value)
		if fw.Value == 0 {
			val = "..."
		}
		if _, err := fmt.Fprintf(tbl, "%d\t%s\t%s\t\n", fw.Type, string(labelOut), val); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// Weights stores the intercept and coefficients of the forecast model
type Weights struct {
	Intercept float64         `json:"intercept"`
	Coef      []FeatureWeight `json:"coefficients"`
}

// FeatureLabels returns all of the feature labels in the same order as the
// coefficients
func (w *Weights) FeatureLabels() (*feature.Labels, error) {
	labels := make([]feature.Feature, 0, len(w.Coef))
	for _, fw := range w.Coef {
		feat, err := fw.ToFeature()
		if err != nil {
			return nil, err
		}
		labels = append(labels, feat)
	}
	return feature.NewLabels(labels), nil
}

// Coefficients returns a slice copy of the coefficients ignoring the
// intercept.
func (w *Weights) Coefficients() []float64 {
	coef := make([]float64, 0, len(w.Coef))
	for _, fw := range w.Coef {
		coef = append(coef, fw.Value)
	}
	return coef
}

// FeatureWeight represents a feature described with a type e.g. changepoint,
// labels and the coefficient value
type FeatureWeight struct {
	Labels map[string]string   `json:"labels"`
	Type   feature.FeatureType `json:"type"`
	Value  float64             `json:"value"`
}

func NewFeatureWeight(f feature.Feature, val float64) FeatureWeight {
	return FeatureWeight{
		Labels: f.Decode(),
		Type:   f.Type(),
		Value:  val,
	}
}

// ToFeature transforms the Type and Labels into a feature type
func (fw *FeatureWeight) ToFeature() (feature.Feature, error) {
	if fw == nil {
		return nil, ErrUnknownFeatureType
	}

	bytes, err := json.Marshal(fw.Labels)
	if err != nil {
		return nil, err
	}

	var feat feature.Feature
	switch fw.Type {
	case feature.FeatureTypeGrowth:
		feat = new(feature.Growth)
	case feature.FeatureTypeChangepoint:
		feat = new(feature.Changepoint)
	case feature.FeatureTypeSeasonality:
		feat = new(feature.Seasonality)
	case feature.FeatureTypeEvent:
		feat = new(feature.Event)
	default:
		return nil, ErrUnknownFeatureType
	}
	if err := json.Unmarshal(bytes, feat); err != nil {
		return nil, err
	}
	return feat, nil
}
