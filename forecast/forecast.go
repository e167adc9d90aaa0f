// Package forecast fits a single decomposable linear model to a cumulative
// membership series. The series decomposes into an intercept, a polynomial
// growth backbone, trend changepoints, seasonal join patterns, and labeled
// event windows.
package forecast

import (
	"errors"
	"fmt"
	"time"

	"growthcast/feature"
	"growthcast/membership"
	"growthcast/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUninitializedForecast    = errors.New("uninitialized forecast")
	ErrInsufficientTrainingData = errors.New("insufficient training data after removing NaNs")
	ErrNoModelCoefficients      = errors.New("no model coefficients from fit")
	ErrUntrainedForecast        = errors.New("forecast has not been trained yet")
)

// Forecast represents a single forecast model of a cumulative membership
// series. This is a linear model solved with coordinate descent or QR
// factorization depending on the requested regularization.
type Forecast struct {
	opt    *Options
	scores *Scores // score calculations after training

	fLabels *feature.Labels

	trainStartTime time.Time
	trainEndTime   time.Time

	residual        []float64
	trainComponents Components

	coef      []float64
	intercept float64
	trained   bool
}

// New creates a new forecast instance with the given options. If none are
// provided a default is used.
func New(opt *Options) (*Forecast, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &Forecast{opt: opt}, nil
}

// NewFromModel creates a new forecast instance given a forecast Model. This
// instance can be used for inference immediately and does not need to be
// trained again.
func NewFromModel(model Model) (*Forecast, error) {
	if model.Options == nil {
		return nil, ErrUninitializedForecast
	}
	fLabels, err := model.Weights.FeatureLabels()
	if err != nil {
		return nil, err
	}

	f := &Forecast{
		opt:            model.Options,
		fLabels:        fLabels,
		trainStartTime: model.TrainStartTime,
		trainEndTime:   model.TrainEndTime,
		intercept:      model.Weights.Intercept,
		coef:           model.Weights.Coefficients(),
		scores:         model.Scores,
		trained:        true,
	}
	return f, nil
}

func (f *Forecast) generateFeatures(t []time.Time) (feature.Set, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	feat := generateGrowthFeatures(t, f.opt, f.trainStartTime, f.trainEndTime)

	tFeat := generateTimeFeatures(t, f.opt)
	seasFeat, err := generateFourierFeatures(tFeat, f.opt)
	if err != nil {
		return nil, err
	}

	// do not include weekly fourier features if the training range is less
	// than a week, nor yearly if less than a year
	trainSpan := f.trainEndTime.Sub(f.trainStartTime)
	for label, sf := range seasFeat {
		name, _ := sf.F.Get("name")
		if name == "dow" && trainSpan < 7*24*time.Hour {
			delete(seasFeat, label)
		}
		if name == "doy" && trainSpan < time.Duration(daysPerYear*24)*time.Hour {
			delete(seasFeat, label)
		}
	}
	feat.Update(seasFeat)

	if f.opt.ChangepointOptions.Auto && !f.trained {
		if f.opt.ChangepointOptions.AutoNumChangepoints <= 0 {
			f.opt.ChangepointOptions.AutoNumChangepoints = DefaultAutoNumChangepoints
		}
		f.opt.ChangepointOptions.Changepoints = generateAutoChangepoints(t, f.opt.ChangepointOptions.AutoNumChangepoints)
	}
	feat.Update(generateChangepointFeatures(t, f.opt.ChangepointOptions.Changepoints, f.trainEndTime))

	feat.Update(generateEventFeatures(t, f.opt.EventOptions.Events))

	return feat, nil
}

// Fit takes the input training series and fits the forecast model for the
// growth backbone, changepoints, seasonal components, events, and intercept
func (f *Forecast) Fit(t []time.Time, y []float64) error {
	if f == nil {
		return ErrUninitializedForecast
	}

	trainingData, err := membership.NewSeries(t, y)
	if err != nil {
		return err
	}

	// remove any NaNs from the training set
	training := trainingData.DropNan()
	if training.Len() <= 1 {
		return ErrInsufficientTrainingData
	}

	f.trainStartTime = training.T[0]
	f.trainEndTime = training.T[len(training.T)-1]

	x, err := f.generateFeatures(training.T)
	if err != nil {
		return err
	}

	// drop features with no support in the training window, e.g. holiday
	// events falling past the training end, so the solvers never see an all
	// zero column
	x.PruneZeroed()
	f.fLabels = x.Labels()

	features := x.Matrix(false)
	observations := ObservationMatrix(training.Y)

	model, err := f.newModel()
	if err != nil {
		return err
	}
	if err := model.Fit(features, observations); err != nil {
		return err
	}
	f.intercept = model.Intercept()
	f.coef = model.Coef()
	f.trained = true

	// predict against the input training set including NaNs to track the
	// residual and fit components
	predicted, comp, err := f.Predict(trainingData.T)
	if err != nil {
		return err
	}
	f.trainComponents = comp

	scores, err := NewScores(predicted, trainingData.Y)
	if err != nil {
		return err
	}
	f.scores = scores

	residual := make([]float64, len(trainingData.T))
	floats.Add(residual, predicted)
	floats.Sub(residual, trainingData.Y)
	f.residual = residual

	return nil
}

// newModel picks the regression implementation from the regularization
// options. No regularization solves directly with OLS, a single lambda runs
// one coordinate descent, and a lambda grid runs parallel fits keeping the
// best score.
func (f *Forecast) newModel() (models.Model, error) {
	lambdas := f.opt.Regularization
	switch {
	case len(lambdas) == 0 || (len(lambdas) == 1 && lambdas[0] == 0.0):
		return models.NewOLSRegression(nil)
	case len(lambdas) == 1:
		opt := models.NewDefaultLassoOptions()
		opt.Lambda = lambdas[0]
		return models.NewLassoRegression(opt)
	default:
		opt := models.NewDefaultLassoAutoOptions()
		opt.Lambdas = lambdas
		return models.NewLassoAutoRegression(opt)
	}
}

// Predict takes a slice of times in any order and produces the predicted
// value for those times given a pre-trained model.
func (f *Forecast) Predict(t []time.Time) ([]float64, Components, error) {
	if f == nil {
		return nil, Components{}, ErrUninitializedForecast
	}
	if !f.trained {
		return nil, Components{}, ErrUntrainedForecast
	}

	x, err := f.generateFeatures(t)
	if err != nil {
		return nil, Components{}, err
	}

	trendFeatureSet := make(feature.Set)
	seasonalityFeatureSet := make(feature.Set)
	eventFeatureSet := make(feature.Set)
	for label, feat := range x {
		switch feat.F.Type() {
		case feature.FeatureTypeGrowth, feature.FeatureTypeChangepoint:
			trendFeatureSet[label] = feat
		case feature.FeatureTypeSeasonality:
			seasonalityFeatureSet[label] = feat
		case feature.FeatureTypeEvent:
			eventFeatureSet[label] = feat
		}
	}

	comp := Components{
		Trend:       f.runInference(trendFeatureSet, true),
		Seasonality: f.runInference(seasonalityFeatureSet, false),
		Event:       f.runInference(eventFeatureSet, false),
	}

	res := f.runInference(x, true)
	return res, comp, nil
}

func (f *Forecast) runInference(x feature.Set, withIntercept bool) []float64 {
	if f == nil || len(x) == 0 {
		return nil
	}

	xLabels := x.Labels()

	n := xLabels.Len()
	if withIntercept {
		n += 1
	}

	xWeights := make([]float64, 0, n)
	if withIntercept {
		xWeights = append(xWeights, f.intercept)
	}

	for _, xFeat := range xLabels.Labels() {
		if wIdx, exists := f.fLabels.Index(xFeat); exists {
			xWeights = append(xWeights, f.coef[wIdx])
		} else {
			xWeights = append(xWeights, 0.0)
		}
	}

	wMx := mat.NewDense(1, n, xWeights)
	featMx := x.Matrix(withIntercept).T()

	var resMx mat.Dense
	resMx.Mul(wMx, featMx)

	return mat.Row(nil, 0, &resMx)
}

// FeatureLabels returns the slice of feature labels in the order of the
// coefficients
func (f *Forecast) FeatureLabels() []feature.Feature {
	if f == nil || f.fLabels == nil {
		return nil
	}
	return f.fLabels.Labels()
}

// Coefficients returns a forecast model map of coefficients keyed by the
// string representation of each feature label
func (f *Forecast) Coefficients() (map[string]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	labels := f.fLabels.Labels()
	if len(labels) == 0 || len(f.coef) == 0 {
		return nil, ErrNoModelCoefficients
	}
	coef := make(map[string]float64)
	for i := 0; i < len(f.coef); i++ {
		coef[labels[i].String()] = f.coef[i]
	}
	return coef, nil
}

// Intercept returns the intercept of the forecast model
func (f *Forecast) Intercept() float64 {
	if f == nil {
		return 0
	}
	return f.intercept
}

// TrainStartTime returns the start of the training window
func (f *Forecast) TrainStartTime() time.Time {
	if f == nil {
		return time.Time{}
	}
	return f.trainStartTime
}

// TrainEndTime returns the end of the training window
func (f *Forecast) TrainEndTime() time.Time {
	if f == nil {
		return time.Time{}
	}
	return f.trainEndTime
}

// Model returns the serializeable format of the forecast model composing of
// the options, intercept, coefficients with their feature labels, and the
// model fit scores
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}

	fws := make([]FeatureWeight, 0, len(f.coef))
	labels := f.fLabels.Labels()
	for i, c := range f.coef {
		fws = append(fws, NewFeatureWeight(labels[i], c))
	}
	m := Model{
		TrainStartTime: f.trainStartTime,
		TrainEndTime:   f.trainEndTime,
		Options:        f.opt,
		Weights: Weights{
			Intercept: f.intercept,
			Coef:      fws,
		},
		Scores: f.scores,
	}
	return m, nil
}

// ModelEq returns a string representation of the model linear equation in
// the format of y ~ b + m1x1 + m2x2 + ...
func (f *Forecast) ModelEq() (string, error) {
	if f == nil {
		return "", ErrUninitializedForecast
	}

	eq := "y ~ "

	coef, err := f.Coefficients()
	if err != nil {
		return "", err
	}

	eq += fmt.Sprintf("%.2f", f.Intercept())
	labels := f.fLabels.Labels()
	for i := 0; i < len(f.coef); i++ {
		w := coef[labels[i].String()]
		if w == 0 {
			continue
		}
		eq += fmt.Sprintf("+%.2f*%s", w, labels[i])
	}
	return eq, nil
}

// Scores returns the fit scores for evaluating how well the resulting model
// fit the training data
func (f *Forecast) Scores() Scores {
	if f == nil || f.scores == nil {
		return Scores{}
	}
	return *f.scores
}

// Residuals returns a slice of values representing the difference between
// the fit and the training data
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}

// TrendComponent represents the growth backbone along with any changepoint
// shifts after fitting
func (f *Forecast) TrendComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Trend))
	copy(res, f.trainComponents.Trend)
	return res
}

// SeasonalityComponent represents the periodic join pattern component after
// fitting
func (f *Forecast) SeasonalityComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Seasonality))
	copy(res, f.trainComponents.Seasonality)
	return res
}

// EventComponent represents the labeled event window component after fitting
func (f *Forecast) EventComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Event))
	copy(res, f.trainComponents.Event)
	return res
}
