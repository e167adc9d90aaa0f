package forecast

import (
	"errors"
	"math"
	"strconv"
	"time"

	"growthcast/event"
	"growthcast/feature"

	"gonum.org/v1/gonum/mat"
)

var ErrUnknownTimeFeature = errors.New("unknown time feature")

const (
	secondsPerDay = 86400.0
	daysPerWeek   = 7.0
	daysPerYear   = 365.25
)

// ObservationMatrix converts the observed counts into a single column matrix
// for the model fit.
func ObservationMatrix(y []float64) *mat.Dense {
	return mat.NewDense(len(y), 1, y)
}

// normalizeTime maps times onto the unit interval of the training window.
// Times past the training end extrapolate beyond 1.0.
func normalizeTime(t []time.Time, trainStart, trainEnd time.Time) []float64 {
	span := trainEnd.Sub(trainStart).Seconds()
	u := make([]float64, len(t))
	for i, tPnt := range t {
		u[i] = tPnt.Sub(trainStart).Seconds() / span
	}
	return u
}

// generateGrowthFeatures creates the polynomial trend backbone from the
// normalized training time.
func generateGrowthFeatures(t []time.Time, opt *Options, trainStart, trainEnd time.Time) feature.Set {
	x := make(feature.Set)
	if opt.GrowthOrder <= 0 {
		return x
	}

	u := normalizeTime(t, trainStart, trainEnd)
	for order := 1; order <= opt.GrowthOrder; order++ {
		data := make([]float64, len(u))
		for i, ui := range u {
			data[i] = math.Pow(ui, float64(order))
		}
		feat := feature.NewGrowth("poly", order)
		x[feat.String()] = feature.Data{
			F:    feat,
			Data: data,
		}
	}
	return x
}

func generateTimeFeatures(t []time.Time, opt *Options) feature.Set {
	tFeat := make(feature.Set)
	if opt.WeeklyOrders > 0 {
		dow := make([]float64, len(t))
		for i, tPnt := range t {
			day := float64(tPnt.Unix()) / secondsPerDay
			dow[i] = math.Mod(day, daysPerWeek)
		}
		feat := feature.NewTime("dow")
		tFeat[feat.String()] = feature.Data{
			F:    feat,
			Data: dow,
		}
	}
	if opt.YearlyOrders > 0 {
		doy := make([]float64, len(t))
		for i, tPnt := range t {
			day := float64(tPnt.Unix()) / secondsPerDay
			doy[i] = math.Mod(day, daysPerYear)
		}
		feat := feature.NewTime("doy")
		tFeat[feat.String()] = feature.Data{
			F:    feat,
			Data: doy,
		}
	}
	return tFeat
}

func generateFourierFeatures(tFeat feature.Set, opt *Options) (feature.Set, error) {
	x := make(feature.Set)
	if opt.WeeklyOrders > 0 {
		orders := make([]int, 0, opt.WeeklyOrders)
		for i := 1; i <= opt.WeeklyOrders; i++ {
			orders = append(orders, i)
		}
		weeklyFeatures, err := generateFourierOrders(tFeat, "dow", orders, daysPerWeek)
		if err != nil {
			return nil, err
		}
		x.Update(weeklyFeatures)
	}

	if opt.YearlyOrders > 0 {
		orders := make([]int, 0, opt.YearlyOrders)
		for i := 1; i <= opt.YearlyOrders; i++ {
			orders = append(orders, i)
		}
		yearlyFeatures, err := generateFourierOrders(tFeat, "doy", orders, daysPerYear)
		if err != nil {
			return nil, err
		}
		x.Update(yearlyFeatures)
	}
	return x, nil
}

func generateFourierOrders(tFeatures feature.Set, col string, orders []int, period float64) (feature.Set, error) {
	tFeat, exists := tFeatures[feature.NewTime(col).String()]
	if !exists {
		return nil, ErrUnknownTimeFeature
	}

	x := make(feature.Set)
	for _, order := range orders {
		sinFeat, cosFeat := generateFourierComponent(tFeat.Data, order, period)
		sinFeatCol := feature.NewSeasonality(col, feature.FourierCompSin, order)
		cosFeatCol := feature.NewSeasonality(col, feature.FourierCompCos, order)
		x[sinFeatCol.String()] = feature.Data{
			F:    sinFeatCol,
			Data: sinFeat,
		}
		x[cosFeatCol.String()] = feature.Data{
			F:    cosFeatCol,
			Data: cosFeat,
		}
	}
	return x, nil
}

func generateFourierComponent(timeFeature []float64, order int, period float64) ([]float64, []float64) {
	omega := 2.0 * math.Pi * float64(order) / period
	sinFeat := make([]float64, len(timeFeature))
	cosFeat := make([]float64, len(timeFeature))
	for i, tFeat := range timeFeature {
		rad := omega * tFeat
		sinFeat[i] = math.Sin(rad)
		cosFeat[i] = math.Cos(rad)
	}
	return sinFeat, cosFeat
}

// generateAutoChangepoints spreads n changepoints evenly over the training
// window.
func generateAutoChangepoints(t []time.Time, n int) []Changepoint {
	var minTime, maxTime time.Time
	for _, tPnt := range t {
		if minTime.IsZero() || tPnt.Before(minTime) {
			minTime = tPnt
		}
		if maxTime.IsZero() || tPnt.After(maxTime) {
			maxTime = tPnt
		}
	}

	window := maxTime.Sub(minTime)
	changepointWinNs := window.Nanoseconds() / int64(n)
	chpts := make([]Changepoint, 0, n)

	for i := 0; i < n; i++ {
		chpntTime := minTime.Add(time.Duration(changepointWinNs * int64(i)))
		chpts = append(
			chpts,
			NewChangepoint("auto_"+strconv.Itoa(i), chpntTime),
		)
	}
	return chpts
}

// generateChangepointFeatures creates a bias and slope feature per
// changepoint. The slope is normalized against the span from the changepoint
// to the training end so it keeps growing linearly past the training window.
func generateChangepointFeatures(t []time.Time, chpts []Changepoint, trainEnd time.Time) feature.Set {
	chptFeatures := make([][]float64, len(chpts)*2)
	for i := 0; i < len(chpts)*2; i++ {
		chptFeatures[i] = make([]float64, len(t))
	}

	bias := 1.0
	for i := 0; i < len(t); i++ {
		for j := 0; j < len(chpts); j++ {
			if t[i].Equal(chpts[j].T) || t[i].After(chpts[j].T) {
				deltaT := trainEnd.Sub(chpts[j].T).Seconds()
				if deltaT <= 0 {
					continue
				}
				chptFeatures[j*2][i] = bias
				chptFeatures[j*2+1][i] = t[i].Sub(chpts[j].T).Seconds() / deltaT
			}
		}
	}

	feat := make(feature.Set)
	for i := 0; i < len(chpts); i++ {
		chpntName := strconv.Itoa(i)
		if chpts[i].Name != "" {
			chpntName = chpts[i].Name
		}
		chpntBias := feature.NewChangepoint(chpntName, feature.ChangepointCompBias)
		chpntSlope := feature.NewChangepoint(chpntName, feature.ChangepointCompSlope)

		feat[chpntBias.String()] = feature.Data{
			F:    chpntBias,
			Data: chptFeatures[i*2],
		}
		feat[chpntSlope.String()] = feature.Data{
			F:    chpntSlope,
			Data: chptFeatures[i*2+1],
		}
	}
	return feat
}

// generateEventFeatures creates a bias feature per valid event active inside
// its window.
func generateEventFeatures(t []time.Time, events []event.Event) feature.Set {
	feat := make(feature.Set)
	for _, ev := range events {
		if err := ev.Valid(); err != nil {
			continue
		}
		data := make([]float64, len(t))
		for i := 0; i < len(t); i++ {
			if (t[i].Equal(ev.Start) || t[i].After(ev.Start)) && t[i].Before(ev.End) {
				data[i] = 1.0
			}
		}
		f := feature.NewEvent(ev.Name)
		feat[f.String()] = feature.Data{
			F:    f,
			Data: data,
		}
	}
	return feat
}
