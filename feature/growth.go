package feature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Growth represents a polynomial trend term of the normalized training time.
// Order 1 is the linear member growth, higher orders capture acceleration of
// the join rate.
type Growth struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

func NewGrowth(name string, order int) *Growth {
	return &Growth{name, order}
}

// String returns the string representation of the growth feature
func (g Growth) String() string {
	return fmt.Sprintf("growth_%s_%02d", g.Name, g.Order)
}

// Get returns the value of an arbitrary label along with whether the label
// exists
func (g Growth) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return g.Name, true
	case "order":
		return strconv.Itoa(g.Order), true
	}
	return "", false
}

// Type returns the type of this feature
func (g Growth) Type() FeatureType {
	return FeatureTypeGrowth
}

// Decode converts the feature into a map of label values
func (g Growth) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = g.Name
	res["order"] = strconv.Itoa(g.Order)
	return res
}

// UnmarshalJSON is the custom unmarshalling to convert a map[string]string
// to a growth feature
func (g *Growth) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name  string `json:"name"`
		Order string `json:"order"`
	}
	err := json.Unmarshal(data, &labelStr)
	if err != nil {
		return err
	}
	g.Name = labelStr.Name
	g.Order, err = strconv.Atoi(labelStr.Order)
	if err != nil {
		return err
	}
	return nil
}
