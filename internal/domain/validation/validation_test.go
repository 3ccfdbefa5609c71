package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Category string  `validate:"required,place_category"`
	Lat      float64 `validate:"finite,min=-90,max=90"`
}

func TestNew_PlaceRules(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		input   sample
		wantErr bool
	}{
		{name: "valid", input: sample{Category: "Nature", Lat: 32.1}},
		{name: "zero latitude is allowed", input: sample{Category: "Food", Lat: 0}},
		{name: "unknown category", input: sample{Category: "Museum", Lat: 1}, wantErr: true},
		{name: "lowercase category", input: sample{Category: "nature", Lat: 1}, wantErr: true},
		{name: "nan latitude", input: sample{Category: "Other", Lat: math.NaN()}, wantErr: true},
		{name: "latitude out of range", input: sample{Category: "Other", Lat: 91}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
