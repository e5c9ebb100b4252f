package planning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealsmith/v1/internal/domain/planning"
)

func TestConvertQuantity(t *testing.T) {
	tests := []struct {
		name string
		qty  float64
		from planning.MeasurementUnit
		to   planning.MeasurementUnit
		want float64
	}{
		{"SameUnit", 250, planning.UnitGram, planning.UnitGram, 250},
		{"KilogramToGram", 1.5, planning.UnitKilogram, planning.UnitGram, 1500},
		{"GramToKilogram", 500, planning.UnitGram, planning.UnitKilogram, 0.5},
		{"LiterToMilliliter", 2, planning.UnitLiter, planning.UnitMilliliter, 2000},
		{"CupToMilliliter", 1, planning.UnitCup, planning.UnitMilliliter, 236.59},
		{"TablespoonToTeaspoon", 1, planning.UnitTablespoon, planning.UnitTeaspoon, 14.79 / 4.93},
		{"PoundToOunce", 1, planning.UnitPound, planning.UnitOunce, 453.59 / 28.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := planning.ConvertQuantity("x", tt.qty, tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestConvertQuantityIncompatible(t *testing.T) {
	tests := []struct {
		name string
		from planning.MeasurementUnit
		to   planning.MeasurementUnit
	}{
		{"WeightToVolume", planning.UnitGram, planning.UnitMilliliter},
		{"CountToWeight", planning.UnitPiece, planning.UnitGram},
		{"UnknownUnit", planning.MeasurementUnit("handful"), planning.UnitGram},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := planning.ConvertQuantity("honey", 1, tt.from, tt.to)

			var convErr *planning.UnitConversionError
			require.ErrorAs(t, err, &convErr)
			assert.Equal(t, "honey", convErr.IngredientSlug)
			assert.Equal(t, tt.from, convErr.From)
			assert.Equal(t, tt.to, convErr.To)
		})
	}
}
