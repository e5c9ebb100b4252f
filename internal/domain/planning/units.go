package planning

import "fmt"

// MeasurementUnit represents units of measurement on recipe lines, pantry
// items and shopping lines.
type MeasurementUnit string

const (
	// Volume units
	UnitMilliliter MeasurementUnit = "ml"
	UnitLiter      MeasurementUnit = "l"
	UnitTeaspoon   MeasurementUnit = "tsp"
	UnitTablespoon MeasurementUnit = "tbsp"
	UnitCup        MeasurementUnit = "cup"

	// Weight units
	UnitGram     MeasurementUnit = "g"
	UnitKilogram MeasurementUnit = "kg"
	UnitOunce    MeasurementUnit = "oz"
	UnitPound    MeasurementUnit = "lb"

	// Count units
	UnitPiece MeasurementUnit = "piece"
	UnitBunch MeasurementUnit = "bunch"
)

// unitFamily groups units that convert into one another.
type unitFamily int

const (
	familyUnknown unitFamily = iota
	familyVolume
	familyWeight
	familyCount
)

// toCanonical maps every unit to its family and the factor into the family's
// canonical unit (ml, g, piece).
var toCanonical = map[MeasurementUnit]struct {
	family unitFamily
	factor float64
}{
	UnitMilliliter: {familyVolume, 1},
	UnitLiter:      {familyVolume, 1000},
	UnitTeaspoon:   {familyVolume, 4.93},
	UnitTablespoon: {familyVolume, 14.79},
	UnitCup:        {familyVolume, 236.59},

	UnitGram:     {familyWeight, 1},
	UnitKilogram: {familyWeight, 1000},
	UnitOunce:    {familyWeight, 28.35},
	UnitPound:    {familyWeight, 453.59},

	UnitPiece: {familyCount, 1},
	UnitBunch: {familyCount, 1},
}

// UnitConversionError reports an ingredient appearing with incompatible units
// across recipes or pantry. The affected aggregation fails explicitly; totals
// are never silently rounded.
type UnitConversionError struct {
	IngredientSlug string
	From           MeasurementUnit
	To             MeasurementUnit
}

func (e *UnitConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q from %s to %s", e.IngredientSlug, e.From, e.To)
}

// ConvertQuantity converts a quantity between units of the same family.
func ConvertQuantity(slug string, quantity float64, from, to MeasurementUnit) (float64, error) {
	if from == to {
		return quantity, nil
	}
	src, ok := toCanonical[from]
	if !ok {
		return 0, &UnitConversionError{IngredientSlug: slug, From: from, To: to}
	}
	dst, ok := toCanonical[to]
	if !ok || src.family != dst.family {
		return 0, &UnitConversionError{IngredientSlug: slug, From: from, To: to}
	}
	return quantity * src.factor / dst.factor, nil
}
