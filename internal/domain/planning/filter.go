package planning

// ConstraintFilter reduces the recipe catalog to the subset admissible for a
// household. Only hard constraints are applied here: allergy tags, disliked
// ingredients and diet exclusions. Soft preferences are scored, never filtered.
type ConstraintFilter struct {
	allergies map[string]struct{}
	disliked  map[string]struct{}
	dietTags  []string
}

// NewConstraintFilter builds a filter from a preference snapshot.
func NewConstraintFilter(prefs Preferences) *ConstraintFilter {
	f := &ConstraintFilter{
		allergies: make(map[string]struct{}, len(prefs.AllergyTags)),
		disliked:  make(map[string]struct{}, len(prefs.DislikedIngredients)),
		dietTags:  prefs.DietTags,
	}
	for _, tag := range prefs.AllergyTags {
		f.allergies[tag] = struct{}{}
	}
	for _, slug := range prefs.DislikedIngredients {
		f.disliked[slug] = struct{}{}
	}
	return f
}

// Admissible reports whether a recipe violates no hard constraint: none of its
// ingredients carries an allergy tag or is disliked, and the recipe carries
// every household diet tag.
func (f *ConstraintFilter) Admissible(r Recipe) bool {
	for _, line := range r.Lines {
		if _, ok := f.disliked[line.IngredientSlug]; ok {
			return false
		}
		for _, tag := range line.IngredientTags {
			if _, ok := f.allergies[tag]; ok {
				return false
			}
		}
	}

	for _, diet := range f.dietTags {
		if !hasTag(r.Tags, diet) {
			return false
		}
	}

	return true
}

// Filter returns the admissible subset of the catalog. Order is preserved.
// An empty result is reported as ErrInsufficientCandidates rather than an
// empty plan later on.
func (f *ConstraintFilter) Filter(catalog []Recipe) ([]Recipe, error) {
	admissible := make([]Recipe, 0, len(catalog))
	for _, r := range catalog {
		if f.Admissible(r) {
			admissible = append(admissible, r)
		}
	}
	if len(admissible) == 0 {
		return nil, ErrInsufficientCandidates
	}
	return admissible, nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}
