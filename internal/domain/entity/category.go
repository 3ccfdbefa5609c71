package entity

// Category classifies a place.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryNature        Category = "Nature"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryOther         Category = "Other"
)

var categories = []Category{
	CategoryFood,
	CategoryShopping,
	CategoryEntertainment,
	CategoryNature,
	CategoryHealth,
	CategoryEducation,
	CategoryOther,
}

// Categories returns the fixed set of place categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)

	return out
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}

	return false
}

func (c Category) String() string {
	return string(c)
}
