package domain

// Category is a user-defined transaction label. Transactions reference a
// category by its name, not its id: deleting a category leaves historical
// transactions carrying the old name untouched.
type Category struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Validate checks a category input before it is written.
func (in *CategoryInput) Validate() error {
	if in.Name == "" {
		return &ErrValidation{Field: "name", Message: "required"}
	}
	if in.Type != TypeIncome && in.Type != TypeExpense {
		return &ErrValidation{Field: "type", Message: "must be income or expense"}
	}
	return nil
}

// CategorySet groups a user's category names by type, ready for the
// client's type-dependent dropdowns.
type CategorySet struct {
	Expense []string `json:"expense"`
	Income  []string `json:"income"`
}
