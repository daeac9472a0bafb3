package menu

// Speciality classes splitting the menu between the kitchen and the bar.
const (
	ClassFood   = 1
	ClassDrinks = 2
)

// MenuItem is a dish or drink as the backend reports it.
type MenuItem struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Ingredients []string `json:"ingredients"`
	Category    string   `json:"category"`
}

// Speciality is a menu category.
type Speciality struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ItemInput carries the writable fields of a menu item for admin CRUD.
type ItemInput struct {
	Name         string
	Description  string
	Price        float64
	SpecialityID int
	Ingredients  string
}

// Section groups items under one category heading for display.
type Section struct {
	Title string     `json:"title"`
	Items []MenuItem `json:"items"`
}

// GroupByCategory splits a flat item list into per-category sections,
// preserving first-seen category order.
func GroupByCategory(items []MenuItem) []Section {
	index := make(map[string]int)
	sections := []Section{}

	for _, item := range items {
		category := item.Category
		if category == "" {
			category = "Altele"
		}
		i, ok := index[category]
		if !ok {
			i = len(sections)
			index[category] = i
			sections = append(sections, Section{Title: category})
		}
		sections[i].Items = append(sections[i].Items, item)
	}

	return sections
}
