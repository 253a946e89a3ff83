package enum

// MenuCategory classifies a menu item
type MenuCategory string

const (
	MenuCategoryAppetizer MenuCategory = "appetizer"
	MenuCategoryMain      MenuCategory = "main"
	MenuCategoryDessert   MenuCategory = "dessert"
	MenuCategoryBeverage  MenuCategory = "beverage"
)

func (c MenuCategory) String() string {
	return string(c)
}

// Valid reports whether c is a known menu category
func (c MenuCategory) Valid() bool {
	switch c {
	case MenuCategoryAppetizer, MenuCategoryMain, MenuCategoryDessert, MenuCategoryBeverage:
		return true
	}
	return false
}
