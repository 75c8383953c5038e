package entity

// Category categoría enumerada de producto (código de dos letras).
type Category string

// Categorías soportadas.
const (
	CategoryElectronics Category = "EL"
	CategoryFashion     Category = "FA"
	CategoryHome        Category = "HO"
	CategoryToys        Category = "TO"
	CategorySports      Category = "SP"
)

// DefaultCategory se asigna cuando el producto se crea sin categoría.
const DefaultCategory = CategoryHome

var categoryLabels = map[Category]string{
	CategoryElectronics: "Electronics",
	CategoryFashion:     "Fashion",
	CategoryHome:        "Home",
	CategoryToys:        "Toys",
	CategorySports:      "Sports",
}

// Valid indica si la categoría pertenece al enumerado.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label devuelve el nombre legible de la categoría.
func (c Category) Label() string {
	return categoryLabels[c]
}
