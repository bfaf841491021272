package models

// Category groups habits; Color is a symbolic name such as "blue"
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
