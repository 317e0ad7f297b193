package models

// Category groups text materials. Titles are unique.
type Category struct {
	ID    int64  `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}

// CategoryRequest is the payload for creating or renaming a category
type CategoryRequest struct {
	Title string `json:"title" validate:"required,min=1,max=50"`
}
