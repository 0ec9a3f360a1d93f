package library

type ListBooksQuery struct {
	Limit    int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset   int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	WorkID   *int    `query:"work_id" json:"work_id,omitempty" validate:"omitempty,min=1"`
	Language *string `query:"language" json:"language,omitempty" validate:"omitempty,language"`
	Missing  *bool   `query:"missing" json:"missing,omitempty"`
	Search   *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

// UpdateBookPayload carries the fields a user may edit. Edits have
// authority over every scanned source.
type UpdateBookPayload struct {
	Title        *string  `json:"title,omitempty" validate:"omitempty,max=300"`
	Authors      []string `json:"authors,omitempty" validate:"omitempty,dive,max=200"`
	SeriesName   *string  `json:"series_name,omitempty" validate:"omitempty,max=200"`
	SeriesNumber *float64 `json:"series_number,omitempty" validate:"omitempty,min=0"`
	Year         *string  `json:"year,omitempty" validate:"omitempty,year"`
	Language     *string  `json:"language,omitempty" validate:"omitempty,language"`
	Genre        *string  `json:"genre,omitempty" validate:"omitempty,max=200"`
	Keywords     []string `json:"keywords,omitempty" validate:"omitempty,dive,max=100"`
	Stars        *int     `json:"stars,omitempty" validate:"omitempty,min=0,max=10"`
	IsRead       *bool    `json:"is_read,omitempty"`
	Notes        *string  `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Description  *string  `json:"description,omitempty" validate:"omitempty,max=20000"`
}
