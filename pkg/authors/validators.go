package authors

type ListAuthorsQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	WorkID *int    `query:"work_id" json:"work_id,omitempty" validate:"omitempty,min=1"`
	Search *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type UpdateAuthorPayload struct {
	Firstname  *string `json:"firstname,omitempty" validate:"omitempty,max=200"`
	Lastname   *string `json:"lastname,omitempty" validate:"omitempty,min=1,max=200"`
	Language   *string `json:"language,omitempty" validate:"omitempty,language"`
	Country    *string `json:"country,omitempty" validate:"omitempty,max=100"`
	BirthYear  *int    `json:"birth_year,omitempty" validate:"omitempty,min=0,max=3000"`
	BirthPlace *string `json:"birth_place,omitempty" validate:"omitempty,max=200"`
	BirthDate  *string `json:"birth_date,omitempty" validate:"omitempty,max=50"`
	Vita       *string `json:"vita,omitempty" validate:"omitempty,max=20000"`
	IsFavorite *bool   `json:"is_favorite,omitempty"`
}

type MergeAuthorsPayload struct {
	// SourceID is the author that is merged away.
	SourceID int `json:"source_id" validate:"required,min=1"`
}

type SplitAuthorPayload struct {
	Firstname string `json:"firstname" mod:"trim" validate:"required,max=200"`
	WorkIDs   []int  `json:"work_ids" validate:"required,min=1,dive,min=1"`
}
