package works

type ListWorksQuery struct {
	Limit    int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset   int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	SeriesID *int    `query:"series_id" json:"series_id,omitempty" validate:"omitempty,min=1"`
	AuthorID *int    `query:"author_id" json:"author_id,omitempty" validate:"omitempty,min=1"`
	Search   *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type UpdateWorkPayload struct {
	TitleDE     *string `json:"title_de,omitempty" validate:"omitempty,max=300"`
	TitleEN     *string `json:"title_en,omitempty" validate:"omitempty,max=300"`
	TitleFR     *string `json:"title_fr,omitempty" validate:"omitempty,max=300"`
	TitleIT     *string `json:"title_it,omitempty" validate:"omitempty,max=300"`
	TitleES     *string `json:"title_es,omitempty" validate:"omitempty,max=300"`
	Genre       *string `json:"genre,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=20000"`
}
