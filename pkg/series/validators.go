package series

type ListSeriesQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type UpdateSeriesPayload struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	NameDE *string `json:"name_de,omitempty" validate:"omitempty,max=200"`
	NameEN *string `json:"name_en,omitempty" validate:"omitempty,max=200"`
	NameFR *string `json:"name_fr,omitempty" validate:"omitempty,max=200"`
	NameIT *string `json:"name_it,omitempty" validate:"omitempty,max=200"`
	NameES *string `json:"name_es,omitempty" validate:"omitempty,max=200"`
	Link   *string `json:"link,omitempty" validate:"omitempty,url"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
}
