package book

type SubmitBookReq struct {
	Title         string  `json:"title" validate:"required"`
	Author        string  `json:"author" validate:"required"`
	Description   string  `json:"description" validate:"required"`
	BroadCategory string  `json:"broad_category" validate:"required"`
	ImageURL      *string `json:"image_url,omitempty" validate:"omitempty,url"`
	ISBN13        *int64  `json:"isbn13,omitempty" validate:"omitempty,gt=0"`
	PublishedYear *int    `json:"published_year,omitempty" validate:"omitempty,gt=0"`
	NumPages      *int    `json:"num_pages,omitempty" validate:"omitempty,gt=0"`
}
