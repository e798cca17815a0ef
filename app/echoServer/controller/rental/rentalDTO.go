package rental

type RequestRentalReq struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
}

type ResolveExtensionReq struct {
	Approve bool `json:"approve"`
}
