package lending

type BorrowReq struct {
	CopyID int64 `json:"copy_id" validate:"required,gt=0"`
}

type ExtendReq struct {
	Days int `json:"days" validate:"required,gt=0"`
}
