package book

type CreateBookReq struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	ISBN     string `json:"isbn"`
	Category string `json:"category"`
}

type AddCopiesReq struct {
	Count int `json:"count" validate:"required,gt=0,lte=100"`
}
