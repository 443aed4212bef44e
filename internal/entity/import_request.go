package entity

// ImportRequest is the transient input of one import operation.
type ImportRequest struct {
	URL   string `json:"url" validate:"required,url"`
	Force bool   `json:"force"` // bypasses the recently-imported window
}

// Page is the raw result of fetching a single URL.
type Page struct {
	URL         string
	Body        string
	ContentType string
	StatusCode  int
}
