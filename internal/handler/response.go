package handler

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type RootResponse struct {
	Message string `json:"message"`
}
