package dto

// AIQueryRequest is one question for the AI assistant.
type AIQueryRequest struct {
	Query   string `json:"query" validate:"required,min=1"`
	Context string `json:"context"`
	Model   string `json:"model"`
}

// AIQueryResponse carries the assistant's answer.
type AIQueryResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}
