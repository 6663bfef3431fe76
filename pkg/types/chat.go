package types

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ServerErrorMessage is the fixed error text returned for every failed completion.
const ServerErrorMessage = "Erreur serveur"

type ChatResponse struct {
	Reply string `json:"reply"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}
