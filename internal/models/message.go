package models

// Message is a single chat message sent to the upstream completion API.
type Message struct {
	Role    Role
	Content string
}

// Role represents the role of a message participant.
type Role string

const (
	// RoleSystem carries the persona prompt.
	RoleSystem Role = "system"
	// RoleUser carries the question asked by the user.
	RoleUser Role = "user"
)

// Conversation returns the ordered system/user pair for a question.
func Conversation(persona, question string) []Message {
	return []Message{
		{Role: RoleSystem, Content: persona},
		{Role: RoleUser, Content: question},
	}
}
