package model

import "github.com/google/uuid"

// ChatMessage is one turn in a tutoring conversation.
type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required,min=1,max=8000"`
}

// TutorChatRequest is the payload for a tutoring chat turn.
type TutorChatRequest struct {
	Messages []ChatMessage `json:"messages" binding:"required,min=1,max=50,dive"`
	Subject  string        `json:"subject" binding:"omitempty,max=100"`
}

// TutorChatResponse carries the tutor's reply.
type TutorChatResponse struct {
	Reply string `json:"reply"`
	Model string `json:"model"`
}

// QuestionExplanation is a step-by-step explanation for one bank question.
type QuestionExplanation struct {
	QuestionID  uuid.UUID `json:"question_id"`
	Explanation string    `json:"explanation"`
	Model       string    `json:"model"`
	Cached      bool      `json:"cached"`
}
