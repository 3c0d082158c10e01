package model

import "time"

// Role separates students from administrators.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User represents an account, student or admin.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	TargetExam   ExamType  `json:"target_exam,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for student self-registration.
type RegisterRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Password   string `json:"password" binding:"required,min=6,max=128"`
	TargetExam string `json:"target_exam" binding:"omitempty,oneof=JEE_MAIN JEE_ADVANCED NEET"`
}

// CreateUserRequest is the payload for admin-created accounts.
type CreateUserRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Password   string `json:"password" binding:"required,min=6,max=128"`
	Role       string `json:"role" binding:"required,oneof=student admin"`
	TargetExam string `json:"target_exam" binding:"omitempty,oneof=JEE_MAIN JEE_ADVANCED NEET"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdateProfileRequest is the payload for updating the caller's profile.
type UpdateProfileRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	TargetExam string `json:"target_exam" binding:"omitempty,oneof=JEE_MAIN JEE_ADVANCED NEET"`
}

// ChangePasswordRequest is the payload for changing the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required,min=6,max=128"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=128"`
}
