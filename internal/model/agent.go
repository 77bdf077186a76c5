package model

import "time"

// Agent is an insurance agent preparing for a licensing exam.
type Agent struct {
	ID           int       `json:"id"`
	EmpID        string    `json:"emp_id"`
	Name         string    `json:"name"`
	Department   string    `json:"department,omitempty"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for agent and admin login.
type LoginRequest struct {
	EmpID    string `json:"emp_id" binding:"required,min=1,max=32"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}
