package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterUserRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type UserResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
