package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePlanRequest struct {
	PlanDate         string `json:"plan_date"`
	Title            string `json:"title"`
	DefaultTransport string `json:"default_transport"`
}

type UpdatePlanRequest struct {
	Title            *string `json:"title"`
	Status           *string `json:"status"`
	DefaultTransport *string `json:"default_transport"`
}

type PlanResponse struct {
	ID               uuid.UUID      `json:"id"`
	PlanDate         time.Time      `json:"plan_date"`
	Title            string         `json:"title"`
	Status           string         `json:"status"`
	DefaultTransport string         `json:"default_transport"`
	Stops            []StopResponse `json:"stops"`
	Legs             []LegResponse  `json:"legs"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type PlanSummaryResponse struct {
	ID        uuid.UUID `json:"id"`
	PlanDate  time.Time `json:"plan_date"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	StopCount int       `json:"stop_count"`
}

type ListPlansResponse struct {
	Plans []PlanSummaryResponse `json:"plans"`
}
