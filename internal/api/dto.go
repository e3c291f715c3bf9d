package api

import (
	"github.com/starford/clawmarks/internal/markservice"
	"github.com/starford/clawmarks/internal/models"
)

// CreateTrailRequest is the request body for creating a trail.
type CreateTrailRequest struct {
	Name        string `json:"name" example:"auth refactor" validate:"required"`
	Description string `json:"description,omitempty" example:"tracing the login path"`
}

// AddMarkRequest is the request body for adding a mark
// (aliased from the domain layer).
type AddMarkRequest = markservice.AddMarkParams

// UpdateMarkRequest is the request body for a partial mark update
// (aliased from the domain layer).
type UpdateMarkRequest = markservice.MarkUpdate

// LinkRequest is the request body for linking two marks.
type LinkRequest struct {
	TargetID string `json:"target_id" example:"m_8f2hw0pz" validate:"required"`
}

// TagRequest is the request body for attaching a tag to a mark.
type TagRequest struct {
	Tag string `json:"tag" example:"#security" validate:"required"`
}

// TrailListResponse wraps trail listings.
type TrailListResponse struct {
	Trails []models.Trail `json:"trails" validate:"required"`
}

// MarkListResponse wraps mark listings.
type MarkListResponse struct {
	Marks []models.Mark `json:"marks" validate:"required"`
}

// TagListResponse wraps the deduplicated tag union.
type TagListResponse struct {
	Tags []string `json:"tags" validate:"required"`
}

// TrailDetail is a trail with its marks (aliased from the domain layer).
type TrailDetail = markservice.TrailDetail

// References groups both edge directions (aliased from the domain layer).
type References = markservice.References
