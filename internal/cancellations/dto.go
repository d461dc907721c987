package cancellations

import (
	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

// CreateInput is a customer's request to cancel one of their orders.
type CreateInput struct {
	OrderID int64
	UserID  int64
	Reason  string
}

// ProcessInput is an admin decision on a pending request.
type ProcessInput struct {
	RequestID   int64
	Status      enums.CancelRequestStatus
	AdminNote   *string
	ProcessedBy string
}

// ListFilters narrows the admin request listing.
type ListFilters struct {
	Status *enums.CancelRequestStatus
}

// RequestList is one page of cancel requests.
type RequestList struct {
	Requests []models.CancelRequest `json:"requests"`
	Page     pagination.Page        `json:"page"`
}
