package tenants

import "time"

type Tenant struct {
	ID              string     `json:"id"`
	FullName        string     `json:"full_name"`
	Email           *string    `json:"email,omitempty"`
	MSISDN          string     `json:"msisdn"`
	PropertyID      *string    `json:"property_id,omitempty"`
	UnitID          *string    `json:"unit_id,omitempty"`
	MonthlyDueCents int64      `json:"monthly_due_cents"`
	MovedInOn       *time.Time `json:"moved_in_on,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

type CreateTenantRequest struct {
	FullName        string  `json:"full_name"`
	Email           *string `json:"email"`
	MSISDN          string  `json:"msisdn"`
	PropertyID      *string `json:"property_id"`
	UnitID          *string `json:"unit_id"`
	MonthlyDueCents int64   `json:"monthly_due_cents"`
	MovedInOn       string  `json:"moved_in_on"` // YYYY-MM-DD, optional
}

type UpdateTenantRequest struct {
	FullName        *string `json:"full_name"`
	Email           *string `json:"email"`
	MSISDN          *string `json:"msisdn"`
	PropertyID      *string `json:"property_id"`
	UnitID          *string `json:"unit_id"`
	MonthlyDueCents *int64  `json:"monthly_due_cents"`
}
