package leavetype

type CreateLeaveTypeRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	DefaultDays int    `json:"default_days" binding:"min=0,max=365"`
	IsPaid      *bool  `json:"is_paid"`
}

type UpdateLeaveTypeRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	DefaultDays int    `json:"default_days" binding:"min=0,max=365"`
	IsPaid      bool   `json:"is_paid"`
}

type PatchLeaveTypeRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	DefaultDays *int    `json:"default_days" binding:"omitempty,min=0,max=365"`
	IsPaid      *bool   `json:"is_paid"`
}

type LeaveTypeResponse struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DefaultDays int    `json:"default_days"`
	IsPaid      bool   `json:"is_paid"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}
