package leavepolicy

type CreateLeavePolicyRequest struct {
	LeaveTypeID           string `json:"leave_type_id" binding:"required,uuid"`
	MinDaysNotice         int    `json:"min_days_notice" binding:"min=0,max=365"`
	MaxConsecutiveDays    *int   `json:"max_consecutive_days" binding:"omitempty,min=1,max=365"`
	RequiresApproval      *bool  `json:"requires_approval"`
	RequiresDocumentation bool   `json:"requires_documentation"`
}

type UpdateLeavePolicyRequest struct {
	LeaveTypeID           string `json:"leave_type_id" binding:"required,uuid"`
	MinDaysNotice         int    `json:"min_days_notice" binding:"min=0,max=365"`
	MaxConsecutiveDays    int    `json:"max_consecutive_days" binding:"required,min=1,max=365"`
	RequiresApproval      bool   `json:"requires_approval"`
	RequiresDocumentation bool   `json:"requires_documentation"`
}

type PatchLeavePolicyRequest struct {
	LeaveTypeID           *string `json:"leave_type_id" binding:"omitempty,uuid"`
	MinDaysNotice         *int    `json:"min_days_notice" binding:"omitempty,min=0,max=365"`
	MaxConsecutiveDays    *int    `json:"max_consecutive_days" binding:"omitempty,min=1,max=365"`
	RequiresApproval      *bool   `json:"requires_approval"`
	RequiresDocumentation *bool   `json:"requires_documentation"`
}

type LeavePolicyResponse struct {
	ID                    string `json:"id"`
	CompanyID             string `json:"company_id"`
	LeaveTypeID           string `json:"leave_type_id"`
	MinDaysNotice         int    `json:"min_days_notice"`
	MaxConsecutiveDays    int    `json:"max_consecutive_days"`
	RequiresApproval      bool   `json:"requires_approval"`
	RequiresDocumentation bool   `json:"requires_documentation"`
	CreatedAt             string `json:"created_at,omitempty"`
	UpdatedAt             string `json:"updated_at,omitempty"`
}
