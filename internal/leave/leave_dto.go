package leave

type CreateLeaveRequest struct {
	EmployeeID  string `json:"employee_id" binding:"omitempty,uuid"`
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Reason      string `json:"reason" binding:"max=1000"`
}

// PatchLeaveRequest either moves the request to a new status or edits its details.
type PatchLeaveRequest struct {
	LeaveTypeID     *string `json:"leave_type_id" binding:"omitempty,uuid"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	Reason          *string `json:"reason" binding:"omitempty,max=1000"`
	Status          *string `json:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"`
	RejectionReason *string `json:"rejection_reason" binding:"omitempty,max=1000"`
}

func (p PatchLeaveRequest) editsDetails() bool {
	return p.LeaveTypeID != nil || p.StartDate != nil || p.EndDate != nil || p.Reason != nil
}

type RejectLeaveRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"max=1000"`
}

type ListQuery struct {
	Status      string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"`
	LeaveTypeID string `form:"leave_type_id" binding:"omitempty,uuid"`
	EmployeeID  string `form:"employee_id" binding:"omitempty,uuid"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
}

type SummaryQuery struct {
	Year int `form:"year" binding:"omitempty,min=1900,max=9999"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	CompanyID       string  `json:"company_id"`
	EmployeeID      string  `json:"employee_id"`
	LeaveTypeID     string  `json:"leave_type_id"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	DaysRequested   int     `json:"days_requested"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	CreatedBy       string  `json:"created_by"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovalDate    *string `json:"approval_date,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CancelledAt     *string `json:"cancelled_at,omitempty"`
	Version         int     `json:"version"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

type SummaryResponse struct {
	Year          int              `json:"year"`
	StatusSummary map[string]int64 `json:"status_summary"`
	Total         int64            `json:"total"`
}
