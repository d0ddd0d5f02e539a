package leavebalance

type CreateLeaveBalanceRequest struct {
	EmployeeID  string `json:"employee_id" binding:"required,uuid"`
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	Year        int    `json:"year" binding:"required,min=1900,max=9999"`
	TotalDays   int    `json:"total_days" binding:"min=0,max=365"`
	UsedDays    int    `json:"used_days" binding:"min=0,max=365"`
}

type UpdateLeaveBalanceRequest struct {
	TotalDays int `json:"total_days" binding:"min=0,max=365"`
	UsedDays  int `json:"used_days" binding:"min=0,max=365"`
}

type PatchLeaveBalanceRequest struct {
	TotalDays *int `json:"total_days" binding:"omitempty,min=0,max=365"`
	UsedDays  *int `json:"used_days" binding:"omitempty,min=0,max=365"`
}

type ProvisionRequest struct {
	Year       *int    `json:"year" binding:"omitempty,min=1900,max=9999"`
	EmployeeID *string `json:"employee_id" binding:"omitempty,uuid"`
}

type ListQuery struct {
	EmployeeID  string `form:"employee_id" binding:"omitempty,uuid"`
	LeaveTypeID string `form:"leave_type_id" binding:"omitempty,uuid"`
	Year        int    `form:"year" binding:"omitempty,min=1900,max=9999"`
}

type LookupQuery struct {
	EmployeeID  string `form:"employee_id" binding:"omitempty,uuid"`
	LeaveTypeID string `form:"leave_type_id" binding:"required,uuid"`
	Year        int    `form:"year" binding:"omitempty,min=1900,max=9999"`
}

type SummaryQuery struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Year       int    `form:"year" binding:"omitempty,min=1900,max=9999"`
}

type LeaveBalanceResponse struct {
	ID            string `json:"id"`
	CompanyID     string `json:"company_id"`
	EmployeeID    string `json:"employee_id"`
	LeaveTypeID   string `json:"leave_type_id"`
	Year          int    `json:"year"`
	TotalDays     int    `json:"total_days"`
	UsedDays      int    `json:"used_days"`
	RemainingDays int    `json:"remaining_days"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

type SummaryResponse struct {
	Year          int    `json:"year"`
	EmployeeID    string `json:"employee_id,omitempty"`
	TotalDays     int    `json:"total_days"`
	UsedDays      int    `json:"used_days"`
	RemainingDays int    `json:"remaining_days"`
}

type ProvisionResponse struct {
	Year    int   `json:"year"`
	Created int64 `json:"created"`
}
