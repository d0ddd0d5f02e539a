package events

import "time"

const LeaveRequestTopic = "hr.leave.request.lifecycle.v1"

const (
	EventLeaveRequestCreated   = "leave_request_created"
	EventLeaveRequestUpdated   = "leave_request_updated"
	EventLeaveRequestApproved  = "leave_request_approved"
	EventLeaveRequestRejected  = "leave_request_rejected"
	EventLeaveRequestCancelled = "leave_request_cancelled"
)

// LeaveRequestEvent carries enough of the request for consumers to act
// without reading the leave tables. ManagerID is empty when the employee has none.
type LeaveRequestEvent struct {
	EventType       string    `json:"event_type"`
	RequestID       string    `json:"request_id,omitempty"`
	LeaveRequestID  string    `json:"leave_request_id"`
	CompanyID       string    `json:"company_id"`
	EmployeeID      string    `json:"employee_id"`
	ManagerID       string    `json:"manager_id,omitempty"`
	LeaveTypeID     string    `json:"leave_type_id"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	DaysRequested   int       `json:"days_requested"`
	Status          string    `json:"status"`
	ActorID         string    `json:"actor_id"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
