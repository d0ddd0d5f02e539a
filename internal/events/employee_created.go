package events

import "time"

const (
	EmployeeCreatedTopic = "hr.employee.lifecycle.v1"
	EventEmployeeCreated = "employee_created"
)

type EmployeeCreatedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	EmployeeID string    `json:"employee_id"`
	CompanyID  string    `json:"company_id"`
	HireYear   int       `json:"hire_year,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
