package notification

type ListQuery struct {
	UnreadOnly bool `form:"unread_only"`
}

type NotificationResponse struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Message          string  `json:"message"`
	NotificationType string  `json:"notification_type"`
	Priority         string  `json:"priority"`
	IsRead           bool    `json:"is_read"`
	ReadAt           *string `json:"read_at,omitempty"`
	ReferenceID      string  `json:"reference_id"`
	CreatedAt        string  `json:"created_at"`
}
