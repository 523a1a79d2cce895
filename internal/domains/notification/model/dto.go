package model

// ListNotificationsQuery carries the list filters parsed from the request.
type ListNotificationsQuery struct {
	UnreadOnly bool
	Page       int
	Limit      int
}

func (q *ListNotificationsQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
}

func (q *ListNotificationsQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}
