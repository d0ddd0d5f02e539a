package leave_test

import (
	"testing"
	"time"

	"go-webtrack/internal/leave"
	leaveerrors "go-webtrack/internal/leave/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestSpanDays(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"2026-03-12", "2026-03-12", 1},
		{"2026-03-12", "2026-03-16", 5},
		{"2026-02-27", "2026-03-02", 4},
		{"2024-02-28", "2024-03-01", 3},
		{"2026-12-30", "2027-01-02", 4},
		{"2026-03-16", "2026-03-12", -3},
	}
	for _, tt := range tests {
		t.Run(tt.start+"_"+tt.end, func(t *testing.T) {
			assert.Equal(t, tt.want, leave.SpanDays(date(tt.start), date(tt.end)))
		})
	}
}

func TestLeaveRequest_Transitions(t *testing.T) {
	at := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	approver := uuid.New()

	t.Run("approve stamps approver", func(t *testing.T) {
		l := &leave.LeaveRequest{Status: leave.StatusPending}

		assert.NoError(t, l.Approve(approver, at))
		assert.Equal(t, leave.StatusApproved, l.Status)
		assert.Equal(t, approver, *l.ApprovedBy)
		assert.Equal(t, time.UTC, l.ApprovalDate.Location())
	})

	t.Run("reject keeps empty reason", func(t *testing.T) {
		l := &leave.LeaveRequest{Status: leave.StatusPending}

		assert.NoError(t, l.Reject(""))
		assert.NotNil(t, l.RejectionReason)
		assert.Equal(t, "", *l.RejectionReason)
	})

	t.Run("cancel", func(t *testing.T) {
		l := &leave.LeaveRequest{Status: leave.StatusPending}

		assert.NoError(t, l.Cancel(at))
		assert.Equal(t, leave.StatusCancelled, l.Status)
		assert.NotNil(t, l.CancelledAt)
	})

	for _, from := range []string{leave.StatusApproved, leave.StatusRejected, leave.StatusCancelled} {
		t.Run("no exit from "+from, func(t *testing.T) {
			l := &leave.LeaveRequest{Status: from}

			assert.ErrorIs(t, l.Approve(approver, at), leaveerrors.ErrInvalidStateTransition)
			assert.ErrorIs(t, l.Reject("x"), leaveerrors.ErrInvalidStateTransition)
			assert.ErrorIs(t, l.Cancel(at), leaveerrors.ErrInvalidStateTransition)
			assert.Equal(t, from, l.Status)
		})
	}
}
