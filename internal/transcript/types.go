package transcript

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Session is one interview: the examinee's profile plus bookkeeping.
type Session struct {
	ID        string
	Profile   interview.ActivityProfile
	Pattern   interview.Pattern // empty until the engine has classified the profile
	CreatedAt time.Time
	ClosedAt  time.Time // zero while the interview is running
	Turns     int
}

// Closed reports whether the session has ended.
func (s Session) Closed() bool { return !s.ClosedAt.IsZero() }

// TurnRecord is a stored turn. IDs are ULIDs, so they sort in append order.
type TurnRecord struct {
	ID        string
	SessionID string
	Seq       int
	Role      interview.Role
	Text      string
	Source    interview.Source // interviewer turns only
	CreatedAt time.Time
}

// Turn converts the record to the engine's history type.
func (r TurnRecord) Turn() interview.Turn {
	return interview.Turn{Role: r.Role, Text: r.Text}
}
