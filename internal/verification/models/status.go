package models

import (
	"time"

	id "bridgeid/pkg/domain"
)

// SubjectStatus is the latest fulfilled outcome for a subject.
// A subject that was never fulfilled has no stored status and reads as unknown.
type SubjectStatus struct {
	SubjectID     id.SubjectID
	State         SubjectState
	CorrelationID id.CorrelationID
	UpdatedAt     time.Time
}

func (s SubjectStatus) Verified() bool {
	return s.State == SubjectStateVerified
}

// UnknownStatus is the zero-knowledge view of a subject.
func UnknownStatus(subjectID id.SubjectID) SubjectStatus {
	return SubjectStatus{SubjectID: subjectID, State: SubjectStateUnknown}
}
