package dto

// RecordMeasureRequest records one manual disciplinary measure. SuspensionDays
// only applies to suspensions and defaults to the configured window.
type RecordMeasureRequest struct {
	MemberID       int64  `json:"memberId" validate:"required,gt=0"`
	Kind           string `json:"kind" validate:"required,measure_kind"`
	Reason         string `json:"reason" validate:"required"`
	SuspensionDays *int   `json:"suspensionDays" validate:"omitempty,gt=0"`
}
