package divergence

import "errors"

var (
	ErrInspectionFailed  = errors.New("history inspection failed")
	ErrFeasibilityFailed = errors.New("merge feasibility check failed")
	ErrCompareFailed     = errors.New("file comparison failed")
)
