package services

import (
	"time"

	"journal-editorial-api/models"
	"journal-editorial-api/utils"
)

// ReviewStatusLabel is the presentation of a derived review status: a short
// state label plus an optional detail line carrying the relevant due date
// or the reviewer's recommendation.
type ReviewStatusLabel struct {
	Status  string `json:"status"`
	State   string `json:"state"`
	Details string `json:"details,omitempty"`
	Overdue bool   `json:"overdue,omitempty"`
}

// ReviewStatusLabelAt maps a review assignment to its display label as of
// now. Due dates are rendered at calendar-date precision; for a returned
// review the recommendation is appended when one was supplied and omitted
// without complaint when it was not.
func ReviewStatusLabelAt(assignment *models.ReviewAssignment, now time.Time) ReviewStatusLabel {
	status := assignment.StatusAt(now)
	label := ReviewStatusLabel{Status: status.String()}

	switch status {
	case models.ReviewStatusAwaitingResponse:
		label.State = "Review request sent"
		label.Details = responseDueDetails(assignment)
	case models.ReviewStatusAccepted:
		label.State = "Review request accepted"
		label.Details = reviewDueDetails(assignment)
	case models.ReviewStatusResponseOverdue:
		label.State = "Overdue"
		label.Details = responseDueDetails(assignment)
		label.Overdue = true
	case models.ReviewStatusReviewOverdue:
		label.State = "Overdue"
		label.Details = reviewDueDetails(assignment)
		label.Overdue = true
	case models.ReviewStatusReceived:
		label.State = "Review submitted"
		label.Details = recommendationDetails(assignment)
	case models.ReviewStatusComplete:
		label.State = "Review complete"
		label.Details = recommendationDetails(assignment)
	case models.ReviewStatusThanked:
		label.State = "Reviewer thanked"
	case models.ReviewStatusDeclined:
		label.State = "Review declined"
	case models.ReviewStatusCancelled:
		label.State = "Review cancelled"
	}
	return label
}

// ReviewStatusLabelFor maps a review assignment to its display label
// against the current time.
func ReviewStatusLabelFor(assignment *models.ReviewAssignment) ReviewStatusLabel {
	return ReviewStatusLabelAt(assignment, time.Now())
}

// CanViewReview reports whether a returned review's notes may be opened for
// this status. Only statuses with review text behind them expose the
// action.
func CanViewReview(status models.ReviewStatus) bool {
	switch status {
	case models.ReviewStatusReceived, models.ReviewStatusComplete, models.ReviewStatusThanked:
		return true
	case models.ReviewStatusAwaitingResponse, models.ReviewStatusAccepted,
		models.ReviewStatusDeclined, models.ReviewStatusCancelled,
		models.ReviewStatusResponseOverdue, models.ReviewStatusReviewOverdue:
		return false
	}
	return false
}

func responseDueDetails(assignment *models.ReviewAssignment) string {
	if assignment.DateResponseDue == nil {
		return ""
	}
	return "Response due " + utils.FormatCalendarDate(*assignment.DateResponseDue)
}

func reviewDueDetails(assignment *models.ReviewAssignment) string {
	if assignment.DateDue == nil {
		return ""
	}
	return "Review due " + utils.FormatCalendarDate(*assignment.DateDue)
}

func recommendationDetails(assignment *models.ReviewAssignment) string {
	if assignment.Recommendation == nil {
		return ""
	}
	return "Recommendation: " + assignment.Recommendation.String()
}
