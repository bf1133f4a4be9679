package services

import (
	"testing"
	"time"

	"journal-editorial-api/models"
)

var labelNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

func datePtr(t time.Time) *time.Time { return &t }

func recommendationPtr(r models.ReviewerRecommendation) *models.ReviewerRecommendation { return &r }

func TestReviewStatusLabelDueDates(t *testing.T) {
	responseDue := time.Date(2025, 6, 20, 23, 59, 0, 0, time.UTC)
	reviewDue := time.Date(2025, 7, 1, 23, 59, 0, 0, time.UTC)

	awaiting := &models.ReviewAssignment{DateResponseDue: datePtr(responseDue)}
	label := ReviewStatusLabelAt(awaiting, labelNow)
	if label.State != "Review request sent" {
		t.Fatalf("unexpected state: %q", label.State)
	}
	if label.Details != "Response due 2025-06-20" {
		t.Fatalf("unexpected details: %q", label.Details)
	}
	if label.Overdue {
		t.Fatal("awaiting response should not be flagged overdue")
	}

	accepted := &models.ReviewAssignment{
		DateConfirmed: datePtr(labelNow.AddDate(0, 0, -1)),
		DateDue:       datePtr(reviewDue),
	}
	label = ReviewStatusLabelAt(accepted, labelNow)
	if label.State != "Review request accepted" {
		t.Fatalf("unexpected state: %q", label.State)
	}
	if label.Details != "Review due 2025-07-01" {
		t.Fatalf("unexpected details: %q", label.Details)
	}
}

func TestReviewStatusLabelOverdue(t *testing.T) {
	responseOverdue := &models.ReviewAssignment{
		DateResponseDue: datePtr(labelNow.AddDate(0, 0, -2)),
	}
	label := ReviewStatusLabelAt(responseOverdue, labelNow)
	if label.State != "Overdue" || !label.Overdue {
		t.Fatalf("expected overdue label, got %+v", label)
	}
	if label.Details != "Response due 2025-06-13" {
		t.Fatalf("unexpected details: %q", label.Details)
	}

	reviewOverdue := &models.ReviewAssignment{
		DateConfirmed: datePtr(labelNow.AddDate(0, 0, -10)),
		DateDue:       datePtr(labelNow.AddDate(0, 0, -3)),
	}
	label = ReviewStatusLabelAt(reviewOverdue, labelNow)
	if label.State != "Overdue" || !label.Overdue {
		t.Fatalf("expected overdue label, got %+v", label)
	}
	if label.Details != "Review due 2025-06-12" {
		t.Fatalf("unexpected details: %q", label.Details)
	}
}

func TestReviewStatusLabelRecommendation(t *testing.T) {
	complete := &models.ReviewAssignment{
		DateConfirmed:  datePtr(labelNow.AddDate(0, 0, -10)),
		DateReceived:   datePtr(labelNow.AddDate(0, 0, -4)),
		DateCompleted:  datePtr(labelNow.AddDate(0, 0, -1)),
		Recommendation: recommendationPtr(models.RecommendationPendingRevisions),
	}
	label := ReviewStatusLabelAt(complete, labelNow)
	if label.State != "Review complete" {
		t.Fatalf("unexpected state: %q", label.State)
	}
	if label.Details != "Recommendation: Revisions Required" {
		t.Fatalf("unexpected details: %q", label.Details)
	}

	// A record with no recommendation degrades to the bare state label.
	complete.Recommendation = nil
	label = ReviewStatusLabelAt(complete, labelNow)
	if label.State != "Review complete" || label.Details != "" {
		t.Fatalf("expected state-only label, got %+v", label)
	}

	received := &models.ReviewAssignment{
		DateConfirmed:  datePtr(labelNow.AddDate(0, 0, -10)),
		DateReceived:   datePtr(labelNow.AddDate(0, 0, -1)),
		Recommendation: recommendationPtr(models.RecommendationAccept),
	}
	label = ReviewStatusLabelAt(received, labelNow)
	if label.State != "Review submitted" {
		t.Fatalf("unexpected state: %q", label.State)
	}
	if label.Details != "Recommendation: Accept Submission" {
		t.Fatalf("unexpected details: %q", label.Details)
	}
}

func TestReviewStatusLabelTerminalStates(t *testing.T) {
	declined := &models.ReviewAssignment{Declined: true}
	if label := ReviewStatusLabelAt(declined, labelNow); label.State != "Review declined" {
		t.Fatalf("unexpected state: %q", label.State)
	}

	cancelled := &models.ReviewAssignment{Cancelled: true}
	if label := ReviewStatusLabelAt(cancelled, labelNow); label.State != "Review cancelled" {
		t.Fatalf("unexpected state: %q", label.State)
	}

	thanked := &models.ReviewAssignment{
		DateCompleted: datePtr(labelNow.AddDate(0, 0, -2)),
		DateThanked:   datePtr(labelNow.AddDate(0, 0, -1)),
	}
	if label := ReviewStatusLabelAt(thanked, labelNow); label.State != "Reviewer thanked" {
		t.Fatalf("unexpected state: %q", label.State)
	}
}

func TestCanViewReview(t *testing.T) {
	viewable := []models.ReviewStatus{
		models.ReviewStatusReceived,
		models.ReviewStatusComplete,
		models.ReviewStatusThanked,
	}
	for _, status := range viewable {
		if !CanViewReview(status) {
			t.Fatalf("expected review notes action for %s", status)
		}
	}
	hidden := []models.ReviewStatus{
		models.ReviewStatusAwaitingResponse,
		models.ReviewStatusAccepted,
		models.ReviewStatusDeclined,
		models.ReviewStatusCancelled,
		models.ReviewStatusResponseOverdue,
		models.ReviewStatusReviewOverdue,
	}
	for _, status := range hidden {
		if CanViewReview(status) {
			t.Fatalf("did not expect review notes action for %s", status)
		}
	}
}
