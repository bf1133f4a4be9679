// Command review-reminders emails reviewers whose response or review is
// overdue. Intended to run from cron once a day.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"journal-editorial-api/config"
	"journal-editorial-api/models"
	"journal-editorial-api/utils"

	"github.com/joho/godotenv"
)

func main() {
	var (
		limit  int
		dryRun bool
	)
	flag.IntVar(&limit, "limit", 0, "maximum number of reminders to send (0 = no limit)")
	flag.BoolVar(&dryRun, "dry-run", false, "report overdue assignments without sending mail")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.ReloadMailerConfig()
	config.InitDB()

	// Open assignments only. Declined, cancelled and completed reviews are
	// excluded up front; the status derivation below decides overdue.
	var assignments []models.ReviewAssignment
	err := config.DB.
		Preload("Reviewer").
		Where("declined = ? AND cancelled = ?", false, false).
		Where("date_completed IS NULL AND date_received IS NULL").
		Find(&assignments).Error
	if err != nil {
		log.Fatal("Failed to fetch review assignments:", err)
	}

	now := time.Now()
	var sent, skipped int
	for i := range assignments {
		assignment := &assignments[i]

		status := assignment.StatusAt(now)
		if status != models.ReviewStatusResponseOverdue && status != models.ReviewStatusReviewOverdue {
			continue
		}
		if assignment.Reviewer == nil || !utils.ValidateEmail(assignment.Reviewer.Email) {
			log.Printf("Assignment %d is overdue but has no usable reviewer email, skipping", assignment.ReviewAssignmentID)
			skipped++
			continue
		}
		if limit > 0 && sent >= limit {
			break
		}

		subject, body := reminderMessage(assignment, status)
		if dryRun {
			log.Printf("Would remind %s about assignment %d (%s)",
				assignment.Reviewer.Email, assignment.ReviewAssignmentID, status)
			sent++
			continue
		}

		if err := config.SendMail([]string{assignment.Reviewer.Email}, subject, body); err != nil {
			log.Printf("Failed to send reminder for assignment %d: %v", assignment.ReviewAssignmentID, err)
			skipped++
			continue
		}
		sent++
	}

	log.Printf("Review reminders finished: %d sent, %d skipped", sent, skipped)
}

func reminderMessage(assignment *models.ReviewAssignment, status models.ReviewStatus) (string, string) {
	if status == models.ReviewStatusResponseOverdue {
		due := ""
		if assignment.DateResponseDue != nil {
			due = utils.FormatCalendarDate(*assignment.DateResponseDue)
		}
		return "Reminder: review request awaiting your response",
			fmt.Sprintf("<p>Dear %s,</p><p>Your response to a review request was due on %s. Please accept or decline the request at your earliest convenience.</p>",
				assignment.Reviewer.FullName(), due)
	}

	due := ""
	if assignment.DateDue != nil {
		due = utils.FormatCalendarDate(*assignment.DateDue)
	}
	return "Reminder: review overdue",
		fmt.Sprintf("<p>Dear %s,</p><p>The review you accepted was due on %s. Please submit your review as soon as possible.</p>",
			assignment.Reviewer.FullName(), due)
}
