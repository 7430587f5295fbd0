package app

import (
	"context"
	"fmt"
	"log"
)

// ReportBuilder renders a paginated report artifact from leaderboard rows,
// ordered by score descending.
type ReportBuilder func(quizID int64, title string, rows []LeaderboardRow) ([]byte, error)

// ReportService emails an attempt report for a quiz to the requesting
// admin. The build-and-send runs detached; the request returns as soon as
// the rows are gathered.
type ReportService struct {
	attempts *AttemptService
	mailer   Mailer
	build    ReportBuilder
}

func NewReportService(attempts *AttemptService, mailer Mailer, build ReportBuilder) *ReportService {
	return &ReportService{attempts: attempts, mailer: mailer, build: build}
}

// Request gathers the quiz's leaderboard and dispatches report delivery.
func (s *ReportService) Request(ctx context.Context, quizID int64, quizTitle, toEmail string) error {
	rows, err := s.attempts.Leaderboard(ctx, quizID)
	if err != nil {
		return err
	}

	go func() {
		data, err := s.build(quizID, quizTitle, rows)
		if err != nil {
			log.Printf("build report for quiz %d: %v", quizID, err)
			return
		}
		subject := fmt.Sprintf("Quiz report #%d - %s", quizID, quizTitle)
		body := fmt.Sprintf("Hello,\n\nIn attachment you can find the PDF report for quiz '%s' (ID: %d).\n\nBest regards.", quizTitle, quizID)
		filename := fmt.Sprintf("quiz_report_%d.pdf", quizID)
		if err := s.mailer.SendWithAttachment(toEmail, subject, body, filename, "application/pdf", data); err != nil {
			log.Printf("report mail to %s failed: %v", toEmail, err)
		}
	}()
	return nil
}
