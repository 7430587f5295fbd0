package notify

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"quizdeck-service/internal/app"
)

// BuildQuizReportPDF renders the attempt report as a paginated PDF, rows
// ordered by score descending. Implements app.ReportBuilder.
func BuildQuizReportPDF(quizID int64, title string, rows []app.LeaderboardRow) ([]byte, error) {
	sorted := append([]app.LeaderboardRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("Quiz report #%d", quizID), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Title: "+title, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated at: "+time.Now().UTC().Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Total attempts: %d", len(sorted)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	for i, row := range sorted {
		name := row.Name
		if name == "" {
			name = fmt.Sprintf("Player %d", row.PlayerID)
		}
		finished := "N/A"
		if !row.FinishedAt.IsZero() {
			finished = row.FinishedAt.UTC().Format("2006-01-02 15:04:05")
		}
		line := fmt.Sprintf("%d. %s | player_id=%d | score=%d | duration=%ds | finished=%s",
			i+1, name, row.PlayerID, row.Score, row.DurationSeconds, finished)
		if len(line) > 120 {
			line = line[:120]
		}
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
