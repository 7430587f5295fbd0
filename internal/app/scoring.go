package app

import "quizdeck-service/internal/domain"

// Score computes the point total for a submission against the quiz's
// answer key. A question scores its full point value only when the chosen
// option ids exactly equal the correct set; partial overlap, supersets,
// and skipped questions score zero. Deterministic and side-effect free.
func Score(quiz domain.Quiz, answers domain.AnswerSheet) int {
	total := 0
	for _, q := range quiz.Questions {
		chosen := answers[q.ID]
		if len(chosen) == 0 {
			continue
		}
		correct := q.CorrectOptionIDs()
		if len(chosen) != len(correct) {
			continue
		}
		match := true
		seen := make(map[int64]struct{}, len(chosen))
		for _, id := range chosen {
			if _, dup := seen[id]; dup {
				match = false
				break
			}
			seen[id] = struct{}{}
			if _, ok := correct[id]; !ok {
				match = false
				break
			}
		}
		if match {
			total += q.Points
		}
	}
	return total
}
