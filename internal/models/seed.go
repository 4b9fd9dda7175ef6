package models

import "time"

// DefaultStore builds the demo dashboard used when nothing else is available
func DefaultStore(newID func() string, now time.Time) *Store {
	universityID := newID()
	biochemistryID := newID()
	anatomyID := newID()

	in := func(days int) string {
		return now.AddDate(0, 0, days).Format(DateLayout)
	}
	item := func(subjectID, subjectName, title string, status Status, priority Priority, deadline string, progress int, comment string) Item {
		return Item{
			ID:               newID(),
			SubjectID:        subjectID,
			SubjectNameCache: subjectName,
			Title:            title,
			Status:           status,
			Priority:         priority,
			Deadline:         deadline,
			Progress:         progress,
			Comment:          comment,
			UpdatedAt:        now,
		}
	}

	store := NewStore(now)
	store.UI.ActiveUniversityID = universityID
	store.Universities = []University{
		{
			ID:   universityID,
			Name: "Sorbonne Paris Nord",
			Subjects: []Subject{
				{ID: biochemistryID, Name: "Biochimie", Owner: "Dr. Martin", Method: MethodAudioAKV},
				{ID: anatomyID, Name: "Anatomie", Owner: "Dr. Dupont", Method: MethodAudioPoly},
			},
			Items: []Item{
				item(biochemistryID, "Biochimie", "Introduction à la biochimie", StatusPending, PriorityMedium, "", 0, ""),
				item(biochemistryID, "Biochimie", "Métabolisme cellulaire", StatusInProgress, PriorityHigh, in(7), 45, "En cours de rédaction"),
				item(biochemistryID, "Biochimie", "Enzymes et catalyse", StatusInReview, PriorityMedium, in(-2), 90, ""),
				item(anatomyID, "Anatomie", "Système cardiovasculaire", StatusValidated, PriorityLow, "", 100, "Validé par le comité"),
				item(anatomyID, "Anatomie", "Système respiratoire", StatusInProgress, PriorityHigh, in(14), 30, ""),
				item(anatomyID, "Anatomie", "Système digestif", StatusPending, PriorityMedium, "", 0, ""),
			},
		},
	}
	return store
}
