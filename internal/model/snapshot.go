package model

// Snapshot is the persisted projection of an in-progress session,
// written after every mutating operation so a crash loses at most the
// in-flight action. The field names are the on-disk wire format and
// must stay stable across releases.
type Snapshot struct {
	CurrentIndex  int            `json:"currentIndex"`
	Answers       map[string]int `json:"answers"`
	ElapsedAtSave float64        `json:"elapsedAtSave"`
	QuestionSetID string         `json:"questionSetId"`
}
