package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/eatprep/cbt-player/internal/model"
)

func writeSet(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const validSet = `[
  {"qnum": 1, "section": "Quant", "prompt": "1+1?", "options": ["1", "2"], "correct": 1},
  {"qnum": 2, "section": "Verbal", "prompt": "Pick X", "passage": "Some passage.", "options": ["X", "Y", "Z"], "correct": 0, "explanation": "X it is."},
  {"qnum": 5, "section": "Verbal", "prompt": "Opinion?", "options": ["Yes", "No"]}
]`

func TestFileRepositoryLoadsSetInOrder(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "eat-2024.json", validSet)

	repo := NewFileQuestionRepository(dir)
	questions, err := repo.LoadQuestionSet(context.Background(), "eat-2024")
	if err != nil {
		t.Fatalf("LoadQuestionSet: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions", len(questions))
	}
	for i, want := range []int{1, 2, 5} {
		if questions[i].Qnum != want {
			t.Errorf("question %d has qnum %d, want %d", i, questions[i].Qnum, want)
		}
	}
	if questions[2].Graded() {
		t.Errorf("question without answer key reported as graded")
	}
	if questions[1].Passage == "" || questions[1].Explanation == "" {
		t.Errorf("optional fields dropped: %+v", questions[1])
	}
}

func TestFileRepositoryUnknownSet(t *testing.T) {
	repo := NewFileQuestionRepository(t.TempDir())
	if _, err := repo.LoadQuestionSet(context.Background(), "nope"); !errors.Is(err, ErrSetNotFound) {
		t.Fatalf("want ErrSetNotFound, got %v", err)
	}
	// Path traversal in the ID is treated as not-found, never as a read.
	if _, err := repo.LoadQuestionSet(context.Background(), "../secrets"); !errors.Is(err, ErrSetNotFound) {
		t.Fatalf("traversal ID: want ErrSetNotFound, got %v", err)
	}
}

func TestFileRepositoryRejectsMalformedSets(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{{{`},
		{"empty set", `[]`},
		{"one option", `[{"qnum": 1, "options": ["only"]}]`},
		{"duplicate qnum", `[
			{"qnum": 1, "options": ["a", "b"]},
			{"qnum": 1, "options": ["c", "d"]}
		]`},
		{"answer key out of range", `[{"qnum": 1, "options": ["a", "b"], "correct": 2}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSet(t, dir, "bad.json", tc.content)
			repo := NewFileQuestionRepository(dir)
			if _, err := repo.LoadQuestionSet(context.Background(), "bad"); err == nil {
				t.Fatal("malformed set loaded without error")
			}
		})
	}
}

func TestFileRepositoryListsSetsSorted(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "b-set.json", validSet)
	writeSet(t, dir, "a-set.json", validSet)
	writeSet(t, dir, "notes.txt", "ignored")

	repo := NewFileQuestionRepository(dir)
	infos, err := repo.ListAvailableSets(context.Background())
	if err != nil {
		t.Fatalf("ListAvailableSets: %v", err)
	}
	if len(infos) != 2 || infos[0].ID != "a-set" || infos[1].ID != "b-set" {
		t.Fatalf("infos = %+v", infos)
	}
	if infos[0].QuestionCount != 3 || infos[0].Sections["Verbal"] != 2 || infos[0].Sections["Quant"] != 1 {
		t.Errorf("set summary wrong: %+v", infos[0])
	}
}

func TestOrderSectionFilter(t *testing.T) {
	questions := []model.Question{
		{Qnum: 1, Section: "Quant", Options: []string{"a", "b"}},
		{Qnum: 2, Section: "Verbal", Options: []string{"a", "b"}},
		{Qnum: 5, Section: "Verbal", Options: []string{"a", "b"}},
	}

	full := Order(questions, "")
	if len(full) != 3 || full[0] != 1 || full[2] != 5 {
		t.Errorf("full order = %v", full)
	}

	verbal := Order(questions, "Verbal")
	if len(verbal) != 2 || verbal[0] != 2 || verbal[1] != 5 {
		t.Errorf("verbal order = %v", verbal)
	}

	if empty := Order(questions, "History"); len(empty) != 0 {
		t.Errorf("unknown section order = %v", empty)
	}
}
