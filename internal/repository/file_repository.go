package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eatprep/cbt-player/internal/model"
)

// FileQuestionRepository reads question sets from a directory of JSON
// files. Each <id>.json holds an ordered array of questions; the file
// name (without extension) is the set ID.
type FileQuestionRepository struct {
	dir string
}

// NewFileQuestionRepository creates a repository over a question
// directory.
func NewFileQuestionRepository(dir string) *FileQuestionRepository {
	return &FileQuestionRepository{dir: dir}
}

// ListAvailableSets scans the directory for .json files and summarizes
// each set. A file that fails to parse or validate fails the listing.
func (r *FileQuestionRepository) ListAvailableSets(ctx context.Context) ([]model.SetInfo, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read question dir: %w", err)
	}

	var infos []model.SetInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		questions, err := r.LoadQuestionSet(ctx, id)
		if err != nil {
			return nil, err
		}
		infos = append(infos, setInfo(id, questions))
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// LoadQuestionSet reads and validates one set file.
func (r *FileQuestionRepository) LoadQuestionSet(_ context.Context, id string) ([]model.Question, error) {
	// The ID came from the client; never let it escape the directory.
	if strings.ContainsAny(id, `/\`) || id == "" || strings.Contains(id, "..") {
		return nil, fmt.Errorf("%w: %q", ErrSetNotFound, id)
	}

	path := filepath.Join(r.dir, id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrSetNotFound, id)
		}
		return nil, fmt.Errorf("read set %q: %w", id, err)
	}

	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse set %q: %w", id, err)
	}
	if err := ValidateSet(id, questions); err != nil {
		return nil, err
	}
	return questions, nil
}
