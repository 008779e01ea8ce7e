// Command seed-sets imports JSON question set files into the SQLite
// question database, so a deployment can switch from the file source
// to the embedded store.
//
// Usage: seed-sets <set.json> [<set.json> ...]
// The set ID is the file name without extension.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eatprep/cbt-player/internal/config"
	"github.com/eatprep/cbt-player/internal/model"
	"github.com/eatprep/cbt-player/internal/repository"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: seed-sets <set.json> [<set.json> ...]")
		os.Exit(1)
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open question database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := repository.NewSQLiteQuestionRepository(db)

	for _, path := range os.Args[1:] {
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
			os.Exit(1)
		}

		var questions []model.Question
		if err := json.Unmarshal(data, &questions); err != nil {
			fmt.Fprintf(os.Stderr, "parse %s: %v\n", path, err)
			os.Exit(1)
		}

		if err := repo.ImportSet(ctx, id, questions); err != nil {
			fmt.Fprintf(os.Stderr, "import %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("imported %s (%d questions)\n", id, len(questions))
	}
}
