// Command setinfo lists the question sets in the configured source
// with question and per-section counts. Ops tool for checking what a
// deployment will serve.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/eatprep/cbt-player/internal/config"
	"github.com/eatprep/cbt-player/internal/repository"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var repo repository.QuestionRepository
	switch cfg.QuestionSource {
	case config.SourceSQLite:
		db, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open question database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		repo = repository.NewSQLiteQuestionRepository(db)
	case config.SourceFile:
		repo = repository.NewFileQuestionRepository(cfg.QuestionDir)
	default:
		fmt.Fprintf(os.Stderr, "unknown question source %q\n", cfg.QuestionSource)
		os.Exit(1)
	}

	infos, err := repo.ListAvailableSets(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list sets: %v\n", err)
		os.Exit(1)
	}

	if len(infos) == 0 {
		fmt.Println("No question sets found.")
		return
	}

	for _, info := range infos {
		fmt.Printf("%s: %d questions\n", info.ID, info.QuestionCount)

		sections := make([]string, 0, len(info.Sections))
		for s := range info.Sections {
			sections = append(sections, s)
		}
		sort.Strings(sections)
		for _, s := range sections {
			fmt.Printf("  %-12s %d\n", s, info.Sections[s])
		}
	}
}
