// Package seed loads a YAML question bank and applies it to a store.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/gokatarajesh/trivia-api/internal/question"
)

// Bank is the on-disk seed format.
type Bank struct {
	Categories []Category `yaml:"categories"`
	Questions  []Question `yaml:"questions"`
}

type Category struct {
	ID   int    `yaml:"id"`
	Type string `yaml:"type"`
}

type Question struct {
	Question   string `yaml:"question"`
	Answer     string `yaml:"answer"`
	Category   int    `yaml:"category"`
	Difficulty int    `yaml:"difficulty"`
}

// Target is a store that also accepts category writes.
type Target interface {
	question.Store
	UpsertCategory(ctx context.Context, c question.Category) error
}

// Result counts what Apply wrote.
type Result struct {
	Categories int
	Created    int
	Skipped    int
}

// Load reads and parses a seed file.
func Load(path string) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bank{}, fmt.Errorf("read seed: %w", err)
	}
	return Parse(data)
}

// Parse decodes a single YAML document, rejecting unknown keys.
func Parse(data []byte) (Bank, error) {
	var bank Bank
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bank); err != nil {
		return Bank{}, fmt.Errorf("parse seed: %w", err)
	}
	if err := decoder.Decode(new(yaml.Node)); !errors.Is(err, io.EOF) {
		if err == nil {
			return Bank{}, fmt.Errorf("parse seed: multiple YAML documents are not supported")
		}
		return Bank{}, fmt.Errorf("parse seed: %w", err)
	}
	if err := bank.validate(); err != nil {
		return Bank{}, err
	}
	return bank, nil
}

func (b Bank) validate() error {
	seen := make(map[int]bool, len(b.Categories))
	for i, c := range b.Categories {
		if c.ID < 1 {
			return fmt.Errorf("categories[%d]: id must be positive", i)
		}
		if strings.TrimSpace(c.Type) == "" {
			return fmt.Errorf("categories[%d]: type is required", i)
		}
		if seen[c.ID] {
			return fmt.Errorf("categories[%d]: duplicate id %d", i, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// Apply upserts the categories, then creates each question not already present
// (same text, ignoring case). Questions go through question.Service so they get
// the same validation as API writes.
func Apply(ctx context.Context, target Target, bank Bank, logger zerolog.Logger) (Result, error) {
	var res Result
	for _, c := range bank.Categories {
		if err := target.UpsertCategory(ctx, question.Category{ID: c.ID, Type: c.Type}); err != nil {
			return res, fmt.Errorf("upsert category %d: %w", c.ID, err)
		}
		res.Categories++
	}

	svc := question.NewService(target, question.ServiceOptions{}, logger)
	for i, q := range bank.Questions {
		exists, err := hasQuestion(ctx, target, q.Question)
		if err != nil {
			return res, fmt.Errorf("questions[%d]: %w", i, err)
		}
		if exists {
			res.Skipped++
			continue
		}

		category, difficulty := q.Category, q.Difficulty
		if _, err := svc.Create(ctx, question.NewQuestion{
			Question:   q.Question,
			Answer:     q.Answer,
			Category:   &category,
			Difficulty: &difficulty,
		}); err != nil {
			return res, fmt.Errorf("questions[%d]: %w", i, err)
		}
		res.Created++
	}

	logger.Info().
		Int("categories", res.Categories).
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Msg("seed applied")
	return res, nil
}

func hasQuestion(ctx context.Context, store question.Store, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}
	matches, err := store.SearchQuestions(ctx, text)
	if err != nil {
		return false, errors.Join(question.ErrStoreUnavailable, err)
	}
	for _, m := range matches {
		if strings.EqualFold(m.Question, text) {
			return true, nil
		}
	}
	return false, nil
}
