package services

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/traitgame/similar-backend/internal/logger"
	"github.com/traitgame/similar-backend/internal/repos"
	"github.com/traitgame/similar-backend/internal/types"
)

type seedFile struct {
	Traits []string `yaml:"traits"`
}

type SeedService interface {
	// LoadFile inserts every trait from the YAML file that is not already
	// present and returns how many were created. Loading the same file twice
	// creates nothing new.
	LoadFile(ctx context.Context, path string) (int, error)
}

type seedService struct {
	db       *gorm.DB
	log      *logger.Logger
	textRepo repos.TextRepo
}

func NewSeedService(db *gorm.DB, log *logger.Logger, textRepo repos.TextRepo) SeedService {
	return &seedService{
		db:       db,
		log:      log.With("service", "SeedService"),
		textRepo: textRepo,
	}
}

func (ss *seedService) LoadFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	created := 0
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := ss.textRepo.GetByContents(ctx, tx, file.Traits)
		if err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(existing))
		for _, txt := range existing {
			seen[txt.Text] = struct{}{}
		}

		var missing []*types.Text
		for _, trait := range file.Traits {
			if trait == "" {
				continue
			}
			if _, ok := seen[trait]; ok {
				continue
			}
			seen[trait] = struct{}{}
			missing = append(missing, &types.Text{Text: trait})
		}

		if _, err := ss.textRepo.Create(ctx, tx, missing); err != nil {
			return err
		}
		created = len(missing)
		return nil
	})
	if err != nil {
		return 0, err
	}

	ss.log.Info("Seed file loaded", "path", path, "traits", len(file.Traits), "created", created)
	return created, nil
}
