package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/arzan03/DevCamper/internal/config"
	"github.com/arzan03/DevCamper/internal/db"
	"github.com/arzan03/DevCamper/internal/models"
	"github.com/arzan03/DevCamper/internal/repository"
	"github.com/arzan03/DevCamper/internal/services"
	"github.com/arzan03/DevCamper/internal/utils"
	"github.com/gosimple/slug"
)

type seedUser struct {
	models.User
	Password string `json:"password"`
}

func main() {
	importData := flag.Bool("i", false, "import the JSON fixtures")
	destroyData := flag.Bool("d", false, "delete all bootcamps, courses, reviews and users")
	dataDir := flag.String("data", "_data", "directory holding the JSON fixtures")
	flag.Parse()

	if *importData == *destroyData {
		fmt.Fprintln(os.Stderr, "usage: seeder -i | -d")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := log.New(os.Stdout, "[seeder] ", log.LstdFlags)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := db.OpenStore(ctx, cfg.StoreDriver, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer store.Close(context.Background())

	if *destroyData {
		if err := destroy(ctx, store); err != nil {
			logger.Fatalf("Destroy failed: %v", err)
		}
		logger.Println("Data destroyed")
		return
	}

	if err := seed(ctx, store, *dataDir, logger); err != nil {
		logger.Fatalf("Import failed: %v", err)
	}
	logger.Println("Data imported")
}

func readJSON[T any](dir, name string) ([]T, error) {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func seed(ctx context.Context, store *repository.Store, dir string, logger *log.Logger) error {
	users, err := readJSON[seedUser](dir, "users.json")
	if err != nil {
		return err
	}
	bootcamps, err := readJSON[models.Bootcamp](dir, "bootcamps.json")
	if err != nil {
		return err
	}
	courses, err := readJSON[models.Course](dir, "courses.json")
	if err != nil {
		return err
	}
	reviews, err := readJSON[models.Review](dir, "reviews.json")
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range users {
		u := users[i].User
		u.CreatedAt = now
		if err := u.SetPassword(users[i].Password); err != nil {
			return err
		}
		if err := models.Validate(u); err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
		if err := store.Users.Create(ctx, &u); err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
	}

	for i := range bootcamps {
		b := &bootcamps[i]
		b.Slug = slug.Make(b.Name)
		b.Photo = models.DefaultPhoto
		b.CreatedAt = now.Add(time.Duration(i) * time.Second)
		if err := models.Validate(b); err != nil {
			return fmt.Errorf("bootcamp %s: %w", b.Name, err)
		}
		if err := store.Bootcamps.Create(ctx, b); err != nil {
			return fmt.Errorf("bootcamp %s: %w", b.Name, err)
		}
	}

	for i := range courses {
		courses[i].CreatedAt = now
		if err := models.Validate(&courses[i]); err != nil {
			return fmt.Errorf("course %s: %w", courses[i].Title, err)
		}
		if err := store.Courses.Create(ctx, &courses[i]); err != nil {
			return fmt.Errorf("course %s: %w", courses[i].Title, err)
		}
	}
	for i := range reviews {
		reviews[i].CreatedAt = now
		if err := models.Validate(&reviews[i]); err != nil {
			return fmt.Errorf("review %s: %w", reviews[i].Title, err)
		}
		if err := store.Reviews.Create(ctx, &reviews[i]); err != nil {
			return fmt.Errorf("review %s: %w", reviews[i].Title, err)
		}
	}

	aggregates := services.NewAggregateService(store, logger)
	for _, b := range bootcamps {
		aggregates.RecomputeAverageCost(ctx, b.ID)
		aggregates.RecomputeAverageRating(ctx, b.ID)
	}
	logger.Printf("Imported %d users, %d bootcamps, %d courses, %d reviews", len(users), len(bootcamps), len(courses), len(reviews))
	return nil
}

func destroy(ctx context.Context, store *repository.Store) error {
	return utils.RunParallelTasks(ctx,
		store.Bootcamps.DeleteAll,
		store.Courses.DeleteAll,
		store.Reviews.DeleteAll,
		store.Users.DeleteAll,
	)
}
