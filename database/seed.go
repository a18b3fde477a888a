package database

import (
	"fmt"
	"log"
	"os"

	"github.com/luma-learn/luma-api/model"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedDemoInstructor(); err != nil {
		return fmt.Errorf("failed to seed demo instructor: %w", err)
	}

	if err := s.SeedDemoCourses(); err != nil {
		return fmt.Errorf("failed to seed demo courses: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedDemoInstructor creates the demo instructor account. The id must
// match a subject the identity provider can issue, so it comes from
// SEED_INSTRUCTOR_ID; without it this seed is skipped.
func (s *Seeder) SeedDemoInstructor() error {
	instructorID := os.Getenv("SEED_INSTRUCTOR_ID")
	if instructorID == "" {
		log.Println("⏭️  SEED_INSTRUCTOR_ID not set, skipping demo instructor...")
		return nil
	}

	var count int64
	if err := s.db.Model(&model.User{}).Where("id = ?", instructorID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("⏭️  Demo instructor already exists, skipping...")
		return nil
	}

	name := "Demo Instructor"
	user := model.User{
		ID:    instructorID,
		Email: "instructor@luma.test",
		Name:  &name,
		Role:  model.RoleInstructor,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return err
	}

	log.Println("✅ Demo instructor created")
	return nil
}

// SeedDemoCourses creates a small free catalog owned by the demo
// instructor: enough structure to click through locally without touching
// the payment processor.
func (s *Seeder) SeedDemoCourses() error {
	instructorID := os.Getenv("SEED_INSTRUCTOR_ID")
	if instructorID == "" {
		log.Println("⏭️  SEED_INSTRUCTOR_ID not set, skipping demo courses...")
		return nil
	}

	var count int64
	if err := s.db.Model(&model.Course{}).Where("instructor_id = ?", instructorID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("⏭️  Demo courses already exist, skipping...")
		return nil
	}

	description := "A short demo course seeded for local development."
	courses := []struct {
		title    string
		chapters []string
	}{
		{"Getting Started with Go", []string{"Setup and Tooling", "Syntax Basics"}},
		{"Web APIs in Practice", []string{"Routing", "Persistence"}},
	}

	for _, c := range courses {
		course := model.Course{
			Title:        c.title,
			Description:  &description,
			Price:        0,
			InstructorID: instructorID,
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&course).Error; err != nil {
				return err
			}

			for _, title := range c.chapters {
				position, err := NextChapterPosition(tx, course.ID)
				if err != nil {
					return err
				}

				chapter := model.Chapter{
					CourseID: course.ID,
					Title:    title,
					Position: position,
				}
				if err := tx.Create(&chapter).Error; err != nil {
					return err
				}

				lessonPos, err := NextLessonPosition(tx, chapter.ID)
				if err != nil {
					return err
				}
				lesson := model.Lesson{
					ChapterID:      chapter.ID,
					Title:          "Introduction",
					YouTubeVideoID: "dQw4w9WgXcQ",
					Position:       lessonPos,
				}
				if err := tx.Create(&lesson).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Printf("✅ Seeded course: %s", c.title)
	}

	return nil
}

// RunSeeds is the entrypoint used by cmd/seed.
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}
