package router

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/luma-learn/luma-api/config"
	"github.com/luma-learn/luma-api/database"
	"github.com/luma-learn/luma-api/handlers"
	chapter_handlers "github.com/luma-learn/luma-api/handlers/chapter"
	course_handlers "github.com/luma-learn/luma-api/handlers/course"
	enrollment_handlers "github.com/luma-learn/luma-api/handlers/enrollment"
	lesson_handlers "github.com/luma-learn/luma-api/handlers/lesson"
	onboarding_handlers "github.com/luma-learn/luma-api/handlers/onboarding"
	webhook_handlers "github.com/luma-learn/luma-api/handlers/webhook"
	"github.com/luma-learn/luma-api/services"
	"github.com/luma-learn/luma-api/services/payments"
	"github.com/luma-learn/luma-api/utils/cache"
	"github.com/luma-learn/luma-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}
	if getEnv.STRIPE_SECRET_KEY == "" {
		log.Fatal("STRIPE_SECRET_KEY environment variable is not set")
	}

	db := store.GetDB()

	// Redis backs the cache revalidation signal. When it is unreachable
	// the signal degrades to a no-op and rendered pages go stale until
	// their own TTLs expire.
	var revalidator *cache.Revalidator
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Cache revalidation will be disabled.", err)
	} else {
		revalidator = cache.NewRevalidator(redisCache)
	}

	// Payment processor client
	stripeClient := payments.NewClient(payments.Config{
		SecretKey:     getEnv.STRIPE_SECRET_KEY,
		WebhookSecret: getEnv.STRIPE_WEBHOOK_SECRET,
	})

	// Identity-provider token verification
	authMiddleware := middleware.NewAuthMiddleware(getEnv.JWT_SECRET, getEnv.JWT_ISSUER, db)

	// Domain services
	userService := services.NewUserService(db)
	enrollmentService := services.NewEnrollmentService(db, userService, stripeClient, revalidator, getEnv.APP_URL)

	// Handlers
	courseHandler := course_handlers.NewCourseHandler(db, userService, stripeClient, revalidator)
	chapterHandler := chapter_handlers.NewChapterHandler(db, revalidator)
	lessonHandler := lesson_handlers.NewLessonHandler(db, revalidator)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(enrollmentService)
	onboardingHandler := onboarding_handlers.NewOnboardingHandler(userService)
	stripeWebhookHandler := webhook_handlers.NewStripeHandler(db, stripeClient, enrollmentService)

	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv.APP_URL,
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization,Stripe-Signature",
	}))

	// Health check
	app.Get("/health", handlers.HandleCheckHealth(store))

	api := app.Group("/api/v1")

	// Processor callbacks authenticate by signature, not bearer token
	api.Post("/webhooks/stripe", stripeWebhookHandler.HandleEvent)

	// Public catalog
	api.Get("/courses", courseHandler.ListCourses)
	api.Get("/courses/:id", courseHandler.GetCourse)

	// Onboarding
	api.Post("/onboarding/role", authMiddleware.Required(), onboardingHandler.SetRole)

	// Enrollment flow
	api.Post("/courses/:courseId/checkout", authMiddleware.Required(), enrollmentHandler.InitiateAccess)
	api.Get("/enrollments", authMiddleware.Required(), enrollmentHandler.ListOwn)

	// Authoring (instructor only)
	authoring := api.Group("", authMiddleware.Required())
	authoring.Get("/dashboard/courses", courseHandler.ListOwnCourses)
	authoring.Post("/courses", authMiddleware.RequireInstructor(), courseHandler.CreateCourse)
	authoring.Put("/courses/:id", courseHandler.UpdateCourse)
	authoring.Delete("/courses/:id", courseHandler.DeleteCourse)
	authoring.Post("/courses/:courseId/chapters", chapterHandler.CreateChapter)
	authoring.Put("/chapters/:id", chapterHandler.UpdateChapter)
	authoring.Delete("/chapters/:id", chapterHandler.DeleteChapter)
	authoring.Post("/chapters/:chapterId/lessons", lessonHandler.CreateLesson)
	authoring.Put("/lessons/:id", lessonHandler.UpdateLesson)
	authoring.Delete("/lessons/:id", lessonHandler.DeleteLesson)
}
