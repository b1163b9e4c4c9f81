// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormModels "github.com/smartcooking/api/internal/infrastructure/persistence/gorm"
)

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, logLevel logger.LogLevel) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// bcrypt hash of "password", shared by all demo accounts
const demoPasswordHash = "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"

// SeedDatabase populates the database with demo data for local
// development. Safe to call repeatedly.
func SeedDatabase(db *gorm.DB) error {
	var userCount int64
	db.Model(&gormModels.UserModel{}).Count(&userCount)
	if userCount > 0 {
		return nil // Already seeded
	}

	gofakeit.Seed(42)

	demoUsers := []gormModels.UserModel{
		{
			Email:              "admin@smartcooking.vn",
			FullName:           "Quản Trị Viên",
			PasswordHash:       demoPasswordHash,
			Role:               "ADMIN",
			Provider:           "LOCAL",
			LanguagePreference: "vi",
			SpiceLevel:         "medium",
			IsActive:           true,
			EmailVerified:      true,
		},
		{
			Email:              "chef@smartcooking.vn",
			FullName:           "Đầu Bếp Minh",
			PasswordHash:       demoPasswordHash,
			Role:               "CHEF",
			Provider:           "LOCAL",
			LanguagePreference: "vi",
			SpiceLevel:         "hot",
			CuisinePreferences: gormModels.StringSlice{"vietnamese", "thai"},
			IsActive:           true,
			EmailVerified:      true,
		},
		{
			Email:               "user@smartcooking.vn",
			FullName:            "Người Dùng Thử",
			PasswordHash:        demoPasswordHash,
			Role:                "USER",
			Provider:            "LOCAL",
			LanguagePreference:  "vi",
			SpiceLevel:          "mild",
			DietaryRestrictions: gormModels.StringSlice{"vegetarian"},
			IsActive:            true,
			EmailVerified:       true,
		},
	}
	for i := range demoUsers {
		if err := db.Create(&demoUsers[i]).Error; err != nil {
			return fmt.Errorf("failed to create demo user: %w", err)
		}
	}

	categories := []gormModels.CategoryModel{
		{Name: "Món chính", Description: "Các món ăn chính trong bữa cơm"},
		{Name: "Món canh", Description: "Canh và súp"},
		{Name: "Món tráng miệng", Description: "Chè, bánh và đồ ngọt"},
		{Name: "Món ăn vặt", Description: "Đồ ăn nhẹ và ăn vặt"},
	}
	for i := range categories {
		if err := db.Create(&categories[i]).Error; err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
	}

	demoRecipes := []gormModels.RecipeModel{
		{
			Title:       "Phở bò truyền thống",
			Description: "Phở bò Hà Nội với nước dùng ninh xương trong 8 tiếng",
			AuthorID:    demoUsers[1].ID,
			CategoryID:  &categories[0].ID,
			Ingredients: mustJSON([]map[string]interface{}{
				{"name": "Bánh phở", "amount": 500, "unit": "g"},
				{"name": "Thịt bò", "amount": 300, "unit": "g"},
				{"name": "Xương bò", "amount": 1, "unit": "kg"},
				{"name": "Hành tây", "amount": 1, "unit": "củ"},
				{"name": "Gừng", "amount": 1, "unit": "củ"},
			}),
			Instructions: mustJSON([]string{
				"Ninh xương bò với gừng và hành nướng trong 8 tiếng",
				"Trụng bánh phở qua nước sôi",
				"Thái thịt bò mỏng, xếp lên bánh phở",
				"Chan nước dùng nóng, thêm hành lá và rau thơm",
			}),
			PrepTimeMinutes: 30,
			CookTimeMinutes: 480,
			Servings:        4,
			Calories:        450,
			Difficulty:      "hard",
			Region:          "north",
			IsPublic:        true,
			AverageRating:   4.9,
			ViewCount:       234,
		},
		{
			Title:       "Canh chua cá lóc",
			Description: "Canh chua miền Tây với cá lóc, me và rau thơm",
			AuthorID:    demoUsers[1].ID,
			CategoryID:  &categories[1].ID,
			Ingredients: mustJSON([]map[string]interface{}{
				{"name": "Cá lóc", "amount": 500, "unit": "g"},
				{"name": "Me chua", "amount": 50, "unit": "g"},
				{"name": "Cà chua", "amount": 2, "unit": "quả"},
				{"name": "Dọc mùng", "amount": 100, "unit": "g"},
			}),
			Instructions: mustJSON([]string{
				"Sơ chế cá lóc, cắt khúc",
				"Nấu nước me với cà chua",
				"Cho cá vào nấu chín",
				"Thêm dọc mùng và rau thơm, nêm nếm vừa ăn",
			}),
			PrepTimeMinutes: 20,
			CookTimeMinutes: 25,
			Servings:        4,
			Calories:        280,
			Difficulty:      "medium",
			Region:          "south",
			IsPublic:        true,
			AverageRating:   4.7,
			ViewCount:       156,
		},
		{
			Title:       "Gỏi cuốn tôm thịt",
			Description: "Gỏi cuốn tươi mát với tôm, thịt luộc và rau sống",
			AuthorID:    demoUsers[2].ID,
			CategoryID:  &categories[3].ID,
			Ingredients: mustJSON([]map[string]interface{}{
				{"name": "Bánh tráng", "amount": 20, "unit": "cái"},
				{"name": "Tôm", "amount": 300, "unit": "g"},
				{"name": "Thịt ba chỉ", "amount": 200, "unit": "g"},
				{"name": "Bún tươi", "amount": 200, "unit": "g"},
				{"name": "Rau sống", "amount": 1, "unit": "bó"},
			}),
			Instructions: mustJSON([]string{
				"Luộc tôm và thịt, thái mỏng",
				"Nhúng bánh tráng qua nước",
				"Cuốn tôm, thịt, bún và rau vào bánh tráng",
				"Pha nước chấm tương đậu phộng",
			}),
			PrepTimeMinutes: 40,
			CookTimeMinutes: 15,
			Servings:        4,
			Calories:        320,
			Difficulty:      "easy",
			Region:          "south",
			IsPublic:        true,
			AverageRating:   4.5,
			ViewCount:       98,
		},
	}
	for i := range demoRecipes {
		if err := db.Create(&demoRecipes[i]).Error; err != nil {
			return fmt.Errorf("failed to create demo recipe: %w", err)
		}
	}

	// Pad the catalog with generated recipes so list endpoints have
	// enough data to page through.
	for i := 0; i < 12; i++ {
		category := categories[i%len(categories)]
		rec := gormModels.RecipeModel{
			Title:       gofakeit.Dinner(),
			Description: gofakeit.Sentence(12),
			AuthorID:    demoUsers[1].ID,
			CategoryID:  &category.ID,
			Ingredients: mustJSON([]map[string]interface{}{
				{"name": gofakeit.Vegetable(), "amount": 200, "unit": "g"},
				{"name": gofakeit.Fruit(), "amount": 100, "unit": "g"},
			}),
			Instructions: mustJSON([]string{
				gofakeit.Sentence(8),
				gofakeit.Sentence(8),
				gofakeit.Sentence(8),
			}),
			PrepTimeMinutes: gofakeit.Number(5, 40),
			CookTimeMinutes: gofakeit.Number(10, 90),
			Servings:        gofakeit.Number(1, 6),
			Calories:        gofakeit.Number(150, 800),
			Difficulty:      []string{"easy", "medium", "hard"}[i%3],
			Region:          []string{"north", "central", "south"}[i%3],
			IsPublic:        true,
			AverageRating:   float64(gofakeit.Number(30, 50)) / 10,
			ViewCount:       gofakeit.Number(0, 500),
		}
		if err := db.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to create generated recipe: %w", err)
		}
	}

	path := gormModels.LearningPathModel{
		Title:         "Lộ trình nấu ăn cơ bản",
		Description:   "Học nấu ăn từ cơ bản đến nâng cao",
		Level:         "beginner",
		DurationWeeks: 8,
		TotalDishes:   16,
		RecipeIDs: gormModels.StringSlice{
			demoRecipes[2].ID.String(),
			demoRecipes[1].ID.String(),
			demoRecipes[0].ID.String(),
		},
		CreatedBy: demoUsers[1].ID,
	}
	if err := db.Create(&path).Error; err != nil {
		return fmt.Errorf("failed to create learning path: %w", err)
	}

	favorite := gormModels.FavoriteModel{
		UserID:   demoUsers[2].ID,
		RecipeID: demoRecipes[0].ID,
	}
	if err := db.Create(&favorite).Error; err != nil {
		return fmt.Errorf("failed to create favorite: %w", err)
	}

	return nil
}

func mustJSON(v interface{}) gormModels.JSONText {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return gormModels.JSONText(data)
}

// DemoUserIDs returns the seeded account IDs keyed by role, useful
// in tests.
func DemoUserIDs(db *gorm.DB) (map[string]uuid.UUID, error) {
	var users []gormModels.UserModel
	if err := db.Find(&users).Error; err != nil {
		return nil, err
	}
	ids := make(map[string]uuid.UUID, len(users))
	for _, u := range users {
		ids[u.Role] = u.ID
	}
	return ids, nil
}
