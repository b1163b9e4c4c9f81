package aiproxy

// Canned responses returned when the AI microservice cannot answer.
// Clients treat these as normal results, so all of them report
// success except the voice fallback, where a transcript cannot be
// faked. Most features wrap their body in a data object; vision and
// voice respond with flat bodies.

// ChatFallback returns the degraded chat response.
func ChatFallback() map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"response": "Xin lỗi, tôi đang gặp sự cố kỹ thuật. Vui lòng thử lại sau.",
			"model":    "fallback",
		},
	}
}

// RecipeFallback returns a minimal recipe built from the requested
// ingredients.
func RecipeFallback(ingredients []string) map[string]interface{} {
	if ingredients == nil {
		ingredients = []string{}
	}
	return map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"recipe": map[string]interface{}{
				"title":       "Món ăn đơn giản",
				"ingredients": ingredients,
				"instructions": []string{
					"Sơ chế nguyên liệu",
					"Chế biến theo cách thông thường",
					"Nêm nếm vừa ăn",
				},
				"cook_time":  30,
				"difficulty": "Trung bình",
			},
			"model": "fallback",
		},
	}
}

// VisionFallback returns a generic dish detection for the uploaded
// image.
func VisionFallback(filename string) map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"detected_foods": []map[string]interface{}{
			{
				"name":       "Món ăn Việt Nam",
				"confidence": 0.8,
				"category":   "vietnamese",
			},
		},
		"filename": filename,
	}
}

// IngredientsFallback returns generic ingredient suggestions.
func IngredientsFallback() map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"main_ingredients": []string{"Nguyên liệu chính"},
			"seasonings":       []string{"Gia vị cơ bản"},
			"vegetables":       []string{"Rau củ tươi"},
			"cooking_tips":     []string{"Chế biến theo cách truyền thống"},
		},
	}
}

// LearningPathFallback returns the default beginner path.
func LearningPathFallback() map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"title":          "Lộ trình nấu ăn cơ bản",
			"duration_weeks": 8,
			"total_dishes":   16,
			"description":    "Học nấu ăn từ cơ bản đến nâng cao",
		},
	}
}

// NutritionFallback returns an average nutritional estimate.
func NutritionFallback() map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"per_serving": map[string]interface{}{
				"calories": 300,
				"protein":  15,
				"fat":      10,
				"carbs":    35,
			},
			"health_assessment": map[string]interface{}{
				"score":           70,
				"grade":           "B",
				"recommendations": []string{"Cân bằng dinh dưỡng"},
			},
		},
	}
}

// VoiceFallback reports failure: speech recognition has no sensible
// canned substitute.
func VoiceFallback() map[string]interface{} {
	return map[string]interface{}{
		"success": false,
		"error":   "Không thể xử lý giọng nói. Vui lòng thử lại.",
	}
}
