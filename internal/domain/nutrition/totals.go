package nutrition

// NutrientTotals suma el aporte de cada ingrediente por clave de nutriente.
func NutrientTotals(ingredients []CandidateIngredient) map[string]float64 {
	out := map[string]float64{}
	for _, ing := range ingredients {
		for k, v := range ing.Nutrients {
			out[k] += v
		}
	}
	return out
}

// TotalWeightG suma los gramos de todos los ingredientes.
func TotalWeightG(ingredients []CandidateIngredient) float64 {
	var total float64
	for _, ing := range ingredients {
		total += ing.WeightG
	}
	return total
}

// PerThousandKcal normaliza un total de receta a densidad por 1000 kcal ME.
func PerThousandKcal(total, totalKcal float64) float64 {
	if totalKcal <= 0 {
		return 0
	}
	return total / (totalKcal / 1000)
}
