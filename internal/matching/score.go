package matching

import (
	"math"

	"github.com/reclaimhq/reclaim-backend/pkg/config"
	"github.com/reclaimhq/reclaim-backend/pkg/db/models"
)

// Score computes the weighted field similarity between a lost and a found
// report, rounded to two decimals. The weight table is convex (validated at
// config load), so the result stays in [0,1]. Fields absent on either side
// contribute zero through Similarity.
func Score(cfg config.MatchingConfig, lost, found *models.Item) float64 {
	total := cfg.LocationWeight*Similarity(deref(lost.Location), deref(found.Location)) +
		cfg.CategoryWeight*Similarity(deref(lost.Category), deref(found.Category)) +
		cfg.SubcategoryWeight*Similarity(deref(lost.Subcategory), deref(found.Subcategory)) +
		cfg.DescriptionWeight*Similarity(deref(lost.Description), deref(found.Description))
	return roundScore(total)
}

func roundScore(value float64) float64 {
	return math.Round(value*100) / 100
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
