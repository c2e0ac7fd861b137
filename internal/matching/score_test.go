package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaimhq/reclaim-backend/pkg/config"
	"github.com/reclaimhq/reclaim-backend/pkg/db/models"
)

func defaultMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		Threshold:         0.70,
		WindowDays:        7,
		LocationWeight:    0.30,
		CategoryWeight:    0.20,
		SubcategoryWeight: 0.15,
		DescriptionWeight: 0.35,
	}
}

func itemWithFields(location, category, subcategory, description string) *models.Item {
	item := &models.Item{}
	if location != "" {
		item.Location = &location
	}
	if category != "" {
		item.Category = &category
	}
	if subcategory != "" {
		item.Subcategory = &subcategory
	}
	if description != "" {
		item.Description = &description
	}
	return item
}

func TestScorePerfectMatch(t *testing.T) {
	cfg := defaultMatchingConfig()
	require.NoError(t, cfg.Validate())

	lost := itemWithFields("Library", "Electronics", "Laptop", "Silver MacBook Pro")
	found := itemWithFields("library", "electronics", "laptop", "silver macbook pro")
	assert.Equal(t, 1.00, Score(cfg, lost, found))
}

func TestScoreBounds(t *testing.T) {
	cfg := defaultMatchingConfig()
	lost := itemWithFields("Library", "Electronics", "Laptop", "Silver MacBook Pro with stickers")
	candidates := []*models.Item{
		itemWithFields("Science Building", "Clothing", "Jacket", "Blue denim jacket"),
		itemWithFields("Library", "", "", ""),
		itemWithFields("", "", "", ""),
		itemWithFields("library", "electronics", "laptop", "silver macbook pro with stickers"),
	}
	for _, candidate := range candidates {
		got := Score(cfg, lost, candidate)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestScoreNoComparableFieldsIsZero(t *testing.T) {
	cfg := defaultMatchingConfig()
	lost := itemWithFields("Library", "", "", "")
	found := itemWithFields("", "Electronics", "", "")
	assert.Zero(t, Score(cfg, lost, found))
}

func TestScoreLibraryLaptopScenario(t *testing.T) {
	cfg := defaultMatchingConfig()
	lost := itemWithFields("Library", "Electronics", "Laptop", "Silver MacBook Pro with stickers")
	found := itemWithFields("Library", "Electronics", "Laptop", "Silver Apple laptop found in library")

	got := Score(cfg, lost, found)
	assert.GreaterOrEqual(t, got, cfg.Threshold, "matching fields should clear the threshold")
	assert.Less(t, got, 1.0, "description wording difference keeps the score below perfect")
}

func TestScoreDissimilarLocationDropsBelowThreshold(t *testing.T) {
	cfg := defaultMatchingConfig()
	lost := itemWithFields("Library", "Electronics", "Laptop", "Silver MacBook Pro with stickers")
	found := itemWithFields("Science Building", "Electronics", "Laptop", "Silver Apple laptop found in library")

	got := Score(cfg, lost, found)
	assert.Less(t, got, cfg.Threshold)
}

func TestScoreRoundsToTwoDecimals(t *testing.T) {
	cfg := config.MatchingConfig{
		Threshold:         0.70,
		WindowDays:        7,
		DescriptionWeight: 1.0,
	}
	// 9 of 13+13 bigrams shared: dice 18/26 = 0.6923, rounded 0.69.
	lost := itemWithFields("", "", "", "abcdefghijklmn")
	found := itemWithFields("", "", "", "abcdefghijwxyz")
	assert.Equal(t, 0.69, Score(cfg, lost, found))
}
