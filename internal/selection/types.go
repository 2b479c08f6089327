package selection

import "learning-service/internal/models"

// WeightedQuestion is a bank question with its computed selection weight.
type WeightedQuestion struct {
	Question    models.ExamQuestion `json:"question"`
	Weight      float64             `json:"weight"`
	TagMatches  int                 `json:"tag_matches"`
	MatchedTags []string            `json:"matched_tags"`
}

// Criteria drives exam paper generation from the question bank.
type Criteria struct {
	Difficulty     string   `json:"difficulty"`
	TopicTags      []string `json:"topic_tags"`
	ExcludeIDs     []string `json:"exclude_ids"`
	Count          int      `json:"count"`
	MinTagMatch    int      `json:"min_tag_match"`
	WeightExponent float64  `json:"weight_exponent"`
}

// Result contains a generated paper and selection metadata.
type Result struct {
	Questions       []models.ExamQuestion `json:"questions"`
	TotalCandidates int                   `json:"total_candidates"`
	AverageMatch    float64               `json:"average_match"`
}

func DefaultCriteria() *Criteria {
	return &Criteria{
		Count:          10,
		MinTagMatch:    0,
		WeightExponent: 2.0,
	}
}
