package selection

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"learning-service/internal/models"
)

// WeightedSelector assembles exam papers by weighted random selection from
// the question bank: questions sharing more topic tags with the exam are
// proportionally more likely to be drawn.
type WeightedSelector struct {
	rand *rand.Rand
}

func NewWeightedSelector() *WeightedSelector {
	return &WeightedSelector{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededSelector pins the random source, for deterministic tests.
func NewSeededSelector(seed int64) *WeightedSelector {
	return &WeightedSelector{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// SelectQuestions picks criteria.Count questions from the candidates.
func (s *WeightedSelector) SelectQuestions(questions []models.ExamQuestion, criteria *Criteria) (*Result, error) {
	if criteria == nil {
		criteria = DefaultCriteria()
	}

	weighted := s.calculateWeights(questions, criteria)
	if criteria.MinTagMatch > 0 {
		weighted = s.filterByMinMatch(weighted, criteria.MinTagMatch)
	}

	if len(weighted) == 0 {
		return &Result{Questions: []models.ExamQuestion{}, TotalCandidates: 0}, nil
	}

	selected := s.weightedRandomSelect(weighted, criteria.Count)

	result := &Result{
		Questions:       make([]models.ExamQuestion, len(selected)),
		TotalCandidates: len(weighted),
		AverageMatch:    s.averageMatch(selected),
	}
	for i, wq := range selected {
		result.Questions[i] = wq.Question
	}
	return result, nil
}

func (s *WeightedSelector) calculateWeights(questions []models.ExamQuestion, criteria *Criteria) []WeightedQuestion {
	weighted := make([]WeightedQuestion, 0, len(questions))
	for _, question := range questions {
		if !question.IsActive {
			continue
		}
		if s.isExcluded(question.ID.Hex(), criteria.ExcludeIDs) {
			continue
		}
		if criteria.Difficulty != "" && question.Difficulty != criteria.Difficulty {
			continue
		}

		matches, matchedTags := s.countTagMatches(question.TopicTags, criteria.TopicTags)
		weighted = append(weighted, WeightedQuestion{
			Question:    question,
			Weight:      s.calculateWeight(matches, criteria.WeightExponent),
			TagMatches:  matches,
			MatchedTags: matchedTags,
		})
	}
	return weighted
}

// calculateWeight raises the match count to the configured exponent; a
// question with no matching tags still gets a small base weight so sparse
// banks remain usable.
func (s *WeightedSelector) calculateWeight(matches int, exponent float64) float64 {
	if exponent <= 0 {
		exponent = 2.0
	}
	return 1.0 + math.Pow(float64(matches), exponent)
}

func (s *WeightedSelector) countTagMatches(questionTags, wantedTags []string) (int, []string) {
	if len(wantedTags) == 0 {
		return 0, nil
	}
	wanted := make(map[string]bool, len(wantedTags))
	for _, tag := range wantedTags {
		wanted[strings.ToLower(tag)] = true
	}
	matched := make([]string, 0)
	for _, tag := range questionTags {
		if wanted[strings.ToLower(tag)] {
			matched = append(matched, tag)
		}
	}
	return len(matched), matched
}

func (s *WeightedSelector) isExcluded(id string, excludeIDs []string) bool {
	for _, excluded := range excludeIDs {
		if id == excluded {
			return true
		}
	}
	return false
}

func (s *WeightedSelector) filterByMinMatch(questions []WeightedQuestion, minMatch int) []WeightedQuestion {
	filtered := make([]WeightedQuestion, 0, len(questions))
	for _, q := range questions {
		if q.TagMatches >= minMatch {
			filtered = append(filtered, q)
		}
	}
	return filtered
}

// weightedRandomSelect draws count questions without replacement, each draw
// proportional to the remaining weights.
func (s *WeightedSelector) weightedRandomSelect(candidates []WeightedQuestion, count int) []WeightedQuestion {
	if count >= len(candidates) {
		result := make([]WeightedQuestion, len(candidates))
		copy(result, candidates)
		return result
	}

	pool := make([]WeightedQuestion, len(candidates))
	copy(pool, candidates)
	selected := make([]WeightedQuestion, 0, count)

	for len(selected) < count && len(pool) > 0 {
		totalWeight := 0.0
		for _, q := range pool {
			totalWeight += q.Weight
		}

		target := s.rand.Float64() * totalWeight
		cumulative := 0.0
		picked := len(pool) - 1
		for i, q := range pool {
			cumulative += q.Weight
			if target <= cumulative {
				picked = i
				break
			}
		}

		selected = append(selected, pool[picked])
		pool = append(pool[:picked], pool[picked+1:]...)
	}
	return selected
}

func (s *WeightedSelector) averageMatch(selected []WeightedQuestion) float64 {
	if len(selected) == 0 {
		return 0
	}
	total := 0
	for _, q := range selected {
		total += q.TagMatches
	}
	return float64(total) / float64(len(selected))
}
