package outcome

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/course-outcomes-api/internal/models"
)

type pairKey struct {
	left  string
	right string
}

// ScoreStore is a read-only index of recorded scores keyed by (student, component).
type ScoreStore struct {
	scores map[pairKey]decimal.Decimal
}

// NewScoreStore indexes the given rows. Rows without a value are treated as ungraded.
func NewScoreStore(rows []models.Score) *ScoreStore {
	s := &ScoreStore{scores: make(map[pairKey]decimal.Decimal, len(rows))}
	for _, row := range rows {
		if !row.Score.Valid {
			continue
		}
		s.scores[pairKey{row.StudentID, row.ComponentID}] = row.Score.Decimal
	}
	return s
}

// Score returns the recorded score and whether one exists.
func (s *ScoreStore) Score(studentID, componentID string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	v, ok := s.scores[pairKey{studentID, componentID}]
	return v, ok
}

// programLink is one learning outcome feeding a program outcome.
type programLink struct {
	outcomeID string
	weight    int
}

// WeightStore is a read-only index over component→outcome and outcome→program weights.
type WeightStore struct {
	componentOutcome map[pairKey]int
	outcomeProgram   map[pairKey]int
	byProgram        map[string][]programLink
}

// NewWeightStore indexes both weight tables. Non-positive weights are dropped since they cannot contribute.
func NewWeightStore(componentOutcome []models.ComponentOutcomeWeight, outcomeProgram []models.OutcomeProgramWeight) *WeightStore {
	w := &WeightStore{
		componentOutcome: make(map[pairKey]int, len(componentOutcome)),
		outcomeProgram:   make(map[pairKey]int, len(outcomeProgram)),
		byProgram:        make(map[string][]programLink),
	}
	for _, row := range componentOutcome {
		if row.Weight <= 0 {
			continue
		}
		w.componentOutcome[pairKey{row.ComponentID, row.OutcomeID}] = row.Weight
	}
	for _, row := range outcomeProgram {
		if row.Weight <= 0 {
			continue
		}
		key := pairKey{row.OutcomeID, row.ProgramOutcomeID}
		if _, dup := w.outcomeProgram[key]; dup {
			w.outcomeProgram[key] = row.Weight
			links := w.byProgram[row.ProgramOutcomeID]
			for i := range links {
				if links[i].outcomeID == row.OutcomeID {
					links[i].weight = row.Weight
				}
			}
			continue
		}
		w.outcomeProgram[key] = row.Weight
		w.byProgram[row.ProgramOutcomeID] = append(w.byProgram[row.ProgramOutcomeID], programLink{outcomeID: row.OutcomeID, weight: row.Weight})
	}
	return w
}

// ComponentOutcome returns the weight of a component toward an outcome, zero when absent.
func (w *WeightStore) ComponentOutcome(componentID, outcomeID string) int {
	if w == nil {
		return 0
	}
	return w.componentOutcome[pairKey{componentID, outcomeID}]
}

// OutcomeProgram returns the weight of an outcome toward a program outcome, zero when absent.
func (w *WeightStore) OutcomeProgram(outcomeID, programOutcomeID string) int {
	if w == nil {
		return 0
	}
	return w.outcomeProgram[pairKey{outcomeID, programOutcomeID}]
}

func (w *WeightStore) programLinks(programOutcomeID string) []programLink {
	if w == nil {
		return nil
	}
	return w.byProgram[programOutcomeID]
}
