// Package composer builds timed training sessions targeted at an athlete's
// weakest categories.
package composer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
	"github.com/okian/pulse/pkg/metrics"
)

const defaultMaxExercises = 120

// sessionNamespace scopes name-based session IDs.
var sessionNamespace = uuid.MustParse("6f1c2b7e-3d4a-5b8c-9e0f-1a2b3c4d5e6f")

// Library supplies exercise templates.
type Library interface {
	Templates() []model.ExerciseTemplate
}

// Constraints are the caller's requirements for one session.
type Constraints struct {
	DurationMinutes int
	Intensity       types.Intensity
	// Focus overrides the profile's focus areas when non-empty.
	Focus []types.Category
	// Equipment available to the athlete. Empty means bodyweight only.
	Equipment []string
}

// Composer selects and scales templates. Compose is pure over its inputs
// and safe for concurrent use.
type Composer struct {
	library      Library
	maxExercises int
	log          logger.Logger
}

// NewComposer creates a composer over a template library.
func NewComposer(library Library, opts ...Option) *Composer {
	c := &Composer{
		library:      library,
		maxExercises: defaultMaxExercises,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logger.Get().Named("composer")
	}
	return c
}

// Compose builds a session. Focus templates come first, weakest category
// first, then general templates fill the remaining time and an eligible
// cooldown closes the session. Composition stops at the first exercise that
// meets the duration budget.
func (c *Composer) Compose(ctx context.Context, profile model.WeaknessProfile, athlete model.AthleteProfile, cons Constraints) (model.TrainingSession, error) {
	if cons.DurationMinutes <= 0 {
		metrics.RecordCompositionFailure("invalid_constraints")
		return model.TrainingSession{}, fmt.Errorf("%w: duration %d minutes", ErrInvalidConstraints, cons.DurationMinutes)
	}
	intensity, err := types.ParseIntensity(string(cons.Intensity))
	if err != nil {
		metrics.RecordCompositionFailure("invalid_constraints")
		return model.TrainingSession{}, fmt.Errorf("%w: %w", ErrInvalidConstraints, err)
	}
	tier, err := types.ParseTier(string(athlete.Tier))
	if err != nil {
		tier = types.TierIntermediate
	}

	focus := focusOrder(profile, cons.Focus)
	byCategory := c.eligible(ctx, cons.Equipment)

	budget := time.Duration(cons.DurationMinutes) * time.Minute
	mainBudget := budget
	var cooldown *model.TrainingExercise
	if cds := byCategory[types.CategoryCooldown]; len(cds) > 0 {
		ex := instantiate(cds[0], intensity, tier)
		// The cooldown is reserved only when it leaves room for focus work.
		if ex.Time() < budget {
			cooldown = &ex
			mainBudget -= ex.Time()
		}
	}

	var (
		exercises []model.TrainingExercise
		total     time.Duration
		focusPool []model.ExerciseTemplate
	)
	add := func(t model.ExerciseTemplate) {
		ex := instantiate(t, intensity, tier)
		exercises = append(exercises, ex)
		total += ex.Time()
	}

	for _, cat := range focus {
		for _, t := range byCategory[cat] {
			focusPool = append(focusPool, t)
			if total < mainBudget && len(exercises) < c.maxExercises {
				add(t)
			}
		}
	}

	fill := byCategory[types.CategoryGeneral]
	if len(fill) == 0 {
		fill = focusPool
	}
	if len(exercises) == 0 && len(fill) == 0 {
		metrics.RecordCompositionFailure("no_eligible")
		return model.TrainingSession{}, &NoEligibleExercisesError{Focus: focus, Equipment: cons.Equipment}
	}
	for i := 0; total < mainBudget && len(fill) > 0 && len(exercises) < c.maxExercises; i++ {
		add(fill[i%len(fill)])
	}

	if cooldown != nil {
		exercises = append(exercises, *cooldown)
		total += cooldown.Time()
	}

	session := model.TrainingSession{
		AthleteID:     athlete.ID,
		FocusCategory: types.CategoryGeneral,
		Exercises:     exercises,
		TotalDuration: total,
		Difficulty:    tier,
		Intensity:     intensity,
	}
	if len(focus) > 0 {
		session.FocusCategory = focus[0]
	}
	session.ID = sessionID(athlete, cons, intensity, tier, focus, exercises)
	session.Name, session.Description = describe(focus, cons.DurationMinutes, intensity)

	metrics.RecordSessionComposed(total.Seconds())
	c.log.Debug(ctx, "composed session",
		logger.String("session_id", session.ID),
		logger.Int("exercises", len(exercises)),
		logger.Duration("total", total))
	return session, nil
}

// eligible groups valid, equipment-compatible templates by category, each
// group sorted by ID.
func (c *Composer) eligible(ctx context.Context, equipment []string) map[types.Category][]model.ExerciseTemplate {
	have := make(map[string]bool, len(equipment))
	for _, e := range equipment {
		have[normalizeEquipment(e)] = true
	}

	out := make(map[types.Category][]model.ExerciseTemplate)
	for _, t := range c.library.Templates() {
		if !t.Valid() {
			c.log.Warn(ctx, "dropping invalid exercise template",
				logger.String("template_id", t.ID),
				logger.Int("base_sets", t.BaseSets),
				logger.Duration("base_duration", t.BaseDuration))
			continue
		}
		if !fits(t.EquipmentRequired, have) {
			continue
		}
		out[t.Category] = append(out[t.Category], t)
	}
	for _, ts := range out {
		sort.Slice(ts, func(i, j int) bool { return ts[i].ID < ts[j].ID })
	}
	return out
}

func fits(required []string, have map[string]bool) bool {
	for _, r := range required {
		n := normalizeEquipment(r)
		if n == "" || n == "bodyweight" || n == "none" {
			continue
		}
		if !have[n] {
			return false
		}
	}
	return true
}

func normalizeEquipment(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// focusOrder returns the explicit focus ordered by profile rank, or the
// profile's own focus areas. Categories the profile never ranked keep their
// given order after the ranked ones.
func focusOrder(profile model.WeaknessProfile, explicit []types.Category) []types.Category {
	if len(explicit) == 0 {
		return append([]types.Category(nil), profile.FocusAreas...)
	}
	seen := make(map[types.Category]bool, len(explicit))
	focus := make([]types.Category, 0, len(explicit))
	for _, c := range explicit {
		if !seen[c] {
			seen[c] = true
			focus = append(focus, c)
		}
	}
	sort.SliceStable(focus, func(i, j int) bool {
		ri, rj := profile.Rank(focus[i]), profile.Rank(focus[j])
		switch {
		case ri < 0:
			return false
		case rj < 0:
			return true
		default:
			return ri < rj
		}
	})
	return focus
}

func sessionID(athlete model.AthleteProfile, cons Constraints, intensity types.Intensity, tier types.Tier, focus []types.Category, exercises []model.TrainingExercise) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|%s|%s|", athlete.ID, cons.DurationMinutes, intensity, tier)
	for _, c := range focus {
		b.WriteString(string(c))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	equipment := make([]string, len(cons.Equipment))
	for i, e := range cons.Equipment {
		equipment[i] = normalizeEquipment(e)
	}
	sort.Strings(equipment)
	b.WriteString(strings.Join(equipment, ","))
	b.WriteByte('|')
	for _, e := range exercises {
		b.WriteString(e.ExerciseID)
		b.WriteByte(',')
	}
	return uuid.NewSHA1(sessionNamespace, []byte(b.String())).String()
}

func describe(focus []types.Category, minutes int, intensity types.Intensity) (string, string) {
	if len(focus) == 0 {
		return fmt.Sprintf("%d-Minute General Fitness", minutes),
			fmt.Sprintf("A %d-minute %s-intensity general fitness session.", minutes, intensity)
	}
	labels := make([]string, len(focus))
	for i, c := range focus {
		labels[i] = c.Label()
	}
	return fmt.Sprintf("%d-Minute %s Focus", minutes, focus[0].Label()),
		fmt.Sprintf("A %d-minute %s-intensity session targeting %s.", minutes, intensity, strings.Join(labels, " and "))
}
