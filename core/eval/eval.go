// Package eval is the boundary between the grading core and the external
// formula evaluation service. It prepares the numeric inputs, splits the
// payload into a secret context (host-only) and a data context (visible to
// the evaluated formula), and coerces the result into a pass/fail verdict.
package eval

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

type (
	// Component is one gradeable component of a course, joined with the
	// student's recorded value. Value is nil when no note exists yet.
	Component struct {
		Name   string
		Type   string
		Weight float64
		Value  *float64
	}

	// SecretContext is only ever readable by the evaluator's host
	// functions, never by the evaluated formula.
	SecretContext struct {
		Token string `json:"token"`
		ID    int    `json:"id"`
	}

	// SecretHandle is an opaque capability the formula may pass back to
	// host functions but cannot mint or usefully inspect: Ref is a fresh
	// random identifier tying it to this single evaluation.
	SecretHandle struct {
		Tag          string `json:"__type"`
		Ref          string `json:"ref"`
		Token        string `json:"token"`
		ID           int    `json:"id"`
		UniversityID int    `json:"universityId"`
	}

	StudentData struct {
		FirstName string       `json:"firstName"`
		LastName  string       `json:"lastName"`
		Username  string       `json:"username"`
		ID        int          `json:"id"`
		Secret    SecretHandle `json:"secret_data"`
	}

	// Note is the zero-defaulted per-component view handed to the formula.
	Note struct {
		Name   string  `json:"name"`
		Weight float64 `json:"weight"`
		Type   string  `json:"type"`
		Note   float64 `json:"note"`
	}

	// DataContext is the formula's entire visible namespace: the
	// expression may reference student, final, total and notes.
	DataContext struct {
		Student StudentData `json:"student"`
		Final   float64     `json:"final"`
		Total   float64     `json:"total"`
		Notes   []Note      `json:"notes"`
	}

	// Evaluator is the external evaluation service: untrusted, potentially
	// slow, potentially failing. Implementations must honor ctx.
	Evaluator interface {
		Execute(ctx context.Context, source string, secret SecretContext, data DataContext) (bool, error)
	}

	// Verdict is the outcome of a grade evaluation. Nil fields mean "not
	// evaluated" (no formula, no schemas, or unset notes per the policy).
	Verdict struct {
		FinalGrade *float64 `json:"finalGrade"`
		Passed     *bool    `json:"passed"`
	}

	Boundary struct {
		evaluator Evaluator
		timeout   time.Duration
	}
)

// Error reports an invalid formula or a failing evaluator run. It is
// distinct from a computed false verdict: a formula that runs and returns
// false is a legitimate "failed the course" answer.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "formula evaluation failed: " + e.Reason
}

func NewBoundary(evaluator Evaluator, conf *core.Config) *Boundary {
	return &Boundary{evaluator: evaluator, timeout: conf.Evaluator.Timeout}
}

// Total computes the weighted total score, zero-defaulting unset values.
// An all-zero weight sum yields 0, not a division fault.
func Total(components []Component) float64 {
	var sum, weightSum float64
	for _, c := range components {
		sum += value(c) * c.Weight
		weightSum += c.Weight
	}
	if weightSum == 0 {
		weightSum = 1
	}
	return sum / weightSum
}

// FinalNote returns the value of the first component whose type is "final"
// (case-insensitive); 0 when none exists.
func FinalNote(components []Component) float64 {
	for _, c := range components {
		if strings.EqualFold(c.Type, "final") {
			return value(c)
		}
	}
	return 0
}

func value(c Component) float64 {
	if c.Value == nil {
		return 0
	}
	return *c.Value
}

func anySet(components []Component) bool {
	for _, c := range components {
		if c.Value != nil {
			return true
		}
	}
	return false
}

func allSet(components []Component) bool {
	for _, c := range components {
		if c.Value == nil {
			return false
		}
	}
	return len(components) > 0
}

// EvaluateReport runs the formula for a full grade report: evaluation
// happens whenever at least one component has a recorded note.
func (b *Boundary) EvaluateReport(
	ctx context.Context, formula string, usr user.User, universityID int, components []Component,
) (Verdict, error) {
	if formula == "" || !anySet(components) {
		return Verdict{}, nil
	}
	return b.run(ctx, formula, usr, universityID, components)
}

// EvaluateStrict runs the formula for a pass/fail status query: any unset
// component short-circuits to a null verdict instead of guessing.
func (b *Boundary) EvaluateStrict(
	ctx context.Context, formula string, usr user.User, universityID int, components []Component,
) (Verdict, error) {
	if formula == "" || !allSet(components) {
		return Verdict{}, nil
	}
	return b.run(ctx, formula, usr, universityID, components)
}

// ValidateFormula trial-runs a candidate formula against a synthetic
// all-100 dataset. A formula that cannot survive the trial is never
// persisted.
func (b *Boundary) ValidateFormula(ctx context.Context, formula string, usr user.User, universityID int) error {
	hundred := 100.0
	trial := []Component{
		{Name: "Final", Weight: 100, Type: "final", Value: &hundred},
		{Name: "Total", Weight: 100, Type: "exam", Value: &hundred},
		{Name: "Homework", Weight: 100, Type: "project", Value: &hundred},
	}
	_, err := b.run(ctx, formula, usr, universityID, trial)
	return err
}

func (b *Boundary) run(
	ctx context.Context, formula string, usr user.User, universityID int, components []Component,
) (Verdict, error) {
	total := Total(components)
	final := FinalNote(components)

	notes := make([]Note, 0, len(components))
	for _, c := range components {
		notes = append(notes, Note{Name: c.Name, Weight: c.Weight, Type: c.Type, Note: value(c)})
	}

	secret := SecretContext{Token: usr.Token, ID: usr.ID}
	data := DataContext{
		Student: StudentData{
			FirstName: usr.FirstName,
			LastName:  usr.LastName,
			Username:  usr.Username,
			ID:        usr.ID,
			Secret: SecretHandle{
				Tag:          "student",
				Ref:          uuid.New().String(),
				Token:        usr.Token,
				ID:           usr.ID,
				UniversityID: universityID,
			},
		},
		Final: final,
		Total: total,
		Notes: notes,
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	passed, err := b.evaluator.Execute(ctx, formula, secret, data)
	if err != nil {
		return Verdict{}, &Error{Reason: err.Error()}
	}
	return Verdict{FinalGrade: &total, Passed: &passed}, nil
}
