package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LensRequest asks the lens responder to validate a context. Context is
// opaque to the channel: any JSON value except null.
type LensRequest struct {
	Context any    `json:"context" validate:"required"`
	Zone    string `json:"zone,omitempty" validate:"omitempty,max=64"`
}

// LensIssue is one finding returned by the lens responder.
type LensIssue struct {
	Severity   string `json:"severity,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// UnmarshalJSON accepts either an issue object or a bare message string.
func (i *LensIssue) UnmarshalJSON(data []byte) error {
	var msg string
	if err := json.Unmarshal(data, &msg); err == nil {
		*i = LensIssue{Message: msg}
		return nil
	}
	type plain LensIssue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*i = LensIssue(p)
	return nil
}

// LensResult is the lens responder's verdict.
type LensResult struct {
	Valid   bool        `json:"valid"`
	Issues  []LensIssue `json:"issues,omitempty"`
	Summary string      `json:"summary,omitempty"`
}

// AnchorRequest asks the anchor responder to ground a statement. Every field
// is optional; the responder decides what an empty request means.
type AnchorRequest struct {
	Statement   string `json:"statement,omitempty" validate:"max=4096"`
	LensContext any    `json:"lensContext,omitempty"`
	Zone        string `json:"zone,omitempty" validate:"omitempty,max=64"`
}

// AnchorResult is the anchor responder's verdict. LensValidation is present
// when the anchor also ran lens validation.
type AnchorResult struct {
	Status         string          `json:"status,omitempty"`
	Checks         json.RawMessage `json:"checks,omitempty"`
	RequiredZone   string          `json:"requiredZone,omitempty"`
	CitedZone      string          `json:"citedZone,omitempty"`
	Correction     string          `json:"correction,omitempty"`
	LensValidation *LensResult     `json:"lens_validation,omitempty"`
}

// validatePayload runs struct tag validation and flattens the first failure
// into a readable error.
func validatePayload(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid payload: field %s failed %q", fe.Field(), fe.Tag())
	}
	return fmt.Errorf("invalid payload: %w", err)
}
