package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate enforces the fields a submission form marks as required. Generate
// never calls it; it exists for callers that want to reject incomplete forms.
func (in FounderInputs) Validate() error {
	trimmed := in
	trimmed.CompanyName = Normalize(in.CompanyName)
	trimmed.Industry = Normalize(in.Industry)
	trimmed.Stage = Normalize(in.Stage)
	trimmed.Description = Normalize(in.Description)
	trimmed.RevenueModel = Normalize(in.RevenueModel)
	trimmed.Traction = Normalize(in.Traction)
	trimmed.Team = Normalize(in.Team)

	err := validate.Struct(trimmed)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fieldLabel(fe.Field()))
	}
	return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
}

func fieldLabel(field string) string {
	switch field {
	case "CompanyName":
		return "company_name"
	case "RevenueModel":
		return "revenue_model"
	default:
		return strings.ToLower(field)
	}
}
