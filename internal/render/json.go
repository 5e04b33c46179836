package render

import (
	"encoding/json"

	"corpagent/internal/schema"
)

type jsonRenderer struct{}

func (r *jsonRenderer) Render(report *schema.ComplianceReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
