package steps

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// parseValue turns table text into the JSON scalar a portal form would
// send.
func parseValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "":
		return nil
	}
	if number, err := strconv.ParseFloat(raw, 64); err == nil {
		return number
	}
	return raw
}

func (fc *FeatureContext) iResolveTheCatalogAs(fieldContext, role string) error {
	return fc.setResponse(fc.apiDriver.ResolveCatalog(fieldContext, role))
}

func (fc *FeatureContext) theResolvedCatalogShouldIncludeTheField(mode, name string) error {
	fc.require.Equal(http.StatusOK, fc.response.StatusCode)
	data := fc.decodeResponse()

	expected := fc.field(name).FieldName
	found := false
	for _, item := range data["fields"].([]any) {
		if item.(map[string]any)["field_name"] == expected {
			found = true
			break
		}
	}

	if mode == "include" {
		fc.require.True(found, "field %s missing from resolved catalog", expected)
	} else {
		fc.require.False(found, "field %s should not be resolved", expected)
	}
	return nil
}

func (fc *FeatureContext) iEvaluateARecordAsWith(fieldContext, role string, table *godog.Table) error {
	record := make(map[string]any, len(table.Rows))
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		record[fc.storedName(row.Cells[0].Value)] = parseValue(row.Cells[1].Value)
	}
	return fc.setResponse(fc.apiDriver.EvaluateRecord(fieldContext, role, record))
}

func (fc *FeatureContext) outcome(name string) map[string]any {
	fc.require.Equal(http.StatusOK, fc.response.StatusCode)
	data := fc.decodeResponse()

	expected := fc.field(name).FieldName
	for _, item := range data["fields"].([]any) {
		outcome := item.(map[string]any)
		if outcome["field_name"] == expected {
			return outcome
		}
	}
	fc.require.Failf("missing outcome", "no outcome for %s", expected)
	return nil
}

func (fc *FeatureContext) theFieldShouldBe(name, state string) error {
	fc.require.Equal(state == "visible", fc.outcome(name)["visible"])
	return nil
}

func (fc *FeatureContext) theFieldShouldHaveTheValue(name, value string) error {
	fc.require.Equal(value, fmt.Sprint(fc.outcome(name)["value"]))
	return nil
}

func (fc *FeatureContext) theEvaluationShouldReportADiagnosticFor(kind, name string) error {
	data := fc.decodeResponse()
	expected := fc.field(name).FieldName

	diagnostics, _ := data["diagnostics"].([]any)
	for _, item := range diagnostics {
		diagnostic := item.(map[string]any)
		if diagnostic["field_name"] == expected && diagnostic["kind"] == kind {
			return nil
		}
	}
	return fmt.Errorf("no %s diagnostic for %s in %v", kind, expected, diagnostics)
}

func (fc *FeatureContext) iReorderTheFieldsAsInOrder(fieldContext, role, names string) error {
	ids := make([]string, 0)
	for _, name := range strings.Split(names, ",") {
		ids = append(ids, fc.field(strings.TrimSpace(name)).ID)
	}
	return fc.setResponse(fc.apiDriver.ReorderFields(fieldContext, role, ids))
}

func (fc *FeatureContext) theFieldShouldHaveDisplayOrder(name string, order int) error {
	resp, err := fc.apiDriver.GetFieldDefinition(fc.field(name).ID)
	fc.require.NoError(err)
	fc.require.Equal(http.StatusOK, resp.StatusCode)

	var data map[string]any
	fc.require.NoError(fc.decodeBody(resp.Body, &data))
	fc.require.EqualValues(order, data["display_order"])
	return nil
}
