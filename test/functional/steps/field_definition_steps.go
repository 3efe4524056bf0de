package steps

import (
	"fmt"
	"net/http"
	"regexp"
)

const adminRole = "admin"

var referencePattern = regexp.MustCompile(`\{\{\s*([a-z0-9_]+)\s*\}\}`)

func (fc *FeatureContext) createField(fieldContext, role, name string, body map[string]any) (*http.Response, error) {
	body["field_name"] = fc.storedName(name)
	if _, ok := body["field_label"]; !ok {
		body["field_label"] = name
	}
	if _, ok := body["field_type"]; !ok {
		body["field_type"] = "text"
	}
	if _, ok := body["category"]; !ok {
		body["category"] = "general"
	}

	resp, err := fc.apiDriver.CreateFieldDefinition(fieldContext, role, body)
	if err != nil || resp.StatusCode != http.StatusCreated {
		return resp, err
	}

	var data map[string]any
	if err := fc.decodeBody(resp.Body, &data); err != nil {
		return nil, err
	}
	fc.fields[name] = createdField{
		ID:        data["id"].(string),
		FieldName: data["field_name"].(string),
		Context:   fieldContext,
	}
	fc.responseData = data
	return resp, nil
}

func (fc *FeatureContext) mustCreateField(fieldContext, name string, body map[string]any) error {
	resp, err := fc.createField(fieldContext, adminRole, name, body)
	fc.require.NoError(err)
	fc.require.Equal(http.StatusCreated, resp.StatusCode, "creating field %q", name)
	return nil
}

func (fc *FeatureContext) aFieldOfTypeInCategory(fieldContext, name, fieldType, category string) error {
	return fc.mustCreateField(fieldContext, name, map[string]any{
		"field_type": fieldType,
		"category":   category,
	})
}

func (fc *FeatureContext) aFormulaFieldComputing(fieldContext, name, formula string) error {
	formula = referencePattern.ReplaceAllStringFunc(formula, func(ref string) string {
		return fmt.Sprintf("{{%s}}", fc.storedName(referencePattern.FindStringSubmatch(ref)[1]))
	})
	return fc.mustCreateField(fieldContext, name, map[string]any{
		"field_type": "number",
		"read_only":  true,
		"value_conditional": map[string]any{
			"type":    "formula",
			"formula": formula,
		},
	})
}

func (fc *FeatureContext) aFieldShownWhen(fieldContext, name, controlling, operator, value string) error {
	return fc.mustCreateField(fieldContext, name, map[string]any{
		"display_conditional": map[string]any{
			"field":    fc.storedName(controlling),
			"operator": operator,
			"value":    parseValue(value),
		},
	})
}

func (fc *FeatureContext) aFieldVisibleOnlyTo(fieldContext, name, role string) error {
	return fc.mustCreateField(fieldContext, name, map[string]any{
		"visible_to_roles": []string{role},
	})
}

func (fc *FeatureContext) iCreateAFieldAs(fieldContext, name, fieldType, category, role string) error {
	return fc.setCreatedResponse(fc.createField(fieldContext, role, name, map[string]any{
		"field_type": fieldType,
		"category":   category,
	}))
}

func (fc *FeatureContext) iCreateAFieldWithTheRawName(fieldContext, rawName string) error {
	return fc.setResponse(fc.apiDriver.CreateFieldDefinition(fieldContext, adminRole, map[string]any{
		"field_name":  rawName,
		"field_label": rawName,
		"field_type":  "text",
		"category":    "general",
	}))
}

// setCreatedResponse keeps the body createField already decoded.
func (fc *FeatureContext) setCreatedResponse(resp *http.Response, err error) error {
	fc.require.NoError(err)
	decoded := fc.responseData
	fc.response = resp
	fc.responseData = nil
	if resp.StatusCode == http.StatusCreated {
		fc.responseData = decoded
	}
	return nil
}

func (fc *FeatureContext) iGetTheField(name string) error {
	return fc.setResponse(fc.apiDriver.GetFieldDefinition(fc.field(name).ID))
}

func (fc *FeatureContext) iListTheFields(fieldContext string) error {
	return fc.setResponse(fc.apiDriver.ListFieldDefinitions(fieldContext, 500))
}

func (fc *FeatureContext) theListShouldContainTheField(name string) error {
	var page PaginatedResponse[map[string]any]
	fc.require.NoError(fc.decodeBody(fc.response.Body, &page))

	expected := fc.field(name).FieldName
	for _, item := range page.Data {
		if item["field_name"] == expected {
			return nil
		}
	}
	return fmt.Errorf("field %s not found among %d listed definitions", expected, len(page.Data))
}

func (fc *FeatureContext) iChangeTheLabelOfFieldAs(name, label, role string) error {
	return fc.setResponse(fc.apiDriver.UpdateFieldDefinition(fc.field(name).ID, role, map[string]any{
		"field_label": label,
	}))
}

func (fc *FeatureContext) iDeleteTheFieldAs(name, role string) error {
	return fc.setResponse(fc.apiDriver.DeleteFieldDefinition(fc.field(name).ID, role))
}

func (fc *FeatureContext) theResponseShouldContainTheFieldWithLabelAndVersion(name, label string, version int) error {
	data := fc.decodeResponse()
	fc.require.Equal(fc.field(name).FieldName, data["field_name"])
	fc.require.Equal(label, data["field_label"])
	fc.require.EqualValues(version, data["version"])
	return nil
}

func (fc *FeatureContext) theResponseShouldListAValidationErrorOn(attribute string) error {
	data := fc.decodeResponse()
	details, ok := data["details"].([]any)
	fc.require.True(ok, "response has no details: %v", data)

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(attribute) + ":")
	for _, detail := range details {
		if pattern.MatchString(fmt.Sprint(detail)) {
			return nil
		}
	}
	return fmt.Errorf("no validation error on %s in %v", attribute, details)
}
