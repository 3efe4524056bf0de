package steps

import (
	"context"
	"encoding/json"
	"io"
	"loanportal-server/test/functional/driver"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type PaginatedResponse[T any] struct {
	Data       []T `json:"data"`
	Pagination struct {
		Total  int `json:"total"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	} `json:"pagination"`
}

// createdField tracks a definition made by a scenario under the short name
// the feature file uses. Stored names carry a per-scenario suffix so
// scenarios never collide with each other or with seeded definitions.
type createdField struct {
	ID        string
	FieldName string
	Context   string
}

type FeatureContext struct {
	apiDriver    *driver.APIDriver
	response     *http.Response
	responseData map[string]any
	suffix       string
	fields       map[string]createdField
	wsConn       *websocket.Conn
	require      *require.Assertions
	t            godog.TestingT
}

func NewFeatureContext(baseURL string) *FeatureContext {
	return &FeatureContext{
		apiDriver: driver.NewAPIDriver(baseURL),
	}
}

func (fc *FeatureContext) RegisterSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^wait for (.*)$`, fc.waitForDuration)
	ctx.Then(`^the response status code should be (\d+)$`, fc.theResponseStatusCodeShouldBe)

	ctx.When(`^I call the "(healthz|readyz)" endpoint$`, fc.iCallTheEndpoint)
	ctx.Then(`^the response should report status "([^"]*)"$`, fc.theResponseShouldReportStatus)

	ctx.Given(`^a "([^"]*)" field "([^"]*)" of type "([^"]*)" in category "([^"]*)"$`, fc.aFieldOfTypeInCategory)
	ctx.Given(`^a "([^"]*)" formula field "([^"]*)" computing "([^"]*)"$`, fc.aFormulaFieldComputing)
	ctx.Given(`^a "([^"]*)" field "([^"]*)" shown when "([^"]*)" (equals|not_equals|contains|greater_than|less_than|in) "([^"]*)"$`, fc.aFieldShownWhen)
	ctx.Given(`^a "([^"]*)" field "([^"]*)" visible only to "([^"]*)"$`, fc.aFieldVisibleOnlyTo)
	ctx.When(`^I create a "([^"]*)" field "([^"]*)" of type "([^"]*)" in category "([^"]*)" as "([^"]*)"$`, fc.iCreateAFieldAs)
	ctx.When(`^I create a "([^"]*)" field with the raw name "([^"]*)"$`, fc.iCreateAFieldWithTheRawName)
	ctx.When(`^I get the field "([^"]*)"$`, fc.iGetTheField)
	ctx.When(`^I list the "([^"]*)" fields$`, fc.iListTheFields)
	ctx.Then(`^the list should contain the field "([^"]*)"$`, fc.theListShouldContainTheField)
	ctx.When(`^I change the label of field "([^"]*)" to "([^"]*)" as "([^"]*)"$`, fc.iChangeTheLabelOfFieldAs)
	ctx.When(`^I delete the field "([^"]*)" as "([^"]*)"$`, fc.iDeleteTheFieldAs)
	ctx.Then(`^the response should contain the field "([^"]*)" with label "([^"]*)" and version (\d+)$`, fc.theResponseShouldContainTheFieldWithLabelAndVersion)
	ctx.Then(`^the response should list a validation error on "([^"]*)"$`, fc.theResponseShouldListAValidationErrorOn)

	ctx.When(`^I resolve the "([^"]*)" catalog as "([^"]*)"$`, fc.iResolveTheCatalogAs)
	ctx.Then(`^the resolved catalog should (include|exclude) the field "([^"]*)"$`, fc.theResolvedCatalogShouldIncludeTheField)
	ctx.When(`^I evaluate a "([^"]*)" record as "([^"]*)" with:$`, fc.iEvaluateARecordAsWith)
	ctx.Then(`^the field "([^"]*)" should be (visible|hidden)$`, fc.theFieldShouldBe)
	ctx.Then(`^the field "([^"]*)" should have the value "([^"]*)"$`, fc.theFieldShouldHaveTheValue)
	ctx.Then(`^the evaluation should report a "([^"]*)" diagnostic for "([^"]*)"$`, fc.theEvaluationShouldReportADiagnosticFor)
	ctx.When(`^I reorder the "([^"]*)" fields as "([^"]*)" in order "([^"]*)"$`, fc.iReorderTheFieldsAsInOrder)
	ctx.Then(`^the field "([^"]*)" should have display order (\d+)$`, fc.theFieldShouldHaveDisplayOrder)

	ctx.Given(`^I follow the "([^"]*)" change feed$`, fc.iFollowTheChangeFeed)
	ctx.Then(`^I should receive a "([^"]*)" change for the field "([^"]*)"$`, fc.iShouldReceiveAChangeForTheField)

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		fc.t = godog.T(ctx)
		fc.require = require.New(fc.t)

		fc.reset()
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		fc.cleanupWebSocket()
		return ctx, err
	})
}

func (fc *FeatureContext) reset() {
	fc.response = nil
	fc.responseData = nil
	fc.suffix = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	fc.fields = make(map[string]createdField)
}

// storedName maps a feature file name to the name actually sent. Names the
// scenario never created are passed through unchanged.
func (fc *FeatureContext) storedName(name string) string {
	if field, ok := fc.fields[name]; ok {
		return field.FieldName
	}
	return name + "_" + fc.suffix
}

func (fc *FeatureContext) field(name string) createdField {
	field, ok := fc.fields[name]
	fc.require.True(ok, "field %q was not created in this scenario", name)
	return field
}

func (fc *FeatureContext) decodeBody(body io.ReadCloser, target any) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(target)
}

func (fc *FeatureContext) decodeResponse() map[string]any {
	if fc.responseData != nil {
		return fc.responseData
	}
	var data map[string]any
	fc.require.NoError(fc.decodeBody(fc.response.Body, &data))
	fc.responseData = data
	return data
}

func (fc *FeatureContext) setResponse(resp *http.Response, err error) error {
	fc.require.NoError(err)
	fc.response = resp
	fc.responseData = nil
	return nil
}
