package steps

func (fc *FeatureContext) iCallTheEndpoint(endpoint string) error {
	if endpoint == "readyz" {
		return fc.setResponse(fc.apiDriver.GetReadyz())
	}
	return fc.setResponse(fc.apiDriver.GetHealthz())
}

func (fc *FeatureContext) theResponseShouldReportStatus(status string) error {
	data := fc.decodeResponse()
	fc.require.Equal(status, data["status"])
	return nil
}
