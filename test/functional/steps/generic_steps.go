package steps

import (
	"strings"
	"time"
)

func (fc *FeatureContext) waitForDuration(duration string) error {
	d, err := time.ParseDuration(strings.TrimSpace(duration))
	if err != nil {
		return err
	}
	time.Sleep(d)
	return nil
}

func (fc *FeatureContext) theResponseStatusCodeShouldBe(code int) error {
	fc.require.Equal(code, fc.response.StatusCode, "Unexpected status code")
	return nil
}
