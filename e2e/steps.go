package e2e

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the trust registry is running$`, tc.registryIsRunning)

	// Mutation steps
	ctx.Step(`^"([^"]*)" is registered by "([^"]*)"$`, tc.registerEntity)
	ctx.Step(`^"([^"]*)" is registered by "([^"]*)" with initial score (\d+)$`, tc.registerEntityWithScore)
	ctx.Step(`^"([^"]*)" endorses "([^"]*)" with trust level (-?\d+(?:\.\d+)?)$`, tc.endorse)
	ctx.Step(`^"([^"]*)" revokes "([^"]*)"$`, tc.revoke)

	// Query steps
	ctx.Step(`^I verify "([^"]*)" for verifier "([^"]*)" with minimum score (\d+)$`, tc.verify)
	ctx.Step(`^I get the entity "([^"]*)"$`, tc.getEntity)
	ctx.Step(`^I get the trust chain of "([^"]*)"$`, tc.getChain)
	ctx.Step(`^I search with "([^"]*)"$`, tc.search)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should be (-?\d+(?:\.\d+)?)$`, tc.responseFieldShouldBeNumber)
	ctx.Step(`^the response field "([^"]*)" should be (true|false)$`, tc.responseFieldShouldBeBool)
	ctx.Step(`^the response field "([^"]*)" should be null$`, tc.responseFieldShouldBeNull)
	ctx.Step(`^the response field "([^"]*)" should have (\d+) items?$`, tc.responseFieldShouldHaveItems)
	ctx.Step(`^the trust path should be "([^"]*)"$`, tc.trustPathShouldBe)
}

func (tc *TestContext) registryIsRunning(context.Context) error {
	if err := tc.GET("/entities/search?limit=1"); err != nil {
		return err
	}
	return tc.responseStatusShouldBe(context.Background(), 200)
}

func (tc *TestContext) registerEntity(ctx context.Context, subject, issuer string) error {
	return tc.registerEntityWithScore(ctx, subject, issuer, 0)
}

func (tc *TestContext) registerEntityWithScore(ctx context.Context, subject, issuer string, score int) error {
	if err := tc.POST("/entities/register", map[string]any{
		"issuer": issuer, "subject": subject, "initial_trust_score": score,
	}); err != nil {
		return err
	}
	return tc.responseStatusShouldBe(ctx, 201)
}

func (tc *TestContext) endorse(_ context.Context, endorser, subject string, level float64) error {
	return tc.POST("/entities/endorse", map[string]any{
		"endorser": endorser, "subject": subject, "trust_level": level,
	})
}

func (tc *TestContext) revoke(_ context.Context, revoker, subject string) error {
	return tc.POST("/entities/revoke", map[string]any{"subject": subject, "revoker": revoker})
}

func (tc *TestContext) verify(_ context.Context, subject, verifier string, minimum int) error {
	return tc.POST("/entities/verify", map[string]any{
		"subject": subject, "verifier": verifier, "minimum_score": minimum,
	})
}

func (tc *TestContext) getEntity(_ context.Context, did string) error {
	return tc.GET("/entities/" + url.PathEscape(did))
}

func (tc *TestContext) getChain(_ context.Context, did string) error {
	return tc.GET("/entities/" + url.PathEscape(did) + "/chain")
}

func (tc *TestContext) search(_ context.Context, query string) error {
	return tc.GET("/entities/search?" + query)
}

func (tc *TestContext) responseStatusShouldBe(_ context.Context, expected int) error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no response received")
	}
	if tc.LastResponse.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, tc.LastResponse.StatusCode, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(_ context.Context, field, expected string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(value) != expected {
		return fmt.Errorf("expected %s to equal %q, got %v", field, expected, value)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldBeNumber(_ context.Context, field string, expected float64) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	n, ok := value.(float64)
	if !ok || n != expected {
		return fmt.Errorf("expected %s to be %v, got %v", field, expected, value)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldBeBool(_ context.Context, field, expected string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	want, _ := strconv.ParseBool(expected)
	if b, ok := value.(bool); !ok || b != want {
		return fmt.Errorf("expected %s to be %s, got %v", field, expected, value)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldBeNull(_ context.Context, field string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if value != nil {
		return fmt.Errorf("expected %s to be null, got %v", field, value)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldHaveItems(_ context.Context, field string, count int) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	items, ok := value.([]any)
	if !ok || len(items) != count {
		return fmt.Errorf("expected %s to have %d items, got %v", field, count, value)
	}
	return nil
}

func (tc *TestContext) trustPathShouldBe(_ context.Context, expected string) error {
	value, err := tc.GetResponseField("path")
	if err != nil {
		return err
	}
	want := []any{}
	if expected != "" {
		for _, did := range strings.Split(expected, ",") {
			want = append(want, strings.TrimSpace(did))
		}
	}
	if !reflect.DeepEqual(value, want) {
		return fmt.Errorf("expected path %v, got %v", want, value)
	}
	return nil
}
