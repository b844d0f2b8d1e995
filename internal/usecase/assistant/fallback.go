package assistant

import (
	"strings"

	"shopqa/internal/application/port/output"
	"shopqa/internal/domain/entity"
)

const (
	LocatorNotFound     = "Unable to find element"
	QuestionUnavailable = "Unable to process question at this time."
)

type product struct {
	Name  string
	Price float64
	ID    string
}

var saucedemoProducts = []product{
	{Name: "Sauce Labs Backpack", Price: 29.99, ID: "sauce-labs-backpack"},
	{Name: "Sauce Labs Bike Light", Price: 9.99, ID: "sauce-labs-bike-light"},
	{Name: "Sauce Labs Bolt T-Shirt", Price: 15.99, ID: "sauce-labs-bolt-t-shirt"},
	{Name: "Sauce Labs Fleece Jacket", Price: 49.99, ID: "sauce-labs-fleece-jacket"},
	{Name: "Sauce Labs Onesie", Price: 7.99, ID: "sauce-labs-onesie"},
	{Name: "Test.allTheThings() T-Shirt (Red)", Price: 15.99, ID: "test.allthethings()-t-shirt-(red)"},
}

type dataCategory string

const (
	categoryUsers    dataCategory = "users"
	categoryProducts dataCategory = "products"
	categoryCheckout dataCategory = "checkout"
	categoryMixed    dataCategory = "mixed"
)

// categorize matches a free-form data kind against the known categories.
func categorize(kind string) dataCategory {
	k := strings.ToLower(kind)
	switch {
	case strings.Contains(k, "user"), strings.Contains(k, "login"):
		return categoryUsers
	case strings.Contains(k, "product"):
		return categoryProducts
	case strings.Contains(k, "checkout"), strings.Contains(k, "billing"):
		return categoryCheckout
	default:
		return categoryMixed
	}
}

// testDataFallback builds a fresh kind-specific data set on every call so
// callers may mutate what they get.
func testDataFallback(kind string, users output.UserCatalog) entity.DataSet {
	switch categorize(kind) {
	case categoryUsers:
		return users.Records()
	case categoryProducts:
		out := make(entity.DataSet, 0, len(saucedemoProducts))
		for _, p := range saucedemoProducts {
			out = append(out, entity.Record{"name": p.Name, "price": p.Price, "id": p.ID})
		}
		return out
	case categoryCheckout:
		return entity.DataSet{
			{"firstName": "John", "lastName": "Doe", "postalCode": "12345"},
			{"firstName": "Jane", "lastName": "Smith", "postalCode": "90210"},
			{"firstName": "Alex", "lastName": "Johnson", "postalCode": "10001"},
		}
	default:
		return entity.DataSet{
			{"username": "standard_user", "password": users.CommonPassword()},
			{"name": saucedemoProducts[0].Name, "id": saucedemoProducts[0].ID},
		}
	}
}

func scenariosFallback() []entity.Scenario {
	return []entity.Scenario{
		{
			TestName:       "SauceDemo Login Test",
			Description:    "User logs in with valid credentials",
			Steps:          []string{"Navigate to SauceDemo", "Enter username: standard_user", "Enter password: secret_sauce", "Click login"},
			ExpectedResult: "User successfully logged in and sees product inventory",
		},
		{
			TestName:       "Add Product to Cart",
			Description:    "User adds a product to shopping cart",
			Steps:          []string{"Login as standard_user", "Click add to cart for Sauce Labs Backpack", "Verify cart badge shows 1"},
			ExpectedResult: "Product added to cart successfully",
		},
	}
}

// analysisFallback is used when the call fails or the returned object is malformed.
func analysisFallback() entity.FailureAnalysis {
	return entity.FailureAnalysis{
		PossibleCauses: []string{"Unknown error"},
		SuggestedFixes: []string{"Manual investigation needed"},
		Severity:       entity.SeverityHigh,
	}
}

// analysisProseFallback is used when the agent answered without any object literal.
func analysisProseFallback() entity.FailureAnalysis {
	return entity.FailureAnalysis{
		PossibleCauses: []string{"Network timeout", "Element not found", "Page load issue"},
		SuggestedFixes: []string{"Increase timeout", "Update locators", "Add wait conditions"},
		Severity:       entity.SeverityMedium,
	}
}

func locatorsFallback() []entity.LocatorSuggestion {
	return []entity.LocatorSuggestion{
		{Locator: `[data-test="element"]`, Type: "css", Reliability: 9},
		{Locator: "#element-id", Type: "css", Reliability: 8},
	}
}
