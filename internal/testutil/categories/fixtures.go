package categories

// Fixture is a predefined set of custom categories for a test scenario.
type Fixture interface {
	Name() string
	Categories() []CategoryName
}

type fixture struct {
	name       string
	categories []CategoryName
}

func (f *fixture) Name() string               { return f.name }
func (f *fixture) Categories() []CategoryName { return f.categories }

// Predefined fixtures for common test scenarios.
var (
	// FixtureHousehold covers the custom categories a family budget typically adds.
	FixtureHousehold = &fixture{
		name: "Household",
		categories: []CategoryName{
			CategoryChildcare,
			CategoryPetCare,
			CategoryHomeImprovement,
			CategoryInsurance,
			CategoryGifts,
		},
	}

	// FixtureLifestyle covers discretionary spending categories.
	FixtureLifestyle = &fixture{
		name: "Lifestyle",
		categories: []CategoryName{
			CategoryCoffee,
			CategoryTravel,
			CategorySubscriptions,
			CategoryEducation,
		},
	}
)

// CompositeFixture combines fixtures, dropping repeated names.
type CompositeFixture struct {
	name     string
	fixtures []Fixture
}

// NewCompositeFixture creates a fixture that combines multiple fixtures.
func NewCompositeFixture(name string, fixtures ...Fixture) Fixture {
	return &CompositeFixture{name: name, fixtures: fixtures}
}

// Name implements Fixture.
func (c *CompositeFixture) Name() string { return c.name }

// Categories implements Fixture.
func (c *CompositeFixture) Categories() []CategoryName {
	seen := make(map[CategoryName]struct{})
	var categories []CategoryName

	for _, f := range c.fixtures {
		for _, cat := range f.Categories() {
			if _, exists := seen[cat]; !exists {
				seen[cat] = struct{}{}
				categories = append(categories, cat)
			}
		}
	}

	return categories
}
