// pkg/transformer/generator.go
package transformer

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/brianvoe/gofakeit/v7/source"
)

// Category names one kind of synthetic value the corpus can produce.
type Category string

const (
	CategoryCity                   Category = "city"
	CategoryCompanyName            Category = "company_name"
	CategoryEmail                  Category = "email"
	CategoryFirstName              Category = "first_name"
	CategoryFullAddress            Category = "full_address"
	CategoryFullName               Category = "full_name"
	CategoryLastName               Category = "last_name"
	CategoryNationalIdentityNumber Category = "national_identity_number"
	CategoryState                  Category = "state"
	CategoryStreetAddress          Category = "street_address"
	CategoryUsername               Category = "username"
)

// Generator supplies one synthetic value per call for a named category.
// The engine only depends on this capability, so tests can swap in a
// deterministic stub.
type Generator interface {
	GenerateFake(category Category) string
}

// CorpusGenerator is the default Generator, backed by gofakeit. It is safe
// for concurrent use.
type CorpusGenerator struct {
	faker *gofakeit.Faker
}

// NewCorpusGenerator creates a generator seeded from a crypto source.
func NewCorpusGenerator() *CorpusGenerator {
	return &CorpusGenerator{
		faker: gofakeit.NewFaker(source.NewCrypto(), true),
	}
}

// GenerateFake returns one random value from the category's corpus.
func (g *CorpusGenerator) GenerateFake(category Category) string {
	switch category {
	case CategoryCity:
		return g.faker.City()
	case CategoryCompanyName:
		return g.faker.Company()
	case CategoryEmail:
		return g.faker.Email()
	case CategoryFirstName:
		return g.faker.FirstName()
	case CategoryFullAddress:
		return g.faker.Address().Address
	case CategoryFullName:
		return g.faker.Name()
	case CategoryLastName:
		return g.faker.LastName()
	case CategoryNationalIdentityNumber:
		return g.faker.SSN()
	case CategoryState:
		return g.faker.State()
	case CategoryStreetAddress:
		return g.faker.Street()
	case CategoryUsername:
		return g.faker.Username()
	default:
		return ""
	}
}
