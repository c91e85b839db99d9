// pkg/transformer/registry.go
package transformer

import (
	"fmt"

	"github.com/pgshield/anonymiser/pkg/model"
)

// Registry resolves transformer specs into callable transformers. It owns the
// shared pieces every transformer may need: the fake-corpus generator and the
// run-scoped uniqueness tracker.
type Registry struct {
	generator Generator
	tracker   *Tracker
}

// NewRegistry creates a registry around the given generator with a fresh
// uniqueness tracker.
func NewRegistry(generator Generator) *Registry {
	return &Registry{
		generator: generator,
		tracker:   NewTracker(),
	}
}

// Tracker exposes the run-scoped uniqueness tracker, mainly for tests and
// run summaries.
func (r *Registry) Tracker() *Tracker {
	return r.tracker
}

// Resolve validates spec and returns the transformer it names. Table and
// column scope the uniqueness key when the spec requests unique values.
//
// Resolution is cheap and side-effect free, so the configuration validator
// runs it eagerly for every column before any row is processed.
func (r *Registry) Resolve(table, column string, spec model.TransformerSpec) (Transformer, error) {
	switch spec.Name {
	case model.Error:
		return nil, fmt.Errorf("column %s.%s: %w", table, column, ErrUnconfiguredTransformer)
	case model.Identity:
		return Func(identity), nil
	case model.Fixed:
		value, ok := spec.Arg("value")
		if !ok {
			return nil, &MissingArgumentError{Transformer: string(model.Fixed), Argument: "value"}
		}
		return fixed{value: value}, nil
	case model.EmptyJson:
		return Func(emptyJSON), nil
	case model.Scramble:
		return scramble{}, nil
	case model.ScrambleBlank:
		return scramble{blank: true}, nil
	case model.ObfuscateDay:
		return Func(obfuscateDay), nil
	case model.FakePostCode:
		return Func(postCode), nil
	case model.FakePhoneNumber:
		return Func(phoneNumber), nil
	case model.FakeBase16String:
		return Func(fakeBase16), nil
	case model.FakeBase32String:
		return Func(fakeBase32), nil
	case model.FakeUUID:
		return Func(fakeUUID), nil
	case model.FakeIPv4:
		return Func(fakeIPv4), nil
	case model.FakeCity:
		return r.corpusTransformer(table, column, spec, CategoryCity), nil
	case model.FakeCompanyName:
		return r.corpusTransformer(table, column, spec, CategoryCompanyName), nil
	case model.FakeEmail:
		return r.corpusTransformer(table, column, spec, CategoryEmail), nil
	case model.FakeFirstName:
		return r.corpusTransformer(table, column, spec, CategoryFirstName), nil
	case model.FakeFullAddress:
		return r.corpusTransformer(table, column, spec, CategoryFullAddress), nil
	case model.FakeFullName:
		return r.corpusTransformer(table, column, spec, CategoryFullName), nil
	case model.FakeLastName:
		return r.corpusTransformer(table, column, spec, CategoryLastName), nil
	case model.FakeNationalIdentityNumber:
		return r.corpusTransformer(table, column, spec, CategoryNationalIdentityNumber), nil
	case model.FakeState:
		return r.corpusTransformer(table, column, spec, CategoryState), nil
	case model.FakeStreetAddress:
		return r.corpusTransformer(table, column, spec, CategoryStreetAddress), nil
	case model.FakeUsername:
		return r.corpusTransformer(table, column, spec, CategoryUsername), nil
	default:
		return nil, &UnknownTransformerError{Name: string(spec.Name)}
	}
}

// corpusTransformer builds a corpus-backed transformer, routed through the
// uniqueness tracker when the spec asks for unique values.
func (r *Registry) corpusTransformer(table, column string, spec model.TransformerSpec, category Category) Transformer {
	base := corpus{generator: r.generator, category: category}
	if !spec.Unique() {
		return base
	}
	return uniqueCorpus{
		corpus:  base,
		tracker: r.tracker,
		key:     Key{Table: table, Column: column},
	}
}
