package stubs

import (
	"entitycore/src/domain/model"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-faker/faker/v4"
)

// AttributesStub builds user-like attribute sets with fake values.
type AttributesStub struct {
	attrs *model.Attributes
}

func NewAttributesStub() AttributesStub {
	attrs := model.NewAttributes().
		With("name", gofakeit.Name()).
		With("email", faker.Email()).
		With("age", gofakeit.Number(18, 90))

	return AttributesStub{attrs: attrs}
}

func (s AttributesStub) With(name string, value any) AttributesStub {
	attrs := s.attrs.Clone()
	attrs.Set(name, value)
	return AttributesStub{attrs: attrs}
}

func (s AttributesStub) WithID(id int64) AttributesStub {
	return s.With("id", id)
}

func (s AttributesStub) WithAddress() AttributesStub {
	address := model.NewAttributes().
		With("street", gofakeit.Street()).
		With("city", gofakeit.City()).
		With("zip", gofakeit.Zip())
	return s.With("address", address)
}

func (s AttributesStub) Without(name string) AttributesStub {
	attrs := s.attrs.Clone()
	attrs.Delete(name)
	return AttributesStub{attrs: attrs}
}

func (s AttributesStub) Get() *model.Attributes {
	return s.attrs.Clone()
}
