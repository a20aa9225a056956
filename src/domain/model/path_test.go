package model_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"entitycore/src/domain"
	"entitycore/src/domain/model"
	"entitycore/src/test_artefacts/stubs"
)

var _ = Describe("Path access", func() {
	var user *model.Entity

	BeforeEach(func() {
		userType := newUserType(stubs.NewBackendStub(), nil)

		attrs := model.NewAttributes().
			With("id", int64(1)).
			With("name", "a").
			With("placeholder", "").
			With("address", model.NewAttributes().
				With("city", "Lisbon").
				With("geo", map[string]any{"lat": 38.7, "lng": nil}))

		var err error
		user, err = userType.Hydrate(attrs)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Has", func() {
		It("checks direct keys for a single segment", func() {
			Expect(user.Has("name")).To(BeTrue())
			Expect(user.Has("missing")).To(BeFalse())
		})

		It("walks nested mappings", func() {
			Expect(user.Has("address.city")).To(BeTrue())
			Expect(user.Has("address.geo.lat")).To(BeTrue())
			Expect(user.Has("address.geo.lng")).To(BeFalse())
			Expect(user.Has("address.country")).To(BeFalse())
			Expect(user.Has("missing.a.b")).To(BeFalse())
			Expect(user.Has("name.first")).To(BeFalse())
		})
	})

	Describe("Get", func() {
		It("returns direct attributes for a single segment", func() {
			value, ok := user.Get("name")

			Expect(ok).To(BeTrue())
			Expect(value).To(Equal("a"))
		})

		It("resolves nested values", func() {
			value, ok := user.Get("address.geo.lat")

			Expect(ok).To(BeTrue())
			Expect(value).To(Equal(38.7))
		})

		It("returns absent on a missing path without failing", func() {
			value, ok := user.Get("a.b.c")

			Expect(ok).To(BeFalse())
			Expect(value).To(BeNil())
		})

		It("short-circuits on nil intermediates", func() {
			_, ok := user.Get("address.geo.lng.deep")

			Expect(ok).To(BeFalse())
		})
	})

	Describe("Set", func() {
		It("goes through transformers for a single segment", func() {
			Expect(user.Set("password", "pw")).To(Succeed())

			value, _ := user.Get("password")
			Expect(value).To(Equal("hashed:pw"))
		})

		It("rejects nil for a single segment", func() {
			Expect(user.Set("name", nil)).To(MatchError(domain.ErrInvalidArgument))
		})

		It("updates existing nested values in place", func() {
			Expect(user.Set("address.city", "Porto")).To(Succeed())
			Expect(user.Set("address.geo.lng", -9.1)).To(Succeed())

			city, _ := user.Get("address.city")
			Expect(city).To(Equal("Porto"))
			lng, _ := user.Get("address.geo.lng")
			Expect(lng).To(Equal(-9.1))
		})

		It("creates missing intermediate mappings", func() {
			Expect(user.Set("meta.tags.primary", "x")).To(Succeed())

			value, ok := user.Get("meta.tags.primary")
			Expect(ok).To(BeTrue())
			Expect(value).To(Equal("x"))
			Expect(user.MutatedAttributes().Keys()).To(Equal([]string{"meta"}))
		})

		It("replaces empty placeholders", func() {
			Expect(user.Set("placeholder.value", 1)).To(Succeed())

			value, _ := user.Get("placeholder.value")
			Expect(value).To(Equal(1))
		})

		It("refuses to descend into scalars", func() {
			err := user.Set("name.first", "b")

			Expect(err).To(MatchError(domain.ErrInvalidArgument))
			name, _ := user.Get("name")
			Expect(name).To(Equal("a"))
		})
	})

	Describe("Unset", func() {
		It("is not implemented", func() {
			Expect(user.Unset("name")).To(MatchError(domain.ErrUnimplemented))
			Expect(user.Has("name")).To(BeTrue())
		})
	})
})
