package model_test

import (
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"entitycore/src/domain/model"
)

var _ = Describe("Attributes", func() {
	It("keeps insertion order", func() {
		attrs := model.NewAttributes().With("b", 1).With("a", 2).With("c", 3)
		attrs.Set("b", 10)

		Expect(attrs.Keys()).To(Equal([]string{"b", "a", "c"}))
		value, ok := attrs.Get("b")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal(10))
	})

	It("sorts keys when built from a plain map", func() {
		attrs := model.AttributesFromMap(map[string]any{"z": 1, "a": 2, "m": 3})

		Expect(attrs.Keys()).To(Equal([]string{"a", "m", "z"}))
	})

	It("serializes to JSON in insertion order", func() {
		attrs := model.NewAttributes().
			With("name", "x").
			With("age", 10).
			With("address", model.NewAttributes().With("city", "Lisbon"))

		data, err := json.Marshal(attrs)
		Expect(err).NotTo(HaveOccurred())

		text := string(data)
		Expect(text).To(MatchJSON(`{"name":"x","age":10,"address":{"city":"Lisbon"}}`))
		Expect(strings.Index(text, `"name"`)).To(BeNumerically("<", strings.Index(text, `"age"`)))
		Expect(strings.Index(text, `"age"`)).To(BeNumerically("<", strings.Index(text, `"address"`)))
	})

	It("reads JSON back preserving order", func() {
		attrs := model.NewAttributes()
		Expect(json.Unmarshal([]byte(`{"b":1,"a":{"c":true}}`), attrs)).To(Succeed())

		Expect(attrs.Keys()).To(Equal([]string{"b", "a"}))
		nested, _ := attrs.Get("a")
		Expect(nested).To(Equal(map[string]any{"c": true}))
	})

	It("clones nested mappings deeply", func() {
		nested := model.NewAttributes().With("city", "Lisbon")
		plain := map[string]any{"tags": []any{"a"}}
		attrs := model.NewAttributes().With("address", nested).With("meta", plain)

		clone := attrs.Clone()
		nested.Set("city", "Porto")
		plain["tags"].([]any)[0] = "b"

		cloned, _ := clone.Get("address")
		city, _ := cloned.(*model.Attributes).Get("city")
		Expect(city).To(Equal("Lisbon"))

		meta, _ := clone.Get("meta")
		Expect(meta).To(Equal(map[string]any{"tags": []any{"a"}}))
	})

	It("compares content regardless of nested representation", func() {
		left := model.NewAttributes().With("a", 1).With("n", model.NewAttributes().With("x", "y"))
		right := model.NewAttributes().With("n", map[string]any{"x": "y"}).With("a", 1)

		Expect(left.Equal(right)).To(BeTrue())

		right.Set("a", int64(1))
		Expect(left.Equal(right)).To(BeFalse())
	})

	It("converts to plain maps", func() {
		attrs := model.NewAttributes().With("n", model.NewAttributes().With("x", 1))

		Expect(attrs.Map()).To(Equal(map[string]any{"n": map[string]any{"x": 1}}))
	})

	It("treats the zero value as empty", func() {
		var attrs model.Attributes

		Expect(attrs.Len()).To(Equal(0))
		Expect(attrs.Has("x")).To(BeFalse())
		data, err := attrs.MarshalJSON()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("{}"))
	})
})
