package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		result := Truncate("this is a long string", 10)
		Expect(result).To(Equal("this is a ..."))
	})

	It("counts runes, not bytes", func() {
		Expect(Truncate("héllo wörld", 20)).To(Equal("héllo wörld"))
		Expect(Truncate("日本語のテキスト", 3)).To(Equal("日本語..."))
	})
})

var _ = Describe("Plural", func() {
	It("keeps the unit singular for one", func() {
		Expect(Plural(1, "question")).To(Equal("1 question"))
	})

	It("pluralizes zero and many", func() {
		Expect(Plural(0, "document")).To(Equal("0 documents"))
		Expect(Plural(3, "upload")).To(Equal("3 uploads"))
	})
})
