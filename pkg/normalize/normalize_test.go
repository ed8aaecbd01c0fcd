package normalize_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatsphere/pkg/normalize"
)

var _ = Describe("Normalizer", func() {
	var n *normalize.Normalizer

	BeforeEach(func() {
		n = normalize.New()
	})

	It("carries eleven replacements", func() {
		Expect(n.Replacements()).To(HaveLen(11))
	})

	It("replaces *smiles* and leaves everything else byte-identical", func() {
		Expect(n.Apply("Hello there *smiles* friend")).To(Equal("Hello there 😊 friend"))
	})

	It("replaces every occurrence", func() {
		Expect(n.Apply("*winks* ok *winks*")).To(Equal("😉 ok 😉"))
	})

	DescribeTable("maps each stage direction",
		func(in, want string) {
			Expect(n.Apply(in)).To(Equal(want))
		},
		Entry("smiles", "*smiles*", "😊"),
		Entry("smiling", "*smiling*", "😊"),
		Entry("laughs", "*laughs*", "😂"),
		Entry("nods", "*nods*", "👍"),
		Entry("sighs", "*sighs*", "😌"),
		Entry("adjusts glasses", "*adjusts glasses*", "🤖"),
		Entry("grin", "*grin*", "😁"),
		Entry("bounces", "*bounces up and down excitedly*", "🕺"),
		Entry("smiling emoji", "*smiling emoji*", "😊"),
		Entry("aviator sunglasses", "*adjusts aviator sunglasses*", "😎"),
		Entry("winks", "*winks*", "😉"),
	)

	DescribeTable("passes through text with no listed pattern",
		func(in string) {
			Expect(n.Apply(in)).To(Equal(in))
			Expect(n.Apply(n.Apply(in))).To(Equal(in))
		},
		Entry("empty", ""),
		Entry("plain", "Just a plain answer."),
		Entry("unlisted direction", "*smirks* and *Smiles*"),
		Entry("reordered phrase", "*glasses adjusts*"),
		Entry("missing asterisk", "smiles* *nods"),
	)

	It("does not match variants that are not listed", func() {
		Expect(n.Apply("*grins*")).To(Equal("*grins*"))
	})

	It("applies replacements in table order", func() {
		custom := normalize.NewWithReplacements([]normalize.Replacement{
			{Pattern: "ab", Glyph: "x"},
			{Pattern: "xc", Glyph: "y"},
		})
		Expect(custom.Apply("abc")).To(Equal("y"))
	})

	It("is isolated from later edits to the caller's table", func() {
		table := []normalize.Replacement{{Pattern: "a", Glyph: "b"}}
		custom := normalize.NewWithReplacements(table)
		table[0].Glyph = "z"

		Expect(custom.Apply("a")).To(Equal("b"))
	})
})
