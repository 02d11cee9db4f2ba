package document

import (
	"image"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Normalize", func() {
	var (
		input  image.Image
		output image.Image
	)

	JustBeforeEach(func() {
		output = Normalize(input)
	})

	When("the image is wider than the maximum side", func() {
		BeforeEach(func() {
			input = solidImage(2048, 1024, red)
		})

		It("should downscale the longest side to the maximum", func() {
			Expect(output.Bounds().Dx()).To(Equal(1024))
		})

		It("should preserve the aspect ratio", func() {
			Expect(output.Bounds().Dy()).To(Equal(512))
		})

		It("should produce an NRGBA image", func() {
			Expect(output).To(BeAssignableToTypeOf(&image.NRGBA{}))
		})
	})

	When("the image is taller than the maximum side", func() {
		BeforeEach(func() {
			input = solidImage(100, 2048, red)
		})

		It("should downscale the height to the maximum", func() {
			Expect(output.Bounds().Dy()).To(Equal(1024))
			Expect(output.Bounds().Dx()).To(Equal(50))
		})
	})

	When("the image is within the bound", func() {
		BeforeEach(func() {
			input = solidImage(800, 600, blue)
		})

		It("should not change the dimensions", func() {
			Expect(output.Bounds().Dx()).To(Equal(800))
			Expect(output.Bounds().Dy()).To(Equal(600))
		})

		It("should return the image unmodified", func() {
			Expect(output).To(BeIdenticalTo(input))
		})
	})

	When("the image is small but not RGB", func() {
		BeforeEach(func() {
			input = image.NewGray(image.Rect(0, 0, 100, 100))
		})

		It("should convert to NRGBA without resizing", func() {
			Expect(output).To(BeAssignableToTypeOf(&image.NRGBA{}))
			Expect(output.Bounds().Dx()).To(Equal(100))
			Expect(output.Bounds().Dy()).To(Equal(100))
		})
	})
})
