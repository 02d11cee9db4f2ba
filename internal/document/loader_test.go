package document

import (
	"image"
	"image/png"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// writePNG writes a solid-color PNG into dir and returns its path.
func writePNG(dir, name string, w, h int) string {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()
	Expect(png.Encode(f, solidImage(w, h, red))).To(Succeed())
	return path
}

var _ = Describe("Discover", func() {
	var (
		dir    string
		pdfs   []string
		images []string
		err    error
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	JustBeforeEach(func() {
		pdfs, images, err = Discover(dir)
	})

	When("the directory holds mixed files", func() {
		BeforeEach(func() {
			for _, name := range []string{"a.pdf", "B.PDF", "c.jpg", "d.JPEG", "e.png", "f.heic", "notes.txt"} {
				Expect(os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644)).To(Succeed())
			}
			Expect(os.Mkdir(filepath.Join(dir, "nested.pdf"), 0755)).To(Succeed())
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should match PDF extensions case-insensitively", func() {
			Expect(pdfs).To(Equal([]string{
				filepath.Join(dir, "B.PDF"),
				filepath.Join(dir, "a.pdf"),
			}))
		})

		It("should match image extensions case-insensitively", func() {
			Expect(images).To(Equal([]string{
				filepath.Join(dir, "c.jpg"),
				filepath.Join(dir, "d.JPEG"),
				filepath.Join(dir, "e.png"),
				filepath.Join(dir, "f.heic"),
			}))
		})
	})

	When("the directory is empty", func() {
		It("should return empty lists", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pdfs).To(BeEmpty())
			Expect(images).To(BeEmpty())
		})
	})

	When("the directory does not exist", func() {
		BeforeEach(func() {
			dir = filepath.Join(dir, "missing")
		})

		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("LoadImage", func() {
	var (
		dir    string
		path   string
		result Normalized
		err    error
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	JustBeforeEach(func() {
		result, err = LoadImage(path)
	})

	When("loading a valid image", func() {
		BeforeEach(func() {
			path = writePNG(dir, "receipt.png", 400, 300)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should keep the originating path", func() {
			Expect(result.Path).To(Equal(path))
		})

		It("should return a normalized image", func() {
			Expect(result.Image).To(BeAssignableToTypeOf(&image.NRGBA{}))
			Expect(result.Image.Bounds().Dx()).To(Equal(400))
			Expect(result.Image.Bounds().Dy()).To(Equal(300))
		})
	})

	When("loading an oversized image", func() {
		BeforeEach(func() {
			path = writePNG(dir, "big.png", 1500, 500)
		})

		It("should bound the longest side", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Image.Bounds().Dx()).To(Equal(1024))
			Expect(result.Image.Bounds().Dy()).To(Equal(341))
		})
	})

	When("the file is not a decodable image", func() {
		BeforeEach(func() {
			path = filepath.Join(dir, "broken.jpg")
			Expect(os.WriteFile(path, []byte("not an image"), 0644)).To(Succeed())
		})

		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("the file does not exist", func() {
		BeforeEach(func() {
			path = filepath.Join(dir, "missing.png")
		})

		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})
