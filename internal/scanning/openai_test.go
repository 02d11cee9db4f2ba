package scanning

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAI", func() {
	Describe("NewOpenAI", func() {
		When("the api key is missing", func() {
			It("should return an error", func() {
				_, err := NewOpenAI("", "", "")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Extract", func() {
		var (
			status   int
			response string
			authSeen string
			server   *httptest.Server
			data     *ReceiptData
			err      error
		)

		BeforeEach(func() {
			status = http.StatusOK
			response = `{"choices":[{"message":{"content":"{\"date\": \"2024/04/01\", \"service\": \"Amazon\", \"detail\": \"books\", \"price\": 800}"}}]}`
		})

		JustBeforeEach(func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				authSeen = r.Header.Get("Authorization")
				w.WriteHeader(status)
				w.Write([]byte(response))
			}))
			DeferCleanup(server.Close)

			scanner, newErr := NewOpenAI("test-key", server.URL, "gpt-4o")
			Expect(newErr).NotTo(HaveOccurred())
			data, err = scanner.Extract(context.Background(), []byte("png-bytes"))
		})

		When("the API returns a valid completion", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the extracted fields", func() {
				Expect(data.Date).To(Equal("2024/04/01"))
				Expect(data.Service).To(Equal("Amazon"))
				Expect(data.Detail).To(Equal("books"))
				Expect(data.Price).NotTo(BeNil())
				Expect(*data.Price).To(Equal(800))
			})

			It("should send the bearer token", func() {
				Expect(authSeen).To(Equal("Bearer test-key"))
			})
		})

		When("the API returns an error status", func() {
			BeforeEach(func() {
				status = http.StatusTooManyRequests
				response = `{"error": "rate limited"}`
			})

			It("should return an error", func() {
				Expect(err).To(HaveOccurred())
			})
		})

		When("the response has no choices", func() {
			BeforeEach(func() {
				response = `{"choices":[]}`
			})

			It("should return an error", func() {
				Expect(err).To(HaveOccurred())
			})
		})

		When("the completion content is not a receipt", func() {
			BeforeEach(func() {
				response = `{"choices":[{"message":{"content":"sorry, unreadable"}}]}`
			})

			It("should return an error", func() {
				Expect(err).To(HaveOccurred())
			})
		})
	})
})
