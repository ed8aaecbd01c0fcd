package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatsphere/pkg/backend"
	"github.com/papercomputeco/chatsphere/pkg/prompt"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1760000000,
  "model": "bigscience/bloom-560m",
  "choices": [
    {"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Hello! *smiles*"}}
  ]
}`

var _ = Describe("Hosted", func() {
	var (
		ctx      context.Context
		params   backend.Params
		status   int
		body     string
		calls    atomic.Int32
		received map[string]any
		auth     string
		upstream *httptest.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		params = backend.Params{Model: "bigscience/bloom-560m", Temperature: 0.5, MaxTokens: 256}
		status = http.StatusOK
		body = completionBody
		calls.Store(0)

		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			calls.Add(1)
			Expect(r.URL.Path).To(Equal("/v1/chat/completions"))
			auth = r.Header.Get("Authorization")

			raw, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(raw, &received)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		}))
	})

	AfterEach(func() {
		upstream.Close()
	})

	It("requires an api key", func() {
		_, err := backend.NewHosted(upstream.URL+"/v1", "", params, nil)
		Expect(err).To(MatchError(ContainSubstring("api key required")))
	})

	It("returns the first choice's content", func() {
		b, err := backend.NewHosted(upstream.URL+"/v1", "hf_test", params, nil)
		Expect(err).NotTo(HaveOccurred())

		out, err := b.Generate(ctx, prompt.New("").Format("Hello"))
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Hello! *smiles*"))

		Expect(auth).To(Equal("Bearer hf_test"))
		Expect(received["model"]).To(Equal("bigscience/bloom-560m"))
		Expect(received["temperature"]).To(BeNumerically("==", 0.5))
		Expect(received["max_tokens"]).To(BeNumerically("==", 256))
		Expect(received["messages"]).To(HaveLen(2))
	})

	It("makes exactly one request when the endpoint fails", func() {
		status = http.StatusServiceUnavailable
		body = `{"error": {"message": "model is loading"}}`
		b, err := backend.NewHosted(upstream.URL+"/v1", "hf_test", params, nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = b.Generate(ctx, prompt.New("").Format("Hello"))
		Expect(backend.IsBackendError(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("hosted backend"))
		Expect(calls.Load()).To(Equal(int32(1)))
	})

	It("treats a response without choices as a failure", func() {
		body = `{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`
		b, err := backend.NewHosted(upstream.URL+"/v1", "hf_test", params, nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = b.Generate(ctx, prompt.New("").Format("Hello"))
		Expect(err).To(MatchError(backend.ErrEmptyCompletion))
	})
})
