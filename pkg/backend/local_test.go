package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatsphere/pkg/backend"
	"github.com/papercomputeco/chatsphere/pkg/llm"
	"github.com/papercomputeco/chatsphere/pkg/prompt"
)

var _ = Describe("Local", func() {
	var (
		ctx      context.Context
		params   backend.Params
		received *llm.ChatRequest
		reply    func(w http.ResponseWriter)
		upstream *httptest.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		params = backend.Params{Model: "llama3", Temperature: 0.5, MaxTokens: 256}
		received = nil
		reply = func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(llm.ChatResponse{
				Model:   "llama3",
				Message: llm.Message{Role: llm.RoleAssistant, Content: "Hi there *waves*"},
				Done:    true,
			})
		}

		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/api/chat"))
			Expect(r.Method).To(Equal(http.MethodPost))

			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			received = &llm.ChatRequest{}
			Expect(json.Unmarshal(body, received)).To(Succeed())

			reply(w)
		}))
	})

	AfterEach(func() {
		upstream.Close()
	})

	It("requires a model name", func() {
		_, err := backend.NewLocal(upstream.URL, backend.Params{}, nil)
		Expect(err).To(MatchError(ContainSubstring("model name required")))
	})

	It("sends a non-streaming request with fixed sampling options", func() {
		b, err := backend.NewLocal(upstream.URL+"/", params, nil)
		Expect(err).NotTo(HaveOccurred())

		out, err := b.Generate(ctx, prompt.New("").Format("Hello"))
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Hi there *waves*"))

		Expect(received).NotTo(BeNil())
		Expect(received.Model).To(Equal("llama3"))
		Expect(received.Stream).NotTo(BeNil())
		Expect(*received.Stream).To(BeFalse())
		Expect(received.Messages).To(HaveLen(2))
		Expect(received.Messages[1].Content).To(Equal("User query: Hello"))
		Expect(*received.Options.Temperature).To(Equal(0.5))
		Expect(*received.Options.NumPredict).To(Equal(256))
	})

	It("wraps upstream error bodies in a backend error", func() {
		reply = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(llm.ErrorResponse{Error: `model "llama3" not found`})
		}
		b, err := backend.NewLocal(upstream.URL, params, nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = b.Generate(ctx, prompt.New("").Format("Hello"))
		Expect(err).To(HaveOccurred())
		Expect(backend.IsBackendError(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("404"))
		Expect(err.Error()).To(ContainSubstring("not found"))
	})

	It("treats an empty completion as a failure", func() {
		reply = func(w http.ResponseWriter) {
			_ = json.NewEncoder(w).Encode(llm.ChatResponse{Done: true})
		}
		b, err := backend.NewLocal(upstream.URL, params, nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = b.Generate(ctx, prompt.New("").Format("Hello"))
		Expect(errors.Is(err, backend.ErrEmptyCompletion)).To(BeTrue())
	})

	It("reports connection failures as backend errors", func() {
		b, err := backend.NewLocal("http://127.0.0.1:1", params, nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = b.Generate(ctx, prompt.New("").Format("Hello"))
		var be *backend.Error
		Expect(errors.As(err, &be)).To(BeTrue())
		Expect(be.Backend).To(Equal("local"))
		Expect(be.Model).To(Equal("llama3"))
	})
})
