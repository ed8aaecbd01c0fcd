package input_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/papercomputeco/chatsphere/pkg/backend"
	"github.com/papercomputeco/chatsphere/pkg/input"
	"github.com/papercomputeco/chatsphere/pkg/normalize"
	"github.com/papercomputeco/chatsphere/pkg/prompt"
	"github.com/papercomputeco/chatsphere/pkg/session"
	"github.com/papercomputeco/chatsphere/pkg/speech"
	"github.com/papercomputeco/chatsphere/pkg/turn"
)

type stubRecognizer struct {
	text string
	err  error
}

func (s stubRecognizer) Listen(context.Context) (string, error) { return s.text, s.err }

var _ = Describe("Sources", func() {
	var (
		ctx  context.Context
		mb   *backend.MockBackend
		ctrl *turn.Controller
		sess *session.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		mb = &backend.MockBackend{}
		ctrl = turn.NewController(turn.Pipeline{
			Template:   prompt.New(""),
			Backend:    mb,
			Normalizer: normalize.New(),
		})
		sess = session.New(session.ThemeDark)
	})

	AfterEach(func() {
		mb.AssertExpectations(GinkgoT())
	})

	It("routes typed text through the controller", func() {
		mb.On("Generate", mock.Anything, mock.Anything).Return("ok", nil).Once()
		src := input.New(ctrl, nil, speech.Capability{}, nil)

		out := src.SubmitText(ctx, sess, " Hello ")
		Expect(out.State).To(Equal(turn.Completed))
		Expect(sess.Conversation.Len()).To(Equal(2))
	})

	It("forces speech off without a recognizer", func() {
		src := input.New(ctrl, nil, speech.Capability{Available: true}, nil)
		Expect(src.SpeechAvailable()).To(BeFalse())
	})

	It("refuses to listen when the capability is absent", func() {
		src := input.New(ctrl, stubRecognizer{text: "ignored"}, speech.Capability{Reason: "no mic"}, nil)

		out, err := src.Speak(ctx, sess)
		Expect(err).To(MatchError(speech.ErrUnavailable))
		Expect(out.Skipped()).To(BeTrue())
		Expect(sess.Notice().Text).To(Equal(input.MsgUnavailable))
		Expect(sess.Conversation.Len()).To(Equal(0))
	})

	It("feeds a transcript into the same turn entry point", func() {
		mb.On("Generate", mock.Anything, mock.Anything).Return("Sunny *smiles*", nil).Once()
		src := input.New(ctrl, stubRecognizer{text: "weather today"}, speech.Capability{Available: true}, nil)

		out, err := src.Speak(ctx, sess)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.State).To(Equal(turn.Completed))
		Expect(out.Query).To(Equal("weather today"))
		Expect(out.Reply).To(Equal("Sunny 😊"))
		Expect(sess.Notice().Text).To(Equal(input.MsgTranscribed))
	})

	It("surfaces recognition failures inline and runs no turn", func() {
		cause := &speech.Error{Stage: "transcribe", Cause: errors.New("service unavailable")}
		src := input.New(ctrl, stubRecognizer{err: cause}, speech.Capability{Available: true}, nil)

		out, err := src.Speak(ctx, sess)
		Expect(err).To(MatchError(cause))
		Expect(out.Skipped()).To(BeTrue())
		Expect(sess.Conversation.Len()).To(Equal(0))

		n := sess.Notice()
		Expect(n.Level).To(Equal(session.NoticeError))
		Expect(n.Text).To(Equal("Transcription failed: transcribe: service unavailable"))
	})
})
