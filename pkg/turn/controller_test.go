package turn_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/papercomputeco/chatsphere/pkg/backend"
	"github.com/papercomputeco/chatsphere/pkg/conversation"
	"github.com/papercomputeco/chatsphere/pkg/llm"
	"github.com/papercomputeco/chatsphere/pkg/normalize"
	"github.com/papercomputeco/chatsphere/pkg/prompt"
	"github.com/papercomputeco/chatsphere/pkg/session"
	"github.com/papercomputeco/chatsphere/pkg/turn"
)

type transition struct {
	from, to turn.State
}

var _ = Describe("Controller", func() {
	var (
		ctx         context.Context
		mb          *backend.MockBackend
		sess        *session.Session
		transitions []transition
		fixedNow    time.Time
		newCtrl     func(opts ...turn.Option) *turn.Controller
	)

	BeforeEach(func() {
		ctx = context.Background()
		mb = &backend.MockBackend{}
		sess = session.New(session.ThemeDark)
		transitions = nil
		fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

		newCtrl = func(opts ...turn.Option) *turn.Controller {
			base := []turn.Option{
				turn.WithClock(func() time.Time { return fixedNow }),
				turn.WithTransitionHook(func(from, to turn.State) {
					transitions = append(transitions, transition{from, to})
				}),
			}
			return turn.NewController(turn.Pipeline{
				Template:   prompt.New(""),
				Backend:    mb,
				Normalizer: normalize.New(),
			}, append(base, opts...)...)
		}
	})

	AfterEach(func() {
		mb.AssertExpectations(GinkgoT())
	})

	Context("when the backend answers", func() {
		BeforeEach(func() {
			mb.On("Generate", mock.Anything, mock.MatchedBy(func(msgs []llm.Message) bool {
				return len(msgs) == 2 && msgs[1].Content == "User query: Hello"
			})).Return("Hi *smiles*", nil).Once()
		})

		It("trims the input and appends user then assistant", func() {
			sess.SetPending(" Hello ")
			out := newCtrl().Submit(ctx, sess)

			Expect(out.State).To(Equal(turn.Completed))
			Expect(out.Query).To(Equal("Hello"))
			Expect(out.Reply).To(Equal("Hi 😊"))
			Expect(out.Appended).To(Equal(2))
			Expect(out.Err).NotTo(HaveOccurred())

			us := sess.Conversation.Utterances()
			Expect(us).To(HaveLen(2))
			Expect(us[0]).To(Equal(conversation.NewUtterance(conversation.User, "Hello", fixedNow)))
			Expect(us[1]).To(Equal(conversation.NewUtterance(conversation.Assistant, "Hi 😊", fixedNow)))
		})

		It("clears the pending input", func() {
			sess.SetPending(" Hello ")
			newCtrl().Submit(ctx, sess)
			Expect(sess.Pending()).To(BeEmpty())
		})

		It("walks Idle -> AwaitingBackend -> Completed -> Idle", func() {
			newCtrl().SubmitText(ctx, sess, "Hello")
			Expect(transitions).To(Equal([]transition{
				{turn.Idle, turn.AwaitingBackend},
				{turn.AwaitingBackend, turn.Completed},
				{turn.Completed, turn.Idle},
			}))
		})

		It("keeps the conversation even after each completed turn", func() {
			mb.On("Generate", mock.Anything, mock.Anything).Return("again", nil).Once()
			ctrl := newCtrl()

			ctrl.SubmitText(ctx, sess, "Hello")
			Expect(sess.Conversation.Len() % 2).To(Equal(0))
			ctrl.SubmitText(ctx, sess, "More")
			Expect(sess.Conversation.Len()).To(Equal(4))
		})
	})

	DescribeTable("skips empty and whitespace-only input",
		func(input string) {
			sess.SetPending(input)
			out := newCtrl().Submit(ctx, sess)

			Expect(out.Skipped()).To(BeTrue())
			Expect(out.State).To(Equal(turn.Idle))
			Expect(out.Appended).To(Equal(0))
			Expect(sess.Conversation.Len()).To(Equal(0))
			Expect(transitions).To(BeEmpty())
			mb.AssertNotCalled(GinkgoT(), "Generate", mock.Anything, mock.Anything)
		},
		Entry("empty", ""),
		Entry("spaces", "   "),
		Entry("tabs and newlines", "\t\n \r\n"),
	)

	Context("when the backend fails", func() {
		var cause error

		BeforeEach(func() {
			cause = &backend.Error{Backend: "mock", Model: "m", Cause: context.DeadlineExceeded}
			mb.On("Generate", mock.Anything, mock.Anything).Return("", cause).Once()
		})

		It("records the user utterance and the error entry by default", func() {
			sess.SetPending(" Hello ")
			out := newCtrl().Submit(ctx, sess)

			Expect(out.State).To(Equal(turn.Failed))
			Expect(out.Appended).To(Equal(2))
			Expect(errors.Is(out.Err, context.DeadlineExceeded)).To(BeTrue())

			us := sess.Conversation.Utterances()
			Expect(us).To(HaveLen(2))
			Expect(us[0].Sender).To(Equal(conversation.User))
			Expect(us[0].Text).To(Equal("Hello"))
			Expect(us[1].Sender).To(Equal(conversation.Assistant))
			Expect(us[1].Text).To(HavePrefix(turn.ErrorMarker))
			Expect(us[1].Text).To(ContainSubstring("context deadline exceeded"))
		})

		It("records only the error entry when user recording on failure is off", func() {
			sess.SetPending("Hello")
			out := newCtrl(turn.WithRecordUserOnFailure(false)).Submit(ctx, sess)

			Expect(out.State).To(Equal(turn.Failed))
			Expect(out.Appended).To(Equal(1))

			us := sess.Conversation.Utterances()
			Expect(us).To(HaveLen(1))
			Expect(us[0].Sender).To(Equal(conversation.Assistant))
			Expect(us[0].Text).To(Equal(turn.ErrorMarker + cause.Error()))
		})

		It("still clears the pending input", func() {
			sess.SetPending(" Hello ")
			newCtrl().Submit(ctx, sess)
			Expect(sess.Pending()).To(BeEmpty())
		})

		It("walks Idle -> AwaitingBackend -> Failed -> Idle", func() {
			newCtrl().SubmitText(ctx, sess, "Hello")
			Expect(transitions).To(Equal([]transition{
				{turn.Idle, turn.AwaitingBackend},
				{turn.AwaitingBackend, turn.Failed},
				{turn.Failed, turn.Idle},
			}))
		})
	})

	It("reports the template persona", func() {
		Expect(newCtrl().Persona()).To(Equal("ChatSphere"))
	})
})

var _ = Describe("Pipeline", func() {
	It("passes raw output through when no normalizer is set", func() {
		mb := &backend.MockBackend{}
		mb.On("Generate", mock.Anything, mock.Anything).Return("*smiles*", nil)

		out, err := turn.Pipeline{Template: prompt.New(""), Backend: mb}.Run(context.Background(), "q")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("*smiles*"))
	})
})

var _ = Describe("State", func() {
	It("names every state", func() {
		Expect(turn.Idle.String()).To(Equal("idle"))
		Expect(turn.AwaitingBackend.String()).To(Equal("awaiting_backend"))
		Expect(turn.Completed.String()).To(Equal("completed"))
		Expect(turn.Failed.String()).To(Equal("failed"))
	})
})
