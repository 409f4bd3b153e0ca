package conversation_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"elicit/pkg/conversation"
)

var _ = Describe("Session", func() {
	Describe("History", func() {
		It("drops timestamps and keeps order", func() {
			session := conversation.NewSession()
			session.Messages = []conversation.Message{
				{Role: "user", Content: "first", Timestamp: time.Now()},
				{Role: "assistant", Content: "second", Timestamp: time.Now()},
			}

			history := session.History()
			Expect(history).To(HaveLen(2))
			Expect(history[0].Role).To(Equal("user"))
			Expect(history[0].Content).To(Equal("first"))
			Expect(history[1].Content).To(Equal("second"))
		})
	})

	Describe("Summary", func() {
		It("counts messages and requirements", func() {
			session := conversation.NewSession()
			session.Messages = append(session.Messages, conversation.Message{Role: "user", Content: "hi"})
			session.Metadata.ProjectName = "inventory"
			session.Metadata.Requirements = append(session.Metadata.Requirements,
				conversation.Requirement{Text: "r1"},
				conversation.Requirement{Text: "r2"},
			)

			summary := session.Summary()
			Expect(summary.SessionID).To(Equal(session.ID))
			Expect(summary.MessageCount).To(Equal(1))
			Expect(summary.RequirementsCount).To(Equal(2))
			Expect(summary.ProjectName).To(Equal("inventory"))
		})
	})

	Describe("Clone", func() {
		It("copies slices so mutations don't alias", func() {
			session := conversation.NewSession()
			session.Messages = append(session.Messages, conversation.Message{Role: "user", Content: "hi"})

			clone := session.Clone()
			clone.Messages[0].Content = "changed"
			clone.Messages = append(clone.Messages, conversation.Message{Role: "assistant", Content: "extra"})

			Expect(session.Messages).To(HaveLen(1))
			Expect(session.Messages[0].Content).To(Equal("hi"))
		})
	})
})
