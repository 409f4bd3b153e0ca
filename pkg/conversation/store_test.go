package conversation_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"elicit/pkg/conversation"
)

// behavesLikeAStore registers the contract every backend must satisfy.
func behavesLikeAStore(factory func() conversation.Store) {
	var (
		store conversation.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = factory()
	})

	AfterEach(func() {
		store.Close()
	})

	message := func(role, content string) conversation.Message {
		return conversation.Message{
			Role:      role,
			Content:   content,
			Timestamp: time.Now().UTC(),
		}
	}

	Describe("Create and Get", func() {
		It("creates an empty session with a UUID and timestamp", func() {
			session, err := store.Create(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(session.ID).NotTo(BeEmpty())
			Expect(session.CreatedAt).NotTo(BeZero())
			Expect(session.Messages).To(BeEmpty())
			Expect(session.Metadata.Requirements).To(BeEmpty())
		})

		It("retrieves a created session by id", func() {
			session, err := store.Create(ctx)
			Expect(err).NotTo(HaveOccurred())

			retrieved, err := store.Get(ctx, session.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.ID).To(Equal(session.ID))
		})

		It("returns ErrNotFound for an unknown id", func() {
			_, err := store.Get(ctx, "b5fca528-37e4-4c4c-8c2f-000000000000")
			Expect(err).To(HaveOccurred())

			var notFound conversation.ErrNotFound
			Expect(err).To(BeAssignableToTypeOf(notFound))
		})
	})

	Describe("Append", func() {
		It("keeps messages in append order", func() {
			session, err := store.Create(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Append(ctx, session.ID, message("user", "first"))).To(Succeed())
			Expect(store.Append(ctx, session.ID, message("assistant", "second"))).To(Succeed())
			Expect(store.Append(ctx, session.ID, message("user", "third"))).To(Succeed())

			retrieved, err := store.Get(ctx, session.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Messages).To(HaveLen(3))
			Expect(retrieved.Messages[0].Content).To(Equal("first"))
			Expect(retrieved.Messages[1].Role).To(Equal("assistant"))
			Expect(retrieved.Messages[2].Content).To(Equal("third"))
		})

		It("returns ErrNotFound when appending to an unknown session", func() {
			err := store.Append(ctx, "b5fca528-37e4-4c4c-8c2f-000000000000", message("user", "hi"))
			Expect(err).To(HaveOccurred())

			var notFound conversation.ErrNotFound
			Expect(err).To(BeAssignableToTypeOf(notFound))
		})
	})

	Describe("SetProject", func() {
		It("records project name and description", func() {
			session, err := store.Create(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(store.SetProject(ctx, session.ID, "inventory", "warehouse stock tracker")).To(Succeed())

			retrieved, err := store.Get(ctx, session.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Metadata.ProjectName).To(Equal("inventory"))
			Expect(retrieved.Metadata.ProjectDescription).To(Equal("warehouse stock tracker"))
		})

		It("returns ErrNotFound for an unknown session", func() {
			err := store.SetProject(ctx, "b5fca528-37e4-4c4c-8c2f-000000000000", "x", "y")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("AddRequirement", func() {
		It("accumulates requirements in order", func() {
			session, err := store.Create(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(store.AddRequirement(ctx, session.ID, conversation.Requirement{Text: "track stock", Kind: "functional"})).To(Succeed())
			Expect(store.AddRequirement(ctx, session.ID, conversation.Requirement{Text: "respond within 200ms", Kind: "non-functional"})).To(Succeed())

			retrieved, err := store.Get(ctx, session.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Metadata.Requirements).To(HaveLen(2))
			Expect(retrieved.Metadata.Requirements[0].Text).To(Equal("track stock"))
			Expect(retrieved.Metadata.Requirements[1].Kind).To(Equal("non-functional"))
		})
	})

	Describe("List", func() {
		It("returns an empty list for a fresh store", func() {
			summaries, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summaries).To(BeEmpty())
		})

		It("summarizes sessions with message and requirement counts", func() {
			session, err := store.Create(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Append(ctx, session.ID, message("user", "hi"))).To(Succeed())
			Expect(store.Append(ctx, session.ID, message("assistant", "hello"))).To(Succeed())
			Expect(store.AddRequirement(ctx, session.ID, conversation.Requirement{Text: "r1"})).To(Succeed())
			Expect(store.SetProject(ctx, session.ID, "inventory", "")).To(Succeed())

			summaries, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summaries).To(HaveLen(1))
			Expect(summaries[0].SessionID).To(Equal(session.ID))
			Expect(summaries[0].MessageCount).To(Equal(2))
			Expect(summaries[0].RequirementsCount).To(Equal(1))
			Expect(summaries[0].ProjectName).To(Equal("inventory"))
		})

		It("orders summaries newest first", func() {
			first, err := store.Create(ctx)
			Expect(err).NotTo(HaveOccurred())
			time.Sleep(5 * time.Millisecond)
			second, err := store.Create(ctx)
			Expect(err).NotTo(HaveOccurred())

			summaries, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summaries).To(HaveLen(2))
			Expect(summaries[0].SessionID).To(Equal(second.ID))
			Expect(summaries[1].SessionID).To(Equal(first.ID))
		})
	})
}

var _ = Describe("MemoryStore", func() {
	behavesLikeAStore(func() conversation.Store {
		return conversation.NewMemoryStore()
	})

	It("isolates returned sessions from store state", func() {
		store := conversation.NewMemoryStore()
		defer store.Close()
		ctx := context.Background()

		session, err := store.Create(ctx)
		Expect(err).NotTo(HaveOccurred())

		// Mutating the returned value must not leak into the store
		session.Messages = append(session.Messages, conversation.Message{Role: "user", Content: "rogue"})

		retrieved, err := store.Get(ctx, session.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(retrieved.Messages).To(BeEmpty())
	})
})

var _ = Describe("FileStore", func() {
	behavesLikeAStore(func() conversation.Store {
		store, err := conversation.NewFileStore(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		return store
	})

	It("persists sessions across store instances", func() {
		ctx := context.Background()
		dir := GinkgoT().TempDir()

		store, err := conversation.NewFileStore(dir)
		Expect(err).NotTo(HaveOccurred())

		session, err := store.Create(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Append(ctx, session.ID, conversation.Message{
			Role: "user", Content: "hello", Timestamp: time.Now().UTC(),
		})).To(Succeed())
		Expect(store.Close()).To(Succeed())

		reopened, err := conversation.NewFileStore(dir)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()

		retrieved, err := reopened.Get(ctx, session.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(retrieved.Messages).To(HaveLen(1))
		Expect(retrieved.Messages[0].Content).To(Equal("hello"))

		summaries, err := reopened.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(summaries).To(HaveLen(1))
	})

	It("writes one JSON file per session", func() {
		ctx := context.Background()
		dir := GinkgoT().TempDir()

		store, err := conversation.NewFileStore(dir)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		session, err := store.Create(ctx)
		Expect(err).NotTo(HaveOccurred())

		_, err = os.Stat(filepath.Join(dir, "conversation_"+session.ID+".json"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("does not serve mutations that failed to persist", func() {
		ctx := context.Background()
		dir := GinkgoT().TempDir()

		store, err := conversation.NewFileStore(dir)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		session, err := store.Create(ctx)
		Expect(err).NotTo(HaveOccurred())

		// Occupy the temp file path with a directory so the next write fails
		tmpPath := filepath.Join(dir, "conversation_"+session.ID+".json.tmp")
		Expect(os.Mkdir(tmpPath, 0o755)).To(Succeed())

		err = store.Append(ctx, session.ID, conversation.Message{
			Role: "user", Content: "ghost", Timestamp: time.Now().UTC(),
		})
		Expect(err).To(HaveOccurred())

		// The failed append must not linger in memory
		retrieved, err := store.Get(ctx, session.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(retrieved.Messages).To(BeEmpty())
	})

	It("rejects ids that are not UUIDs", func() {
		ctx := context.Background()

		store, err := conversation.NewFileStore(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		_, err = store.Get(ctx, "../../etc/passwd")
		var notFound conversation.ErrNotFound
		Expect(err).To(BeAssignableToTypeOf(notFound))
	})
})

var _ = Describe("SQLiteStore", func() {
	behavesLikeAStore(func() conversation.Store {
		store, err := conversation.NewSQLiteStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return store
	})

	It("creates a database file on disk", func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "sessions.db")

		store, err := conversation.NewSQLiteStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		_, err = os.Stat(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("persists sessions across store instances", func() {
		ctx := context.Background()
		dbPath := filepath.Join(GinkgoT().TempDir(), "sessions.db")

		store, err := conversation.NewSQLiteStore(dbPath)
		Expect(err).NotTo(HaveOccurred())

		session, err := store.Create(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Close()).To(Succeed())

		reopened, err := conversation.NewSQLiteStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()

		_, err = reopened.Get(ctx, session.ID)
		Expect(err).NotTo(HaveOccurred())
	})
})
