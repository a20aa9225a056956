package users_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"entitycore/src/domain"
	"entitycore/src/domain/model"
	"entitycore/src/domain/users"
	"entitycore/src/test_artefacts/stubs"
)

var _ = Describe("User type", func() {
	var (
		ctx      context.Context
		backend  *stubs.BackendStub
		emitter  *stubs.EmitterStub
		userType *model.Type
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = stubs.NewBackendStub()
		emitter = stubs.NewEmitterStub()
		userType = users.NewType(model.Config{Backend: backend, Emitter: emitter})
	})

	It("describes the users table", func() {
		Expect(userType.Name()).To(Equal("User"))
		Expect(userType.TableName()).To(Equal("users"))
		Expect(userType.PrimaryKey()).To(Equal("id"))
		Expect(userType.Incrementing()).To(BeTrue())
		Expect(userType.IsProtected("password")).To(BeTrue())
		Expect(userType.HasTransformer("password")).To(BeTrue())
	})

	It("hashes the password on assignment", func() {
		user, err := userType.New(stubs.NewAttributesStub().With("password", "s3cret").Get(), false)
		Expect(err).NotTo(HaveOccurred())

		stored, _ := user.GetAttribute("password")
		Expect(stored).NotTo(Equal("s3cret"))
		Expect(users.CheckPassword(user, "s3cret")).To(BeTrue())
		Expect(users.CheckPassword(user, "wrong")).To(BeFalse())
	})

	It("hashes values that already look like a hash", func() {
		user, err := userType.New(model.NewAttributes().With("password", "s3cret"), false)
		Expect(err).NotTo(HaveOccurred())
		hash, _ := user.GetAttribute("password")

		Expect(user.SetAttribute("password", hash)).To(Succeed())

		again, _ := user.GetAttribute("password")
		Expect(again).NotTo(Equal(hash))
		Expect(users.CheckPassword(user, "s3cret")).To(BeFalse())
		Expect(users.CheckPassword(user, hash.(string))).To(BeTrue())
	})

	It("loads stored hashes without hashing them again", func() {
		user, err := userType.New(model.NewAttributes().With("password", "s3cret"), false)
		Expect(err).NotTo(HaveOccurred())
		hash, _ := user.GetAttribute("password")
		backend.WithRow("users", "id", model.NewAttributes().With("id", int64(5)).With("password", hash))

		found, err := userType.Find(ctx, int64(5))

		Expect(err).NotTo(HaveOccurred())
		Expect(users.CheckPassword(found, "s3cret")).To(BeTrue())
	})

	It("rejects empty and non-string passwords", func() {
		_, err := userType.New(model.NewAttributes().With("password", ""), false)
		Expect(err).To(MatchError(domain.ErrInvalidArgument))

		_, err = userType.New(model.NewAttributes().With("password", 1234), false)
		Expect(err).To(MatchError(domain.ErrInvalidArgument))
	})

	It("persists the hash but never projects it", func() {
		user, err := userType.Create(ctx, stubs.NewAttributesStub().With("password", "s3cret").Get())
		Expect(err).NotTo(HaveOccurred())

		inserted := backend.CallsFor(stubs.OpInsertAndReturnID)
		Expect(inserted).To(HaveLen(1))
		Expect(inserted[0].Attributes.Has("password")).To(BeTrue())

		json, err := user.ToJSON()
		Expect(err).NotTo(HaveOccurred())
		Expect(json).NotTo(ContainSubstring("password"))
		Expect(emitter.Topics()).To(Equal([]string{"user.created"}))
	})
})
