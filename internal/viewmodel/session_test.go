package viewmodel_test

import (
	"context"
	"errors"

	errs "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/core/events"
	"github.com/frahmantamala/office-ticketing/internal/user"
	"github.com/frahmantamala/office-ticketing/internal/viewmodel"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LoginViewModel", func() {
	var (
		ctx   context.Context
		authn *fakeAuthenticator
		bus   *recordingBus
		vm    *viewmodel.LoginViewModel
	)

	BeforeEach(func() {
		ctx = context.Background()
		authn = newFakeAuthenticator(&user.User{ID: 3, Username: "user1", Role: user.RoleUser, IsActive: true})
		bus = newRecordingBus()
		vm = viewmodel.NewLoginViewModel(authn, bus, quietLogger())
	})

	It("should announce a successful login", func() {
		vm.Username = " user1 "

		u, err := vm.Login(ctx, "user1123")

		Expect(err).NotTo(HaveOccurred())
		Expect(u.ID).To(Equal(int64(3)))
		Expect(vm.HasError()).To(BeFalse())
		Expect(bus.received).To(Equal([]string{events.EventTypeLoginSucceeded}))
	})

	It("should show one message for bad credentials", func() {
		vm.Username = "user1"

		_, err := vm.Login(ctx, "wrong")

		Expect(errors.Is(err, errs.ErrInvalidCredentials)).To(BeTrue())
		Expect(vm.ErrorMessage).To(Equal("Invalid username or password"))
		Expect(bus.received).To(BeEmpty())
	})

	It("should treat an inactive account like bad credentials", func() {
		authn.failErr = errs.ErrUserInactive
		vm.Username = "user1"

		_, err := vm.Login(ctx, "user1123")

		Expect(errs.IsForbidden(err)).To(BeTrue())
		Expect(vm.ErrorMessage).To(Equal("Invalid username or password"))
	})

	It("should show a generic message when the store fails", func() {
		authn.failErr = errs.NewInternalError("failed to load credentials", errStoreDown)
		vm.Username = "user1"

		_, err := vm.Login(ctx, "user1123")

		Expect(err).To(HaveOccurred())
		Expect(vm.ErrorMessage).To(Equal("An error occurred during login. Please try again."))
		Expect(vm.IsLoading).To(BeFalse())
	})

	It("should ask for both fields", func() {
		_, err := vm.Login(ctx, "")

		Expect(errs.IsValidation(err)).To(BeTrue())
		Expect(vm.HasError()).To(BeTrue())
	})

	It("should publish navigation to the register screen", func() {
		Expect(vm.NavigateToRegister(ctx)).To(Succeed())
		Expect(bus.received).To(Equal([]string{events.EventTypeNavigateToRegister}))
	})
})

var _ = Describe("RegisterViewModel", func() {
	var (
		ctx   context.Context
		authn *fakeAuthenticator
		bus   *recordingBus
		vm    *viewmodel.RegisterViewModel
	)

	BeforeEach(func() {
		ctx = context.Background()
		authn = newFakeAuthenticator(&user.User{ID: 3, Username: "user1", Role: user.RoleUser, IsActive: true})
		bus = newRecordingBus()
		vm = viewmodel.NewRegisterViewModel(authn, bus, quietLogger())
		vm.Username = "jdoe"
		vm.FirstName = "Jane"
		vm.LastName = "Doe"
		vm.Email = "jane@office.com"
	})

	DescribeTable("CanRegister",
		func(mutate func(*viewmodel.RegisterViewModel), password string, expected bool) {
			mutate(vm)
			Expect(vm.CanRegister(password)).To(Equal(expected))
		},
		Entry("complete form", func(*viewmodel.RegisterViewModel) {}, "secret1", true),
		Entry("short password", func(*viewmodel.RegisterViewModel) {}, "abc", false),
		Entry("blank first name", func(r *viewmodel.RegisterViewModel) { r.FirstName = "  " }, "secret1", false),
		Entry("missing email", func(r *viewmodel.RegisterViewModel) { r.Email = "" }, "secret1", false),
		Entry("while loading", func(r *viewmodel.RegisterViewModel) { r.IsLoading = true }, "secret1", false),
	)

	It("should register, clear the form and go back to login", func() {
		u, err := vm.Register(ctx, "secret1")

		Expect(err).NotTo(HaveOccurred())
		Expect(u.Role).To(Equal(user.RoleUser))
		Expect(authn.registered).To(HaveLen(1))
		Expect(authn.registered[0].Email).To(Equal("jane@office.com"))
		Expect(vm.Username).To(BeEmpty())
		Expect(vm.Email).To(BeEmpty())
		Expect(bus.received).To(Equal([]string{events.EventTypeNavigateToLogin}))
	})

	It("should keep the form and show the conflict", func() {
		vm.Username = "user1"

		_, err := vm.Register(ctx, "secret1")

		Expect(errors.Is(err, errs.ErrUsernameTaken)).To(BeTrue())
		Expect(vm.ErrorMessage).To(Equal("username is already taken"))
		Expect(vm.Username).To(Equal("user1"))
		Expect(bus.received).To(BeEmpty())
	})

	It("should reject an incomplete form without calling the service", func() {
		_, err := vm.Register(ctx, "abc")

		Expect(errs.IsValidation(err)).To(BeTrue())
		Expect(vm.ErrorMessage).To(ContainSubstring("at least 6 characters"))
		Expect(authn.registered).To(BeEmpty())
	})
})
