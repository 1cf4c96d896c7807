package viewmodel_test

import (
	"context"
	"errors"

	errs "github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/auth"
	"github.com/frahmantamala/office-ticketing/internal/user"
	"github.com/frahmantamala/office-ticketing/internal/viewmodel"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("UserViewModel", func() {
	var (
		ctx     context.Context
		session *fakeSession
		users   *fakeUserService
		vm      *viewmodel.UserViewModel
		admin   *user.User
		agent   *user.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		admin = &user.User{ID: 1, Username: "admin", FirstName: "System", LastName: "Admin", Role: user.RoleAdmin, IsActive: true}
		agent = &user.User{ID: 2, Username: "agent1", FirstName: "Alice", LastName: "Agent", Role: user.RoleAgent, IsActive: true}
		session = &fakeSession{current: admin}
		users = &fakeUserService{users: []*user.User{admin, agent}}
		vm = viewmodel.NewUserViewModel(session, users, auth.NewPermissionChecker(), quietLogger())
	})

	It("should be closed to non-admins", func() {
		session.current = agent

		err := vm.Load(ctx)

		Expect(errs.IsForbidden(err)).To(BeTrue())
		Expect(vm.Users).To(BeEmpty())
	})

	It("should load every account", func() {
		Expect(vm.Load(ctx)).To(Succeed())
		Expect(vm.Users).To(HaveLen(2))
		Expect(vm.StatusMessage).To(Equal("Loaded 2 users"))
	})

	It("should report a failing store", func() {
		users.shouldFail = true
		Expect(vm.Load(ctx)).To(MatchError(errStoreDown))
		Expect(vm.StatusMessage).To(Equal("Error loading users: store down"))
	})

	It("should add a user from the form", func() {
		vm.Form.Username = "bob"
		vm.Form.FirstName = "Bob"
		vm.Form.LastName = "Builder"
		vm.Form.Email = "BOB@office.com"

		created, err := vm.AddUser(ctx, "bob123")

		Expect(err).NotTo(HaveOccurred())
		Expect(created.Email).To(Equal("bob@office.com"))
		Expect(created.Role).To(Equal(user.RoleUser))
		Expect(vm.Users).To(HaveLen(3))
		Expect(vm.Form.Username).To(BeEmpty())
		Expect(vm.StatusMessage).To(Equal("User added successfully"))
	})

	It("should keep the form when validation fails", func() {
		vm.Form.Username = "bob"

		_, err := vm.AddUser(ctx, "x")

		Expect(errs.IsValidation(err)).To(BeTrue())
		Expect(vm.Form.Username).To(Equal("bob"))
		Expect(vm.StatusMessage).To(ContainSubstring("password must be at least 6 characters"))
	})

	It("should update the selected user on behalf of the admin", func() {
		Expect(vm.Load(ctx)).To(Succeed())
		Expect(vm.Select(agent.ID)).To(Succeed())
		Expect(vm.Form.FirstName).To(Equal("Alice"))

		vm.Form.Role = user.RoleAdmin
		updated, err := vm.UpdateUser(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Role).To(Equal(user.RoleAdmin))
		Expect(users.updatedBy).To(Equal(admin.ID))
		Expect(vm.StatusMessage).To(Equal("User updated successfully"))
	})

	It("should need a selection to update or delete", func() {
		_, err := vm.UpdateUser(ctx)
		Expect(errors.Is(err, errs.ErrUserNotFound)).To(BeTrue())
		Expect(vm.StatusMessage).To(Equal("Please select a user first."))

		Expect(errors.Is(vm.DeleteUser(ctx), errs.ErrUserNotFound)).To(BeTrue())
	})

	It("should deactivate the selected user and clear the form", func() {
		Expect(vm.Load(ctx)).To(Succeed())
		Expect(vm.Select(agent.ID)).To(Succeed())

		Expect(vm.DeleteUser(ctx)).To(Succeed())

		Expect(agent.IsActive).To(BeFalse())
		Expect(vm.SelectedUser).To(BeNil())
		Expect(vm.Form.Role).To(Equal(user.RoleUser))
		Expect(vm.StatusMessage).To(Equal("User deleted successfully"))
	})

	It("should not let admins delete themselves", func() {
		Expect(vm.Load(ctx)).To(Succeed())
		Expect(vm.Select(admin.ID)).To(Succeed())

		err := vm.DeleteUser(ctx)

		Expect(errs.IsValidation(err)).To(BeTrue())
		Expect(admin.IsActive).To(BeTrue())
	})
})
