package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	errs "github.com/frahmantamala/office-ticketing/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("falls back to the defaults without a config file", func() {
		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Driver).To(Equal("sqlite"))
		Expect(cfg.Cache.Driver).To(Equal("memory"))
		Expect(cfg.Cache.FreshnessWindow).To(Equal(5 * time.Minute))
		Expect(cfg.Seed.OnStartup).To(BeTrue())
	})

	It("reads config.yml from the given directory", func() {
		yml := "cache:\n  freshness_window: 90s\nsecurity:\n  bcrypt_cost: 4\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600)).To(Succeed())

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Cache.FreshnessWindow).To(Equal(90 * time.Second))
		Expect(cfg.Security.BCryptCost).To(Equal(4))
	})

	It("lets TICKETING_ variables override the file", func() {
		Expect(setenv("TICKETING_CACHE_KEY_PREFIX", "office:")).To(Succeed())

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Cache.KeyPrefix).To(Equal("office:"))
	})

	It("rejects an invalid configuration", func() {
		yml := "cache:\n  driver: memcached\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600)).To(Succeed())

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("invalid config")))
	})
})

var _ = Describe("argument parsing", func() {
	It("parses dates as local YYYY-MM-DD", func() {
		t, err := parseDate("2024-03-01")
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Year()).To(Equal(2024))
		Expect(t.Month()).To(Equal(time.March))
		Expect(t.Location()).To(Equal(time.Local))

		none, err := parseDate("")
		Expect(err).NotTo(HaveOccurred())
		Expect(none).To(BeNil())

		_, err = parseDate("01/03/2024")
		Expect(err).To(HaveOccurred())
	})

	It("accepts ticket ids with or without a hash", func() {
		Expect(parseID("ticket id", "#12")).To(Equal(int64(12)))
		Expect(parseID("ticket id", "7")).To(Equal(int64(7)))

		_, err := parseID("ticket id", "-3")
		Expect(errs.IsValidation(err)).To(BeTrue())
		_, err = parseID("ticket id", "abc")
		Expect(errs.IsValidation(err)).To(BeTrue())
	})

	It("treats an empty optional value as unset", func() {
		Expect(optional("")).To(BeNil())
		Expect(*optional("IT")).To(Equal("IT"))
	})
})

var _ = DescribeTable("exitCode",
	func(err error, code int) {
		Expect(exitCode(err)).To(Equal(code))
	},
	Entry("validation", errs.ErrNoSelection, 2),
	Entry("session", errs.ErrSessionInvalid, 3),
	Entry("forbidden", errs.ErrForbidden, 3),
	Entry("not found", errs.ErrTicketNotFound, 4),
	Entry("conflict", errs.ErrUsernameTaken, 5),
	Entry("reported app error", reportedError{errs.ErrInvalidCredentials}, 3),
	Entry("wrapped app error", fmt.Errorf("loading: %w", errs.ErrCategoryNotFound), 4),
	Entry("plain error", io.ErrUnexpectedEOF, 1),
)

var _ = Describe("ticketing commands", Ordered, func() {
	var dir string

	run := func(args ...string) (string, error) {
		out := new(bytes.Buffer)
		rootCmd.SetOut(out)
		rootCmd.SetErr(io.Discard)
		rootCmd.SetIn(strings.NewReader(""))
		rootCmd.SetArgs(append([]string{"--config-dir", dir}, args...))
		err := rootCmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	BeforeAll(func() {
		dir = GinkgoT().TempDir()
		yml := fmt.Sprintf(`database:
  source: "file:%s?_foreign_keys=on"
security:
  session_file: %q
  bcrypt_cost: 4
observability:
  logging:
    level: error
`, filepath.Join(dir, "ticketing.db"), filepath.Join(dir, "session"))
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600)).To(Succeed())
	})

	It("needs a session before anything else", func() {
		_, err := run("whoami")
		Expect(err).To(MatchError(errs.ErrSessionInvalid))
		Expect(exitCode(err)).To(Equal(3))
	})

	It("logs in with a seeded account", func() {
		out, err := run("login", "admin", "--password", "admin123")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Welcome, "))

		out, err = run("whoami")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("admin"))
		Expect(out).To(ContainSubstring("Admin"))
	})

	It("lists the seeded tickets", func() {
		out, err := run("tickets", "list")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Printer not working"))
		Expect(out).To(ContainSubstring("Email configuration"))
		Expect(out).To(ContainSubstring("Loaded 2 tickets"))
	})

	It("changes the status of a ticket", func() {
		out, err := run("tickets", "status", "1", "resolved")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Ticket status updated to Resolved"))
	})

	It("adds a comment that shows up in the ticket detail", func() {
		out, err := run("tickets", "comment", "1", "Replaced", "the", "toner")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Comment added"))

		out, err = run("tickets", "show", "1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Replaced the toner"))
		Expect(out).To(ContainSubstring("Resolved"))
	})

	It("lists the seeded categories", func() {
		out, err := run("categories", "list")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Hardware"))
		Expect(out).To(ContainSubstring("Account"))
	})

	It("keeps the session when a login fails", func() {
		_, err := run("login", "user1", "--password", "wrong-password")
		Expect(err).To(HaveOccurred())
		Expect(exitCode(err)).To(Equal(3))

		out, err := run("whoami")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("admin"))
	})

	It("drops the session on logout", func() {
		out, err := run("logout")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Logged out"))

		_, err = run("whoami")
		Expect(exitCode(err)).To(Equal(3))
	})
})

// setenv sets key until the current test ends.
func setenv(key, value string) error {
	prev, had := os.LookupEnv(key)
	DeferCleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
	return os.Setenv(key, value)
}
