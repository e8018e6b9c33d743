package askcmder_test

import (
	"net/http/httptest"

	adaptor "github.com/gofiber/adaptor/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	cosmocmder "github.com/cosmohq/cosmo/cmd/cosmo"
	askcmder "github.com/cosmohq/cosmo/cmd/cosmo/ask"
	"github.com/cosmohq/cosmo/pkg/logger"
	"github.com/cosmohq/cosmo/pkg/stub"
)

var _ = Describe("NewAskCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := askcmder.NewAskCmd()
		Expect(cmd.Use).To(Equal("ask <question>"))
	})

	It("requires at least one argument", func() {
		cmd := askcmder.NewAskCmd()
		err := cmd.Args(cmd, []string{})
		Expect(err).To(HaveOccurred())
	})

	It("accepts a multi-word question", func() {
		cmd := askcmder.NewAskCmd()
		err := cmd.Args(cmd, []string{"what", "is", "a", "reducer"})
		Expect(err).NotTo(HaveOccurred())
	})

	It("registers the target, mode, and n-results flags", func() {
		cmd := askcmder.NewAskCmd()
		Expect(cmd.Flags().Lookup("target")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("mode")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("n-results")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("render")).NotTo(BeNil())
	})
})

var _ = Describe("Ask command execution", func() {
	var backend *httptest.Server

	BeforeEach(func() {
		server := stub.NewServer(stub.Config{}, logger.Nop())
		backend = httptest.NewServer(adaptor.FiberApp(server.App()))
	})

	AfterEach(func() {
		backend.Close()
	})

	It("streams an answer from the server", func() {
		root := cosmocmder.NewCosmoCmd()
		root.SetArgs([]string{"ask", "--target", backend.URL, "What are hooks?"})
		err := root.Execute()
		Expect(err).NotTo(HaveOccurred())
	})

	It("fails against an unreachable server", func() {
		root := cosmocmder.NewCosmoCmd()
		root.SetArgs([]string{"ask", "--target", "http://127.0.0.1:1", "What are hooks?"})
		root.SilenceErrors = true
		root.SilenceUsage = true
		err := root.Execute()
		Expect(err).To(HaveOccurred())
	})
})
