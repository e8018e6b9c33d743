package uploadcmder_test

import (
	"net/http/httptest"
	"os"
	"path/filepath"

	adaptor "github.com/gofiber/adaptor/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	cosmocmder "github.com/cosmohq/cosmo/cmd/cosmo"
	uploadcmder "github.com/cosmohq/cosmo/cmd/cosmo/upload"
	"github.com/cosmohq/cosmo/pkg/logger"
	"github.com/cosmohq/cosmo/pkg/stub"
)

var _ = Describe("NewUploadCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := uploadcmder.NewUploadCmd()
		Expect(cmd.Use).To(Equal("upload [files...]"))
	})

	It("rejects invocation without files or --dir", func() {
		cmd := uploadcmder.NewUploadCmd()
		err := cmd.Args(cmd, []string{})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("--dir"))
	})

	It("rejects mixing file arguments with --dir", func() {
		cmd := uploadcmder.NewUploadCmd()
		Expect(cmd.Flags().Set("dir", "./docs")).To(Succeed())
		err := cmd.Args(cmd, []string{"notes.md"})
		Expect(err).To(HaveOccurred())
	})

	It("registers workers flag with the default pool size", func() {
		cmd := uploadcmder.NewUploadCmd()
		flag := cmd.Flags().Lookup("workers")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("4"))
	})
})

var _ = Describe("Upload command execution", func() {
	var (
		backend *httptest.Server
		tmpDir  string
	)

	BeforeEach(func() {
		server := stub.NewServer(stub.Config{}, logger.Nop())
		backend = httptest.NewServer(adaptor.FiberApp(server.App()))

		var err error
		tmpDir, err = os.MkdirTemp("", "cosmo-upload-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		backend.Close()
		os.RemoveAll(tmpDir)
	})

	It("uploads a single file", func() {
		path := filepath.Join(tmpDir, "notes.md")
		Expect(os.WriteFile(path, []byte("# Hooks\n\nuseState holds state."), 0o644)).To(Succeed())

		root := cosmocmder.NewCosmoCmd()
		root.SetArgs([]string{"upload", "--target", backend.URL, path})
		err := root.Execute()
		Expect(err).NotTo(HaveOccurred())
	})

	It("uploads a directory", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "a.md"), []byte("alpha"), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(tmpDir, "b.md"), []byte("beta"), 0o644)).To(Succeed())

		root := cosmocmder.NewCosmoCmd()
		root.SetArgs([]string{"upload", "--target", backend.URL, "--dir", tmpDir})
		err := root.Execute()
		Expect(err).NotTo(HaveOccurred())
	})

	It("fails when a file cannot be uploaded", func() {
		root := cosmocmder.NewCosmoCmd()
		root.SetArgs([]string{"upload", "--target", backend.URL, filepath.Join(tmpDir, "missing.md")})
		root.SilenceErrors = true
		root.SilenceUsage = true
		err := root.Execute()
		Expect(err).To(HaveOccurred())
	})

	It("reports unsupported file types", func() {
		path := filepath.Join(tmpDir, "slides.pptx")
		Expect(os.WriteFile(path, []byte("deck"), 0o644)).To(Succeed())

		root := cosmocmder.NewCosmoCmd()
		root.SetArgs([]string{"upload", "--target", backend.URL, path})
		root.SilenceErrors = true
		root.SilenceUsage = true
		err := root.Execute()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("failed"))
	})
})
