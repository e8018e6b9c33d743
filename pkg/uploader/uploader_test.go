package uploader_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cosmohq/cosmo/pkg/api"
	"github.com/cosmohq/cosmo/pkg/uploader"
)

// ingestRecorder is an httptest handler that records uploaded filenames.
type ingestRecorder struct {
	mu        sync.Mutex
	filenames []string
	forced    []bool
}

func (r *ingestRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		_, header, err := req.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": "No file provided"}`)
			return
		}

		r.mu.Lock()
		r.filenames = append(r.filenames, header.Filename)
		r.forced = append(r.forced, req.URL.Query().Get("force") == "true")
		r.mu.Unlock()

		fmt.Fprintf(w, `{"status": "ok", "filename": %q, "chunks_indexed": 2}`, header.Filename)
	}
}

func (r *ingestRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.filenames...)
}

var _ = Describe("Discover", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()

		Expect(os.MkdirAll(filepath.Join(dir, "nested"), 0o755)).To(Succeed())
		Expect(os.MkdirAll(filepath.Join(dir, ".git"), 0o755)).To(Succeed())

		for _, name := range []string{"b.md", "a.pdf", "notes.markdown", "skip.txt", filepath.Join("nested", "deep.md"), filepath.Join(".git", "hidden.md")} {
			Expect(os.WriteFile(filepath.Join(dir, name), []byte("content"), 0o644)).To(Succeed())
		}
	})

	It("returns supported files sorted, skipping hidden directories", func() {
		paths, err := uploader.Discover(dir)
		Expect(err).NotTo(HaveOccurred())

		var names []string
		for _, p := range paths {
			rel, err := filepath.Rel(dir, p)
			Expect(err).NotTo(HaveOccurred())
			names = append(names, rel)
		}
		Expect(names).To(Equal([]string{"a.pdf", "b.md", filepath.Join("nested", "deep.md"), "notes.markdown"}))
	})

	It("errors on a missing directory", func() {
		_, err := uploader.Discover(filepath.Join(dir, "nope"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Pool", func() {
	var (
		recorder *ingestRecorder
		server   *httptest.Server
		dir      string
	)

	BeforeEach(func() {
		recorder = &ingestRecorder{}
		server = httptest.NewServer(recorder.handler())
		dir = GinkgoT().TempDir()
	})

	AfterEach(func() {
		server.Close()
	})

	It("uploads every discovered document", func() {
		for _, name := range []string{"one.md", "two.md", "three.pdf"} {
			Expect(os.WriteFile(filepath.Join(dir, name), []byte("content"), 0o644)).To(Succeed())
		}

		var results []uploader.Result
		pool, err := uploader.NewPool(&uploader.Config{
			Client:     api.NewClient(server.URL),
			NumWorkers: 2,
			OnResult:   func(r uploader.Result) { results = append(results, r) },
		})
		Expect(err).NotTo(HaveOccurred())

		count, err := pool.UploadDir(dir, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(3))

		pool.Close()

		Expect(recorder.names()).To(ConsistOf("one.md", "two.md", "three.pdf"))
		Expect(results).To(HaveLen(3))
		for _, r := range results {
			Expect(r.Err).NotTo(HaveOccurred())
			Expect(r.ChunksIndexed).To(Equal(2))
		}
	})

	It("reports upload failures through OnResult", func() {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error": "ollama is down"}`)
		}))
		defer failing.Close()

		path := filepath.Join(dir, "doc.md")
		Expect(os.WriteFile(path, []byte("content"), 0o644)).To(Succeed())

		var results []uploader.Result
		pool, err := uploader.NewPool(&uploader.Config{
			Client:   api.NewClient(failing.URL),
			OnResult: func(r uploader.Result) { results = append(results, r) },
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(pool.Enqueue(uploader.Job{Path: path})).To(BeTrue())
		pool.Close()

		Expect(results).To(HaveLen(1))
		Expect(results[0].Err).To(MatchError("ollama is down"))
	})

	It("requires a client", func() {
		_, err := uploader.NewPool(&uploader.Config{})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Watch", func() {
	It("uploads files created while watching", func() {
		recorder := &ingestRecorder{}
		server := httptest.NewServer(recorder.handler())
		defer server.Close()

		dir := GinkgoT().TempDir()

		pool, err := uploader.NewPool(&uploader.Config{
			Client: api.NewClient(server.URL),
		})
		Expect(err).NotTo(HaveOccurred())
		defer pool.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		watchDone := make(chan error, 1)
		go func() {
			watchDone <- pool.Watch(ctx, dir)
		}()

		// Give the watcher a moment to register before creating the file.
		Consistently(watchDone, "100ms").ShouldNot(Receive())

		Expect(os.WriteFile(filepath.Join(dir, "fresh.md"), []byte("content"), 0o644)).To(Succeed())

		Eventually(recorder.names, "5s", "100ms").Should(ContainElement("fresh.md"))

		cancel()
		Eventually(watchDone).Should(Receive(MatchError(context.Canceled)))
	})

	It("rejects a file path", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "file.md")
		Expect(os.WriteFile(path, []byte("x"), 0o644)).To(Succeed())

		pool, err := uploader.NewPool(&uploader.Config{
			Client: api.NewClient("http://localhost:0"),
		})
		Expect(err).NotTo(HaveOccurred())
		defer pool.Close()

		Expect(pool.Watch(context.Background(), path)).To(HaveOccurred())
	})
})
