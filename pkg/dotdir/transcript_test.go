package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cosmohq/cosmo/pkg/dotdir"
)

var _ = Describe("dotdir.Manager transcript", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadTranscript", func() {
		It("returns nil when no transcript exists", func() {
			transcript, err := m.LoadTranscript(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(transcript).To(BeNil())
		})

		It("loads a saved transcript", func() {
			data := `{"mode":"detailed","saved_at":"2026-08-26T10:00:00Z","messages":[{"role":"user","content":"what is a hook?"},{"role":"assistant","content":"A function starting with use."}]}`
			err := os.WriteFile(filepath.Join(tmpDir, "transcript.json"), []byte(data), 0o644)
			Expect(err).NotTo(HaveOccurred())

			transcript, err := m.LoadTranscript(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(transcript).NotTo(BeNil())
			Expect(transcript.Mode).To(Equal("detailed"))
			Expect(transcript.Messages).To(HaveLen(2))
			Expect(transcript.Messages[0].Role).To(Equal("user"))
			Expect(transcript.Messages[1].Content).To(Equal("A function starting with use."))
		})

		It("returns error for invalid JSON", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "transcript.json"), []byte("not json"), 0o644)
			Expect(err).NotTo(HaveOccurred())

			transcript, err := m.LoadTranscript(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(transcript).To(BeNil())
		})
	})

	Describe("SaveTranscript", func() {
		It("persists the transcript to disk", func() {
			transcript := &dotdir.Transcript{
				Mode:    "quick",
				SavedAt: time.Now().UTC(),
				Messages: []dotdir.TranscriptMessage{
					{Role: "user", Content: "what is Go?"},
					{Role: "assistant", Content: "Go is a programming language."},
				},
			}

			err := m.SaveTranscript(transcript, tmpDir)
			Expect(err).NotTo(HaveOccurred())

			loaded, err := m.LoadTranscript(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Mode).To(Equal("quick"))
			Expect(loaded.Messages).To(HaveLen(2))
		})

		It("returns error for nil transcript", func() {
			err := m.SaveTranscript(nil, tmpDir)
			Expect(err).To(HaveOccurred())
		})

		It("overwrites an existing transcript", func() {
			first := &dotdir.Transcript{
				Mode:     "quick",
				Messages: []dotdir.TranscriptMessage{{Role: "user", Content: "first"}},
			}
			second := &dotdir.Transcript{
				Mode:     "detailed",
				Messages: []dotdir.TranscriptMessage{{Role: "user", Content: "second"}},
			}

			Expect(m.SaveTranscript(first, tmpDir)).To(Succeed())
			Expect(m.SaveTranscript(second, tmpDir)).To(Succeed())

			loaded, err := m.LoadTranscript(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Mode).To(Equal("detailed"))
			Expect(loaded.Messages[0].Content).To(Equal("second"))
		})
	})

	Describe("ClearTranscript", func() {
		It("removes the transcript file", func() {
			transcript := &dotdir.Transcript{
				Messages: []dotdir.TranscriptMessage{{Role: "user", Content: "hi"}},
			}
			Expect(m.SaveTranscript(transcript, tmpDir)).To(Succeed())

			Expect(m.ClearTranscript(tmpDir)).To(Succeed())

			loaded, err := m.LoadTranscript(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())
		})

		It("succeeds when no transcript exists", func() {
			Expect(m.ClearTranscript(tmpDir)).To(Succeed())
		})
	})
})
