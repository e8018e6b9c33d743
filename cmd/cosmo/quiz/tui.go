package quizcmder

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/cosmohq/cosmo/pkg/api"
	"github.com/cosmohq/cosmo/pkg/cliui"
	"github.com/cosmohq/cosmo/pkg/results"
)

func init() {
	// Force TrueColor profile to fix lipgloss color detection issue
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)
}

type quizPhase int

const (
	phaseAnswering quizPhase = iota
	phaseGrading
	phaseFeedback
	phaseDone
)

var (
	quizTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	quizProgressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	quizSectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	quizOptionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	quizCursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	quizCorrectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("70")).Bold(true)
	quizPartialStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	quizWrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	quizFeedbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	quizDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// quizItem is one question annotated with its section type.
type quizItem struct {
	section string
	q       api.Question
}

// flattenQuiz lists the quiz's questions in section order.
func flattenQuiz(quiz *api.Quiz) []quizItem {
	var items []quizItem
	for _, section := range quiz.Sections {
		for _, q := range section.Questions {
			items = append(items, quizItem{section: section.Type, q: q})
		}
	}
	return items
}

// choices returns the selectable options for a question, or nil for
// free-text short answers.
func (item quizItem) choices() []string {
	switch item.section {
	case api.SectionTrueFalse:
		return []string{"True", "False"}
	case api.SectionMultipleChoice:
		return item.q.Options
	}
	return nil
}

// evaluateFunc grades a short answer against the reference answer.
type evaluateFunc func(question, userAnswer, modelAnswer string) (*api.Evaluation, error)

type gradedMsg struct {
	answer results.Answer
	err    error
}

type quizKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Submit key.Binding
	Next   key.Binding
	Quit   key.Binding
}

func (k quizKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Submit, k.Quit}
}

func (k quizKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Down, k.Up}, {k.Submit, k.Next, k.Quit}}
}

func defaultQuizKeyMap() quizKeyMap {
	return quizKeyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "answer")),
		Next:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

type quizModel struct {
	title    string
	items    []quizItem
	rendered []string
	index    int
	phase    quizPhase
	cursor   int
	input    textinput.Model
	spin     spinner.Model
	evaluate evaluateFunc
	answers  []results.Answer
	aborted  bool
	width    int
	keys     quizKeyMap
	help     help.Model
}

func newQuizModel(quiz *api.Quiz, evaluate evaluateFunc) quizModel {
	input := textinput.New()
	input.Placeholder = "your answer"
	input.CharLimit = 512
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	items := flattenQuiz(quiz)

	// Questions can carry markdown (code snippets in programming quizzes),
	// so render them up front rather than on every frame.
	rendered := make([]string, len(items))
	for i, item := range items {
		out, err := cliui.RenderMarkdown(item.q.Question)
		if err != nil {
			out = item.q.Question
		}
		rendered[i] = strings.TrimSpace(out)
	}

	return quizModel{
		title:    quiz.Title,
		items:    items,
		rendered: rendered,
		evaluate: evaluate,
		input:    input,
		spin:     spin,
		keys:     defaultQuizKeyMap(),
		help:     help.New(),
	}
}

func (m quizModel) Init() bubbletea.Cmd {
	return textinput.Blink
}

func (m quizModel) current() quizItem {
	return m.items[m.index]
}

func (m quizModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseGrading {
			return m, nil
		}
		var cmd bubbletea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case gradedMsg:
		if msg.err != nil {
			// Grade generously when the server cannot be reached.
			msg.answer.Score = "partial"
			msg.answer.Feedback = fmt.Sprintf("Could not grade: %v", msg.err)
		}
		m.answers = append(m.answers, msg.answer)
		m.phase = phaseFeedback
		return m, nil

	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m quizModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.aborted = true
		return m, bubbletea.Quit
	}

	switch m.phase {
	case phaseGrading:
		return m, nil

	case phaseFeedback:
		if msg.String() == "enter" {
			return m.advance()
		}
		return m, nil

	case phaseDone:
		return m, bubbletea.Quit
	}

	// Answering.
	item := m.current()
	if choices := item.choices(); choices != nil {
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(choices)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			return m.submitChoice(choices[m.cursor])
		}
		return m, nil
	}

	if msg.String() == "enter" {
		user := strings.TrimSpace(m.input.Value())
		if user == "" {
			return m, nil
		}
		return m.submitShortAnswer(user)
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitChoice grades true/false and multiple choice locally.
func (m quizModel) submitChoice(user string) (bubbletea.Model, bubbletea.Cmd) {
	item := m.current()
	reference := item.q.ModelAnswer(item.section)

	answer := results.Answer{
		Question:   item.q.Question,
		UserAnswer: user,
	}

	if strings.EqualFold(user, reference) {
		answer.Score = "correct"
		answer.Feedback = "Correct."
	} else {
		answer.Score = "incorrect"
		answer.Feedback = fmt.Sprintf("The answer is %s.", reference)
	}

	m.answers = append(m.answers, answer)
	m.phase = phaseFeedback
	return m, nil
}

// submitShortAnswer hands free text to the server for grading.
func (m quizModel) submitShortAnswer(user string) (bubbletea.Model, bubbletea.Cmd) {
	item := m.current()
	m.phase = phaseGrading

	grade := func() bubbletea.Msg {
		answer := results.Answer{
			Question:   item.q.Question,
			UserAnswer: user,
		}

		eval, err := m.evaluate(item.q.Question, user, item.q.ModelAnswer(item.section))
		if err != nil {
			return gradedMsg{answer: answer, err: err}
		}

		answer.Score = eval.Score
		answer.Feedback = eval.Feedback
		return gradedMsg{answer: answer}
	}

	return m, bubbletea.Batch(m.spin.Tick, grade)
}

func (m quizModel) advance() (bubbletea.Model, bubbletea.Cmd) {
	if m.index >= len(m.items)-1 {
		m.phase = phaseDone
		return m, bubbletea.Quit
	}

	m.index++
	m.cursor = 0
	m.phase = phaseAnswering
	m.input.SetValue("")
	return m, nil
}

func (m quizModel) View() string {
	if m.phase == phaseDone || len(m.items) == 0 {
		return ""
	}

	item := m.current()

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(quizTitleStyle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(quizProgressStyle.Render(fmt.Sprintf("question %d of %d", m.index+1, len(m.items))))
	b.WriteString("\n\n  ")
	b.WriteString(quizSectionStyle.Render(strings.ReplaceAll(item.section, "_", " ")))
	b.WriteString("\n\n  ")
	b.WriteString(strings.ReplaceAll(m.rendered[m.index], "\n", "\n  "))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseAnswering:
		b.WriteString(m.viewAnswering(item))
	case phaseGrading:
		b.WriteString(fmt.Sprintf("  %s grading...\n", m.spin.View()))
	case phaseFeedback:
		b.WriteString(m.viewFeedback())
	}

	return b.String()
}

func (m quizModel) viewAnswering(item quizItem) string {
	var b strings.Builder

	if choices := item.choices(); choices != nil {
		for i, choice := range choices {
			if i == m.cursor {
				b.WriteString("  ")
				b.WriteString(quizCursorStyle.Render("▸ " + choice))
			} else {
				b.WriteString("    ")
				b.WriteString(quizOptionStyle.Render(choice))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n  ")
		b.WriteString(m.help.View(m.keys))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("  ")
	b.WriteString(m.input.View())
	b.WriteString("\n\n  ")
	b.WriteString(quizDimStyle.Render("enter to answer, ctrl+c to quit"))
	b.WriteString("\n")
	return b.String()
}

func (m quizModel) viewFeedback() string {
	last := m.answers[len(m.answers)-1]

	var mark string
	switch last.Score {
	case "correct":
		mark = quizCorrectStyle.Render("✓ correct")
	case "partial":
		mark = quizPartialStyle.Render("~ partial")
	default:
		mark = quizWrongStyle.Render("✗ incorrect")
	}

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(mark)
	b.WriteString("\n\n  ")
	b.WriteString(quizFeedbackStyle.Render(last.Feedback))
	b.WriteString("\n\n  ")
	b.WriteString(quizDimStyle.Render("enter to continue"))
	b.WriteString("\n")
	return b.String()
}

// runQuizTUI walks through the quiz's questions interactively and returns
// the graded answers. aborted reports whether the user quit early.
func runQuizTUI(quiz *api.Quiz, evaluate evaluateFunc) (answers []results.Answer, aborted bool, err error) {
	model := newQuizModel(quiz, evaluate)

	program := bubbletea.NewProgram(model, bubbletea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return nil, false, err
	}

	m, ok := final.(quizModel)
	if !ok {
		return nil, false, fmt.Errorf("unexpected model type %T", final)
	}

	return m.answers, m.aborted, nil
}
