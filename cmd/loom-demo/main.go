package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/iw2rmb/loom"
	"github.com/iw2rmb/loom/buffer"
	"github.com/iw2rmb/loom/highlight"
	"github.com/iw2rmb/loom/tui"
	"github.com/iw2rmb/loom/view"
)

const welcome = "Hello from loom.\n\nType to edit.\nUse arrows to move.\nCtrl+Q to quit.\n"

type options struct {
	wrap          string
	logPath       string
	theme         string
	lang          string
	numbers       bool
	readOnly      bool
	todo          bool
	lazyThreshold int64
}

type model struct {
	editor tui.Model
	name   string
	quit   key.Binding
	status lipgloss.Style
	help   lipgloss.Style

	toggleHelp key.Binding
	closeHelp  key.Binding
	showHelp   bool
	helpText   string
	helpView   viewport.Model
	helpBox    lipgloss.Style
}

func (m model) Init() tea.Cmd { return m.editor.Init() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.editor = m.editor.SetSize(msg.Width, max(msg.Height-1, 0))
		m.sizeHelp(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.quit):
			return m, tea.Quit
		case key.Matches(msg, m.toggleHelp):
			m.showHelp = !m.showHelp
			m.helpView.GotoTop()
			return m, nil
		case m.showHelp && key.Matches(msg, m.closeHelp):
			m.showHelp = false
			return m, nil
		case m.showHelp:
			var cmd tea.Cmd
			m.helpView, cmd = m.helpView.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m model) View() string {
	base := m.editor.View() + "\n" + m.statusLine()
	if !m.showHelp {
		return base
	}
	return overlay.Composite(m.helpBox.Render(m.helpView.View()), base, overlay.Center, overlay.Center, 0, 0)
}

// sizeHelp fits the help popup inside a w x h screen.
func (m *model) sizeHelp(w, h int) {
	frameW, frameH := m.helpBox.GetFrameSize()
	lines := strings.Count(m.helpText, "\n") + 1
	m.helpView.Width = max(min(lipgloss.Width(m.helpText), w-frameW-2), 1)
	m.helpView.Height = max(min(lines, h-frameH-2), 1)
	m.helpView.SetContent(m.helpText)
}

// helpText lists every binding, one per line, with a blank line between groups.
func helpText(groups [][]key.Binding) string {
	var b strings.Builder
	for i, group := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "%-14s %s\n", h.Key, h.Desc)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) statusLine() string {
	v := m.editor.Core()
	store := v.Store()
	pos := v.Cursor().Position

	where := fmt.Sprintf("@%d", pos)
	if line, err := store.LineOf(pos); err == nil {
		start, _ := store.LineStart(line)
		where = fmt.Sprintf("%d:%d", line+1, pos-start+1)
	}
	parts := []string{m.name, where, fmt.Sprintf("v%d", store.Version())}
	if store.Lazy() {
		parts = append(parts, "lazy")
	}
	if err := v.LoadErr(); err != nil && !errors.Is(err, buffer.ErrPending) {
		parts = append(parts, "load failed")
	}

	var help []string
	for _, b := range append(tui.DefaultKeyMap().ShortHelp(), m.toggleHelp, m.quit) {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	return m.status.Render(strings.Join(parts, "  ")) + " " + m.help.Render(strings.Join(help, " · "))
}

// todoMarks injects a virtual line above every source line mentioning TODO.
func todoMarks(base []view.Token, _ view.ViewportHint) (view.TransformResult, bool) {
	out := make([]view.Token, 0, len(base))
	var injected int64
	lineStart := 0
	flush := func(end int) {
		var text strings.Builder
		for _, t := range base[lineStart:end] {
			text.WriteString(t.Text)
		}
		if strings.Contains(text.String(), "TODO") {
			out = append(out, view.SyntheticLine("  ↓ todo", "virtual")...)
			injected++
		}
		out = append(out, base[lineStart:end]...)
		lineStart = end
	}
	for i, t := range base {
		if t.Kind == view.TokenNewline {
			flush(i + 1)
		}
	}
	flush(len(base))
	return view.TransformResult{
		Tokens: out,
		Hints:  view.LayoutHints{TotalInjectedLines: injected},
	}, true
}

func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}

// openStore loads path, fetching large files in the background. The
// returned channel signals fetched data; it is nil for in-memory stores.
func openStore(path string, opt options, log *zap.Logger) (*buffer.Store, <-chan struct{}, error) {
	bopt := buffer.Options{LazyThreshold: opt.lazyThreshold, Logger: log}
	if path == "" {
		return buffer.New(welcome, bopt), nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	threshold := opt.lazyThreshold
	if threshold <= 0 {
		threshold = buffer.DefaultLazyThreshold
	}
	if st.Size() <= threshold {
		f.Close()
		store, err := buffer.Open(path, bopt)
		return store, nil, err
	}
	loader := &fileLoader{AsyncLoader: buffer.NewAsyncLoader(f, st.Size(), 4, log), file: f}
	store, err := buffer.Load(buffer.Source{Loader: loader}, bopt)
	if err != nil {
		loader.Close()
		return nil, nil, err
	}
	return store, loader.Ready(), nil
}

// fileLoader closes the file once the loader has drained.
type fileLoader struct {
	*buffer.AsyncLoader
	file *os.File
}

func (l *fileLoader) Close() error {
	return errors.Join(l.AsyncLoader.Close(), l.file.Close())
}

func newModel(editor tui.Model, name string) model {
	m := model{
		editor: editor,
		name:   name,
		quit:   key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "quit")),
		status: lipgloss.NewStyle().Reverse(true).Padding(0, 1),
		help:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		toggleHelp: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "help")),
		closeHelp:  key.NewBinding(key.WithKeys("esc")),
		helpView:   viewport.New(0, 0),
		helpBox:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
	m.helpText = helpText(append(tui.DefaultKeyMap().FullHelp(), []key.Binding{m.toggleHelp, m.quit}))
	return m
}

func run(path string, opt options) error {
	log, err := newLogger(opt.logPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	wrap, err := view.ParseWrapMode(opt.wrap)
	if err != nil {
		return err
	}
	store, ready, err := openStore(path, opt, log)
	if err != nil {
		return err
	}
	defer store.Close()

	hl := highlight.New(store, highlight.Options{Language: opt.lang, Filename: path, Logger: log})
	theme := highlight.NewTheme(opt.theme)
	theme.Set("virtual", lipgloss.NewStyle().Faint(true).Italic(true))
	log.Info("opened",
		zap.String("path", path),
		zap.Int64("size", store.Len()),
		zap.Bool("lazy", store.Lazy()),
		zap.String("language", hl.Language()),
		zap.String("theme", theme.Name()))

	vcfg := view.Config{WrapMode: wrap, Highlighter: hl, Logger: log}
	if opt.todo {
		vcfg.Transform = view.TransformFunc(todoMarks)
	}
	editor := tui.New(store, tui.Config{
		View:         vcfg,
		ShowLineNums: opt.numbers,
		Style:        tui.DefaultStyle(),
		ReadOnly:     opt.readOnly,
		StyleForKey:  theme.Style,
		Ready:        ready,
		Logger:       log,
	}).Focus()

	name := path
	if name == "" {
		name = "[scratch]"
	}
	m := newModel(editor, name)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}

func main() {
	var opt options
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.StringVar(&opt.wrap, "wrap", "none", "wrap mode: none, word or grapheme")
	flag.StringVar(&opt.logPath, "log", "", "write JSON logs to this file")
	flag.StringVar(&opt.theme, "theme", highlight.DefaultTheme, "highlight theme")
	flag.StringVar(&opt.lang, "lang", "", "force the highlight language")
	flag.BoolVar(&opt.numbers, "numbers", true, "show line numbers")
	flag.BoolVar(&opt.readOnly, "readonly", false, "open read-only")
	flag.BoolVar(&opt.todo, "todo", false, "mark lines containing TODO with a virtual line")
	flag.Int64Var(&opt.lazyThreshold, "lazy-threshold", buffer.DefaultLazyThreshold, "files larger than this many bytes load on demand")
	flag.Parse()

	if *showVersion {
		fmt.Println(loom.VersionTag())
		return
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		_, _ = os.Stderr.WriteString("loom-demo: stdout is not a terminal\n")
		os.Exit(1)
	}
	if err := run(flag.Arg(0), opt); err != nil {
		_, _ = os.Stderr.WriteString("loom-demo: " + err.Error() + "\n")
		os.Exit(1)
	}
}
