// Package tui is the interactive terminal client. It drives the rules
// engine directly and persists games and stats through the same ports the
// server adapters implement.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"klondike/internal/app"
	"klondike/internal/codec"
	"klondike/internal/domain"
	"klondike/internal/ports"
)

// Options wires the model to the engine and its stores.
type Options struct {
	Service  *app.Service
	Saves    ports.SavePort
	Stats    ports.StatsPort
	Profile  string
	Autosave bool
	RedSuits string // terminal color for hearts and diamonds
}

type model struct {
	opts Options
	red  lipgloss.Style

	game        *domain.Game
	snap        domain.Snapshot
	saveVersion string
	journal     *app.Journal
	finished    bool

	input  textinput.Model
	status string
}

// NewModel resumes the profile's saved game when one exists, otherwise it
// deals fresh.
func NewModel(opts Options) model {
	ti := textinput.New()
	ti.Placeholder = "command (h for help)"
	ti.Focus()
	ti.CharLimit = 32
	ti.Width = 40

	m := model{
		opts:  opts,
		red:   lipgloss.NewStyle().Foreground(lipgloss.Color(opts.RedSuits)),
		input: ti,
	}
	if !m.resume() {
		m.deal()
	}
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.persist()
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			return m.execute(line)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) execute(line string) (tea.Model, tea.Cmd) {
	cmd, err := parseCommand(line)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}

	switch cmd.kind {
	case cmdNone:
		return m, nil
	case cmdQuit:
		m.persist()
		return m, tea.Quit
	case cmdHelp:
		m.status = helpText
		return m, nil
	case cmdStats:
		m.status = m.statsLine()
		return m, nil
	case cmdNew:
		m.deal()
		return m, nil
	}

	if m.finished {
		m.status = "The game is over. Deal again with n."
		return m, nil
	}

	switch cmd.kind {
	case cmdDraw:
		m.apply(app.Op{Op: app.OpDraw})
	case cmdUndo:
		m.apply(app.Op{Op: app.OpUndo})
	case cmdMove:
		op, err := m.moveOp(cmd)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.apply(op)
	}
	return m, nil
}

// resume loads and restores the profile's save. It reports false when
// there is nothing usable so the caller deals a fresh game instead.
func (m *model) resume() bool {
	saved, err := m.opts.Saves.Load(context.Background(), m.opts.Profile)
	if err != nil {
		if !errors.Is(err, ports.ErrNoSave) {
			m.status = "Could not load the saved game, dealing fresh."
		}
		return false
	}

	snap, err := codec.Decode(saved.Blob)
	if err == nil {
		var game *domain.Game
		game, err = domain.Restore(snap)
		if err == nil {
			m.game = game
			m.snap = game.Snapshot()
			m.saveVersion = saved.Version
			// The ops played before the save are gone, so a resumed
			// game has no journal and its result records without one.
			m.journal = nil
			m.status = fmt.Sprintf("Resumed game at %d points after %d moves.", snap.Score, snap.Moves)
			return true
		}
	}
	m.status = "Saved game was damaged, dealing fresh."
	return false
}

func (m *model) deal() {
	m.recordAbandoned()

	game, events := m.opts.Service.NewGame()
	m.game = game
	m.snap = game.Snapshot()
	m.saveVersion = ports.VersionAny
	m.journal = &app.Journal{Seed: game.Seed()}
	m.finished = false
	m.status = statusFromEvents(events)
	m.autosave()
}

// recordAbandoned counts a discarded in-progress game as a loss. Deals the
// player never touched are not recorded.
func (m *model) recordAbandoned() {
	if m.game == nil || m.finished || m.game.IsWon() || m.game.Moves() == 0 {
		return
	}
	m.recordResult(false)
}

// apply runs one engine op, journals it and refreshes the view state.
func (m *model) apply(op app.Op) {
	var events []app.Event
	var err error

	switch op.Op {
	case app.OpDraw:
		events, err = m.opts.Service.Draw(m.game)
	case app.OpUndo:
		events, err = m.opts.Service.Undo(m.game)
	case app.OpMove:
		// Tokens were validated when the op was built.
		source, _ := app.ParseRef(op.From)
		target, _ := app.ParseRef(op.To)
		events, err = m.opts.Service.Transfer(m.game, source, op.Index, target)
	}
	if err != nil {
		m.status = rejectionText(err)
		return
	}

	m.snap = m.game.Snapshot()
	if m.journal != nil {
		m.journal.Ops = append(m.journal.Ops, op)
	}
	m.status = statusFromEvents(events)

	if m.game.IsWon() {
		m.finishWin()
		return
	}
	m.autosave()
}

// moveOp turns "m <from> <to> [count]" into an engine op. The count names
// cards off the top of the source, so count 1 moves the top card.
func (m *model) moveOp(cmd command) (app.Op, error) {
	source, err := app.ParseRef(cmd.from)
	if err != nil {
		return app.Op{}, err
	}
	if _, err := app.ParseRef(cmd.to); err != nil {
		return app.Op{}, err
	}
	size := m.pileSize(source)
	if cmd.count > size {
		return app.Op{}, fmt.Errorf("pile %s has only %d cards", cmd.from, size)
	}
	return app.Op{Op: app.OpMove, From: cmd.from, Index: size - cmd.count, To: cmd.to}, nil
}

// finishWin records the win and clears the save. The game stays on screen
// but no longer accepts moves; a fresh deal starts the next one.
func (m *model) finishWin() {
	m.recordResult(true)
	if err := m.opts.Saves.Delete(context.Background(), m.opts.Profile); err != nil {
		m.status += " (could not clear the save)"
	}
	m.finished = true
}

func (m *model) recordResult(won bool) {
	res := ports.Result{
		Seed:  m.game.Seed(),
		Score: m.game.Score(),
		Moves: m.game.Moves(),
		Won:   won,
	}
	if m.journal != nil {
		if data, err := json.Marshal(m.journal); err == nil {
			res.Journal = string(data)
		}
	}
	if err := m.opts.Stats.RecordResult(context.Background(), m.opts.Profile, res); err != nil {
		m.status = "Could not record the result: " + err.Error()
	}
}

func (m *model) autosave() {
	if !m.opts.Autosave {
		return
	}
	m.persist()
}

// persist writes the current game regardless of the autosave setting, so
// quitting never loses progress.
func (m *model) persist() {
	if m.game == nil || m.finished {
		return
	}
	version, err := m.opts.Saves.Save(context.Background(), m.opts.Profile, codec.Encode(m.snap), m.saveVersion)
	if err != nil {
		m.status = "Save failed: " + err.Error()
		return
	}
	m.saveVersion = version
}

func (m *model) statsLine() string {
	stats, err := m.opts.Stats.Stats(context.Background(), m.opts.Profile)
	if err != nil {
		return "Could not read stats: " + err.Error()
	}
	return fmt.Sprintf("Played %d, won %d, best score %d, total score %d, total moves %d.",
		stats.GamesPlayed, stats.GamesWon, stats.BestScore, stats.TotalScore, stats.TotalMoves)
}

func (m *model) pileSize(ref domain.StackRef) int {
	switch ref.Kind {
	case domain.StockPile:
		return len(m.snap.Stock().Cards)
	case domain.WastePile:
		return len(m.snap.Waste().Cards)
	case domain.TableauPile:
		return len(m.snap.Tableau(ref.Index).Cards)
	default:
		return len(m.snap.Foundation(ref.Index).Cards)
	}
}

func rejectionText(err error) string {
	switch {
	case errors.Is(err, domain.ErrNothingToDraw):
		return "Nothing to draw."
	case errors.Is(err, domain.ErrNothingToUndo):
		return "Nothing to undo."
	case errors.Is(err, domain.ErrSourceEmpty):
		return "That pile is empty."
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return "The pile does not have that many cards."
	case errors.Is(err, domain.ErrInvalidSequence):
		return "Those cards do not form a movable run."
	case errors.Is(err, domain.ErrIllegalMove):
		return "That card cannot go there."
	}
	return err.Error()
}

func statusFromEvents(events []app.Event) string {
	var parts []string
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case app.GameStartedPayload:
			parts = append(parts, "New deal.")
		case app.CardDrawnPayload:
			parts = append(parts, fmt.Sprintf("Drew %s.", cardLabel(p.Card)))
		case app.StockRecycledPayload:
			parts = append(parts, fmt.Sprintf("Recycled %d cards into the stock.", p.Count))
		case app.CardsMovedPayload:
			text := fmt.Sprintf("Moved %s to %s.", runLabel(p.Cards), app.RefToken(p.Target))
			if p.Flipped {
				text += " Flipped a card."
			}
			parts = append(parts, text)
		case app.MoveUndonePayload:
			parts = append(parts, "Undid the last move.")
		case app.GameWonPayload:
			parts = append(parts, fmt.Sprintf("You won with %d points in %d moves!", p.Score, p.Moves))
		}
	}
	return strings.Join(parts, " ")
}

func runLabel(cards []domain.Card) string {
	if len(cards) == 1 {
		return cardLabel(cards[0])
	}
	return fmt.Sprintf("%d cards", len(cards))
}

// Run starts the interactive client and blocks until the player quits.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
