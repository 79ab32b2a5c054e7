package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"klondike/internal/domain"
)

const helpText = "d draw · m <from> <to> [count] · u undo · n new deal · t stats · q quit"

const emptySlot = "--"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	backStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5F5F87"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	columnStyle = lipgloss.NewStyle().Width(7)
)

func (m model) View() string {
	header := titleStyle.Render("Klondike") + "   " +
		labelStyle.Render(fmt.Sprintf("score %d   moves %d", m.snap.Score, m.snap.Moves))

	return "\n" + lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.renderTopRow(),
		"",
		m.renderTableau(),
		"",
		statusStyle.Render(m.status),
		m.input.View(),
		helpStyle.Render(helpText),
	) + "\n"
}

// renderTopRow shows the stock count, the waste top and the foundations.
func (m model) renderTopRow() string {
	parts := []string{
		labelStyle.Render("s") + " " + m.renderStock(),
		labelStyle.Render("w") + " " + m.renderTop(m.snap.Waste()),
	}
	for i := 0; i < domain.FoundationCount; i++ {
		parts = append(parts, labelStyle.Render(fmt.Sprintf("f%d", i))+" "+m.renderTop(m.snap.Foundation(i)))
	}
	return strings.Join(parts, "   ")
}

func (m model) renderStock() string {
	n := len(m.snap.Stock().Cards)
	if n == 0 {
		return emptySlot
	}
	return backStyle.Render(fmt.Sprintf("▒▒ %d", n))
}

func (m model) renderTop(pile domain.Pile) string {
	if len(pile.Cards) == 0 {
		return emptySlot
	}
	return m.renderCard(pile.Cards[len(pile.Cards)-1])
}

// renderTableau lays the seven piles out as columns, one card per line.
func (m model) renderTableau() string {
	cols := make([]string, domain.TableauCount)
	for i := 0; i < domain.TableauCount; i++ {
		lines := []string{labelStyle.Render(fmt.Sprintf("t%d", i))}
		for _, c := range m.snap.Tableau(i).Cards {
			lines = append(lines, m.renderCard(c))
		}
		if len(lines) == 1 {
			lines = append(lines, emptySlot)
		}
		cols[i] = columnStyle.Render(strings.Join(lines, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m model) renderCard(c domain.Card) string {
	if !c.FaceUp {
		return backStyle.Render("▒▒")
	}
	label := cardLabel(c)
	if c.Color() == domain.Red {
		return m.red.Render(label)
	}
	return label
}

func cardLabel(c domain.Card) string {
	return c.Rank.String() + suitGlyph(c.Suit)
}

func suitGlyph(s domain.Suit) string {
	switch s {
	case domain.Spades:
		return "♠"
	case domain.Hearts:
		return "♥"
	case domain.Diamonds:
		return "♦"
	default:
		return "♣"
	}
}
