package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/NikitaDmitryuk/ani-dl/internal/catalog"
	"github.com/NikitaDmitryuk/ani-dl/internal/downloader/manager"
)

var (
	// ErrQuit is returned when the user interrupts a prompt.
	ErrQuit = errors.New("quit")
	// ErrBack is returned when the user closes a prompt with EOF.
	ErrBack = errors.New("back")
)

type Action int

const (
	ActionDownload Action = iota
	ActionWatch
)

func (a Action) String() string {
	switch a {
	case ActionDownload:
		return "Download"
	case ActionWatch:
		return "Watch"
	default:
		return "unknown"
	}
}

const selectSize = 12

// Menu asks the user for choices on a terminal.
type Menu struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

func NewMenu() *Menu {
	return &Menu{Stdin: os.Stdin, Stdout: os.Stdout}
}

func (m *Menu) SelectTitle(names []string) (string, error) {
	idx, err := m.selectItem("Select a title", names, func(input string, index int) bool {
		return strings.Contains(strings.ToLower(names[index]), strings.ToLower(input))
	})
	if err != nil {
		return "", err
	}
	return names[idx], nil
}

func (m *Menu) SelectLanguage() (string, error) {
	options := []string{"VF", "VOSTFR"}
	idx, err := m.selectItem("VF or VOSTFR?", options, nil)
	if err != nil {
		return "", err
	}
	return strings.ToLower(options[idx]), nil
}

func (m *Menu) SelectSeason(seasons []catalog.Media) (catalog.Media, error) {
	idx, err := m.selectItem("Select a season", seasons, nil)
	if err != nil {
		return catalog.Media{}, err
	}
	return seasons[idx], nil
}

func (m *Menu) SelectAction() (Action, error) {
	actions := []Action{ActionDownload, ActionWatch}
	idx, err := m.selectItem("Download or watch?", actions, nil)
	if err != nil {
		return 0, err
	}
	return actions[idx], nil
}

// ReadRange asks for an inclusive "start-end" range of 0-based episode indices.
func (m *Menu) ReadRange(count int) (string, error) {
	return m.prompt(fmt.Sprintf("Episodes to download (0-%d)", count-1), rangeValidator(count))
}

// SelectEpisode returns a 1-based episode number.
func (m *Menu) SelectEpisode(count int) (int, error) {
	numbers := make([]int, count)
	for i := range numbers {
		numbers[i] = i + 1
	}
	idx, err := m.selectItem("Select an episode", numbers, nil)
	if err != nil {
		return 0, err
	}
	return numbers[idx], nil
}

func (m *Menu) Notify(message string) {
	fmt.Fprintln(m.output(), message)
}

func (m *Menu) selectItem(label string, items any, searcher func(input string, index int) bool) (int, error) {
	sel := promptui.Select{
		Label:  label,
		Items:  items,
		Size:   selectSize,
		Stdin:  m.Stdin,
		Stdout: m.Stdout,
	}
	if searcher != nil {
		sel.Searcher = searcher
	}
	idx, _, err := sel.Run()
	return idx, mapError(err)
}

// rangeValidator rejects a range inline so the prompt stays open until the
// input is usable.
func rangeValidator(count int) promptui.ValidateFunc {
	return func(input string) error {
		_, err := manager.SelectRange(input, count)
		return err
	}
}

func (m *Menu) prompt(label string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Validate: validate,
		Stdin:    m.Stdin,
		Stdout:   m.Stdout,
	}
	value, err := p.Run()
	return value, mapError(err)
}

func (m *Menu) output() io.Writer {
	if m.Stdout == nil {
		return os.Stdout
	}
	return m.Stdout
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, promptui.ErrInterrupt):
		return ErrQuit
	case errors.Is(err, promptui.ErrEOF), errors.Is(err, promptui.ErrAbort):
		return ErrBack
	default:
		return err
	}
}
