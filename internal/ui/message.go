package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/services"
	"github.com/desertthunder/ytbeets/internal/tasks"
)

// MsgKind enumerates all message types in the picker.
type MsgKind int

// Msg represents all possible messages in the picker (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgResultsFetched MsgKind = iota
	MsgDescriptorFetched
	MsgProgressUpdate
	MsgRunComplete
)

type resultsPayload struct {
	results []services.SearchResult
	err     error
}

type descriptorPayload struct {
	desc *models.Descriptor
	err  error
}

type completePayload struct {
	result *tasks.Result
	err    error
}

// resultsFetchedMsg is the constructor for [MsgResultsFetched]
func resultsFetchedMsg(results []services.SearchResult, err error) Msg {
	return Msg{kind: MsgResultsFetched, data: resultsPayload{results, err}}
}

// descriptorFetchedMsg is the constructor for [MsgDescriptorFetched]
func descriptorFetchedMsg(desc *models.Descriptor, err error) Msg {
	return Msg{kind: MsgDescriptorFetched, data: descriptorPayload{desc, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// runCompleteMsg is the constructor for [MsgRunComplete]
func runCompleteMsg(result *tasks.Result, err error) Msg {
	return Msg{kind: MsgRunComplete, data: completePayload{result, err}}
}
