package tasks

import (
	"fmt"

	"github.com/desertthunder/ytbeets/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Resolve Phase = iota
	Gate
	Check
	Download
	Tag
	Import
	Clean
	Scan
	Done
)

func (p Phase) String() string {
	switch p {
	case Resolve:
		return "resolve"
	case Gate:
		return "gate"
	case Check:
		return "check"
	case Download:
		return "download"
	case Tag:
		return "tag"
	case Import:
		return "import"
	case Clean:
		return "clean"
	case Scan:
		return "scan"
	case Done:
		return "done"
	default:
		return ""
	}
}

func resolveUpdate(req Request) ProgressUpdate {
	msg := fmt.Sprintf("Searching YouTube Music for %s - %s...", req.Artist, req.Title)
	if req.URL != "" {
		msg = fmt.Sprintf("Using %s", req.URL)
	}
	return ProgressUpdate{Phase: Resolve, Step: 1, Total: 1, Message: msg}
}

func resolvedUpdate(desc *models.Descriptor) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Resolve,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %s: %s (%d tracks)", desc.Kind, desc, len(desc.Tracks)),
		Data:    desc,
	}
}

func checkUpdate(desc *models.Descriptor) ProgressUpdate {
	return ProgressUpdate{Phase: Check, Step: 1, Total: 1, Message: fmt.Sprintf("Checking library for %s...", desc.SourceID)}
}

func downloadUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Download,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloaded %s", step, total, title),
	}
}

func downloadStartUpdate(total int, url string) ProgressUpdate {
	return ProgressUpdate{Phase: Download, Step: 0, Total: total, Message: fmt.Sprintf("Downloading %s...", url)}
}

func tagUpdate(step, total int, file string) ProgressUpdate {
	return ProgressUpdate{Phase: Tag, Step: step, Total: total, Message: fmt.Sprintf("[%d/%d] Tagged %s", step, total, file)}
}

func importUpdate(dir string) ProgressUpdate {
	return ProgressUpdate{Phase: Import, Step: 1, Total: 1, Message: fmt.Sprintf("Importing %s...", dir)}
}

func cleanUpdate(dir string) ProgressUpdate {
	return ProgressUpdate{Phase: Clean, Step: 1, Total: 1, Message: fmt.Sprintf("Removing %s", dir)}
}

func scanUpdate(step, total int, group MissingGroup) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Scan,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Re-fetching %s (%d items)", step, total, group.SourceID, len(group.Items)),
		Data:    group,
	}
}

func doneUpdate(result *Result) ProgressUpdate {
	msg := fmt.Sprintf("Done: %s", result.Descriptor)
	switch {
	case result.Skipped:
		msg = fmt.Sprintf("Skipped %s: already in library", result.Descriptor)
	case result.DryRun:
		msg = fmt.Sprintf("Dry run: would stage %s into %s", result.Descriptor, result.StagingDir)
	}
	return ProgressUpdate{Phase: Done, Step: 1, Total: 1, Message: msg, Data: result}
}
