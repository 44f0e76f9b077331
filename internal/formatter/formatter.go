// package formatter renders descriptors, search results, download history and missing-item
// reports as plain text, Markdown, CSV or JSON.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/desertthunder/ytbeets/internal/models"
	"github.com/desertthunder/ytbeets/internal/services"
	"github.com/desertthunder/ytbeets/internal/shared"
	"github.com/desertthunder/ytbeets/internal/staging"
	"github.com/desertthunder/ytbeets/internal/tasks"
)

// Format is an output format for [Render].
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat parses s into a Format. "md" is accepted for Markdown and "" for text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Ext returns the file extension used when writing f to disk.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Render renders desc in format f.
func Render(desc *models.Descriptor, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return ExportToMarkdown(desc)
	case FormatCSV:
		return ExportToCSV(desc)
	case FormatJSON:
		return shared.MarshalJSON(desc, true)
	default:
		return ExportToText(desc)
	}
}

// ExportToCSV converts a descriptor tracklist to CSV with columns:
// Number, VideoID, Title, Artist, Album, Duration, Available
func ExportToCSV(desc *models.Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Number", "VideoID", "Title", "Artist", "Album", "Duration", "Available"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range desc.Tracks {
		record := []string{
			strconv.Itoa(track.TrackNumber),
			track.VideoID,
			track.Title,
			strings.Join(trackArtists(desc, track), ", "),
			trackAlbum(desc, track),
			strconv.Itoa(track.Duration),
			strconv.FormatBool(track.Available),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a descriptor to a Markdown document with a numbered tracklist.
func ExportToMarkdown(desc *models.Descriptor) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", desc.Title)
	if artist := strings.Join(desc.ArtistNames(), ", "); artist != "" {
		fmt.Fprintf(&buf, "**Artist**: %s\n", artist)
	}
	if desc.Year != "" {
		fmt.Fprintf(&buf, "**Year**: %s\n", desc.Year)
	}
	fmt.Fprintf(&buf, "**Source**: `%s`\n", desc.SourceID)
	if desc.URL != "" {
		fmt.Fprintf(&buf, "**URL**: <%s>\n", desc.URL)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d (%s)\n\n", len(desc.Tracks), shared.FormatDuration(desc.Duration()))

	if len(desc.Tracks) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("## Tracks\n\n")
	for i, track := range desc.Tracks {
		line := fmt.Sprintf("%d. %s [%s]", number(i, track), track.Title, shared.FormatDuration(track.Duration))
		if !track.Available {
			line = fmt.Sprintf("~~%s~~ *(unavailable)*", line)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a descriptor to a plain text tracklist.
func ExportToText(desc *models.Descriptor) ([]byte, error) {
	var buf bytes.Buffer

	header := desc.String()
	if desc.Year != "" {
		header = fmt.Sprintf("%s (%s)", header, desc.Year)
	}
	fmt.Fprintf(&buf, "%s\n", header)
	fmt.Fprintf(&buf, "%s: %s\n", desc.Kind, desc.SourceID)
	if desc.URL != "" {
		fmt.Fprintf(&buf, "URL: %s\n", desc.URL)
	}

	if len(desc.Tracks) > 0 {
		buf.WriteString("\n")
	}
	for i, track := range desc.Tracks {
		mark := ""
		if !track.Available {
			mark = " (unavailable)"
		}
		fmt.Fprintf(&buf, "%2d. %s [%s]%s\n", number(i, track), track.Title, shared.FormatDuration(track.Duration), mark)
	}

	return buf.Bytes(), nil
}

// SearchResults renders results as an aligned table, numbered from 1.
func SearchResults(results []services.SearchResult) []byte {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "#\tID\tARTIST\tTITLE\tDETAIL")
	for i, r := range results {
		detail := r.Year
		if r.Kind == models.KindTrack {
			detail = shared.FormatDuration(r.Duration)
			if r.Album != "" {
				detail = r.Album + " " + detail
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, r.ID(), strings.Join(r.ArtistNames(), ", "), r.Title, detail)
	}
	w.Flush()

	return buf.Bytes()
}

// historyEntry is the JSON shape of a download record.
type historyEntry struct {
	ID         string    `json:"id"`
	Sequence   int       `json:"sequence"`
	SourceID   string    `json:"sourceId"`
	Kind       string    `json:"kind"`
	Origin     string    `json:"origin"`
	Artist     string    `json:"artist"`
	Title      string    `json:"title"`
	URL        string    `json:"url,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Files      int       `json:"files"`
	StagingDir string    `json:"stagingDir,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// History renders download records as an aligned table with relative timestamps.
func History(downloads []*models.PersistedDownload) []byte {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "SEQ\tSTATUS\tKIND\tSOURCE\tRELEASE\tFILES\tUPDATED")
	for _, d := range downloads {
		release := d.Title()
		if d.Artist() != "" {
			release = d.Artist() + " - " + release
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			d.Sequence(), d.Status(), d.Kind(), d.SourceID(), release, d.FileCount(), humanize.Time(d.UpdatedAt()))
	}
	w.Flush()

	for _, d := range downloads {
		if d.Status() == models.StatusFailed && d.Error() != "" {
			fmt.Fprintf(&buf, "\n#%d %s: %s\n", d.Sequence(), d.SourceID(), d.Error())
		}
	}

	return buf.Bytes()
}

// HistoryJSON renders download records as JSON.
func HistoryJSON(downloads []*models.PersistedDownload, pretty bool) ([]byte, error) {
	entries := make([]historyEntry, 0, len(downloads))
	for _, d := range downloads {
		entries = append(entries, historyEntry{
			ID:         d.ID(),
			Sequence:   d.Sequence(),
			SourceID:   d.SourceID(),
			Kind:       string(d.Kind()),
			Origin:     string(d.Origin()),
			Artist:     d.Artist(),
			Title:      d.Title(),
			URL:        d.URL(),
			Status:     string(d.Status()),
			Error:      d.Error(),
			Files:      d.FileCount(),
			StagingDir: d.StagingDir(),
			CreatedAt:  d.CreatedAt(),
			UpdatedAt:  d.UpdatedAt(),
		})
	}
	return shared.MarshalJSON(entries, pretty)
}

// MissingReport summarises a missing-items scan, listing each source and its items.
func MissingReport(result *tasks.MissingResult) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Scanned %d items: %d missing from %d sources\n", result.Scanned, len(result.Missing), len(result.Groups))

	for _, g := range result.Groups {
		scope := "all tracks"
		if g.Kind == models.KindTrack {
			scope = "single"
		} else if g.TrackNumbers != nil {
			nums := make([]string, len(g.TrackNumbers))
			for i, n := range g.TrackNumbers {
				nums[i] = strconv.Itoa(n)
			}
			scope = "tracks " + strings.Join(nums, ",")
		}

		status := ""
		if err, ok := result.Errors[g.SourceID]; ok {
			status = " FAILED: " + err.Error()
		}
		fmt.Fprintf(&buf, "\n%s %s (%s)%s\n", g.Kind, g.SourceID, scope, status)
		for _, item := range g.Items {
			fmt.Fprintf(&buf, "  - %s - %s\n    %s\n", item.Artist, item.Title, item.Path)
		}
	}

	if !result.DryRun && len(result.Groups) > 0 {
		fmt.Fprintf(&buf, "\nFetched %d, failed %d\n", result.Fetched, result.Failed)
	}

	return buf.Bytes()
}

// WriteExport renders desc in format f and writes it to path.
//
// When path is a directory or empty, the file is named after the descriptor source id.
func WriteExport(desc *models.Descriptor, f Format, path string) (string, error) {
	data, err := Render(desc, f)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", f, err)
	}

	name := staging.SafeComponent(desc.SourceID) + f.Ext()
	switch info, statErr := os.Stat(path); {
	case path == "":
		path = name
	case statErr == nil && info.IsDir():
		path = filepath.Join(path, name)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}

func number(i int, track models.Track) int {
	if track.TrackNumber > 0 {
		return track.TrackNumber
	}
	return i + 1
}

func trackArtists(desc *models.Descriptor, track models.Track) []string {
	if len(track.Artists) > 0 {
		return track.ArtistNames()
	}
	return desc.ArtistNames()
}

func trackAlbum(desc *models.Descriptor, track models.Track) string {
	if track.Album != "" || desc.Kind == models.KindTrack {
		return track.Album
	}
	return desc.Title
}
