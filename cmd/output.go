package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/raidenhub/phim/color"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/stream"
	"github.com/raidenhub/phim/style"
	"github.com/raidenhub/phim/subtitle"
	"github.com/raidenhub/phim/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// addJSONFlag registers --json on a data command.
func addJSONFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
}

// printJSON writes v as indented JSON when --json is set and reports whether it did.
func printJSON(cmd *cobra.Command, v any) bool {
	if !lo.Must(cmd.Flags().GetBool("json")) {
		return false
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	handleErr(encoder.Encode(v))
	return true
}

var (
	titleStyle    = style.New().Bold(true).Foreground(color.HiCyan).Render
	providerStyle = style.Fg(color.Gray)
	qualityTag    = style.Tag(color.Ink, color.Purple)
	languageTag   = style.Tag(color.Ink, color.Blue)
)

func printItems(cmd *cobra.Command, items []*media.Item) {
	if printJSON(cmd, items) {
		return
	}
	if len(items) == 0 {
		cmd.Println(style.Faint("nothing found"))
		return
	}

	for i, item := range items {
		line := fmt.Sprintf("%s %s", style.Faint(fmt.Sprintf("%3d", i+1)), titleStyle(item.Title))
		if item.Year > 0 {
			line += " " + style.Faint("("+strconv.Itoa(item.Year)+")")
		}
		if item.Quality != "" {
			line += " " + qualityTag(item.Quality)
		}
		cmd.Println(line + " " + providerStyle(item.Provider))
		cmd.Println("    " + style.Faint(item.DetailURL))
	}
	cmd.Println()
	cmd.Println(style.Faint(util.Quantify(len(items), "title", "titles")))
}

func printDetail(cmd *cobra.Command, d *media.Detail) {
	if printJSON(cmd, d) {
		return
	}

	header := titleStyle(d.Title)
	if d.AltTitle != "" {
		header += " " + style.Italic(d.AltTitle)
	}
	cmd.Println(header)

	var facts []string
	if d.Year > 0 {
		facts = append(facts, strconv.Itoa(d.Year))
	}
	if d.Rating > 0 {
		facts = append(facts, fmt.Sprintf("★ %.1f", d.Rating))
	}
	if d.Country != "" {
		facts = append(facts, strings.ToUpper(d.Country))
	}
	facts = append(facts, d.Provider)
	cmd.Println(style.Faint(strings.Join(facts, " · ")))

	if d.Description != "" {
		cmd.Println()
		cmd.Println(util.Wrap(d.Description, min(util.TerminalWidth(80), 100)))
	}
	if d.Link != nil {
		cmd.Println()
		cmd.Printf("%s %s %s\n", style.Arrow, qualityTag(string(d.Link.Kind)), d.Link.URL)
	}
}

func printFiles(cmd *cobra.Command, files []media.RemoteFile) {
	if printJSON(cmd, files) {
		return
	}
	for _, f := range files {
		name := f.Name
		if f.IsFolder {
			name = style.Fg(color.Blue)(name + "/")
		} else if media.IsVideo(f.Name) {
			name = style.Fg(color.Green)(name)
		}
		cmd.Printf("%s  %s\n", style.Faint(fmt.Sprintf("%-12s", f.ID)), name)
	}
	cmd.Println(style.Faint(util.Quantify(len(files), "entry", "entries")))
}

func printStream(cmd *cobra.Command, result *stream.Result) {
	if printJSON(cmd, result) {
		return
	}
	cmd.Printf("%s %s\n", titleStyle(result.File.Name), style.Faint("share "+result.ShareKey))
	for _, c := range result.Candidates {
		marker := " "
		if c.URL == result.Best.URL {
			marker = style.Success
		}
		cmd.Printf("%s %s %s\n", marker, qualityTag(c.Quality), c.URL)
	}
}

func printSubtitles(cmd *cobra.Command, results []subtitle.Result) {
	if printJSON(cmd, results) {
		return
	}
	if len(results) == 0 {
		cmd.Println(style.Faint("no subtitles found"))
		return
	}
	for _, r := range results {
		name := lo.CoalesceOrEmpty(r.FileName, r.Label)
		cmd.Printf("%s %s %s\n", languageTag(r.Language), name, providerStyle(r.Source))
		cmd.Println("   " + style.Faint(r.URL))
	}
}
