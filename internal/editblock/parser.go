package editblock

import (
	"fmt"
	"strings"
)

// Block grammar markers. A search/replace block is a fenced code region whose
// first line is the file marker plus a path, followed by the SEARCH marker,
// the literal content to locate, the divider, the replacement content, and
// the REPLACE marker. A shell block is a fenced region tagged with a shell
// language containing command lines. Everything else is prose and ignored.
const (
	fileMarker    = "+++++++"
	searchMarker  = "<<<<<<< SEARCH"
	dividerMarker = "======="
	replaceMarker = ">>>>>>> REPLACE"
)

var shellLangs = map[string]bool{
	"bash":  true,
	"sh":    true,
	"shell": true,
	"zsh":   true,
}

// Parse lexes raw model output into typed, ordered edit blocks. It is total
// over well-formed input: prose is skipped, blocks are returned in document
// order. Malformed fencing returns a *PreFlightUnparsableError and no blocks,
// never a partial list.
func Parse(raw string) ([]Block, error) {
	lines := strings.Split(raw, "\n")

	var blocks []Block
	i := 0
	for i < len(lines) {
		line := strings.TrimRight(lines[i], "\r")
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			i++
			continue
		}

		lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
		next := ""
		if i+1 < len(lines) {
			next = strings.TrimRight(lines[i+1], "\r")
		}

		switch {
		case strings.HasPrefix(next, fileMarker+" "):
			block, rest, err := parseSearchReplace(lines, i)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
			i = rest
		case shellLangs[lang]:
			block, rest, err := parseShell(lines, i)
			if err != nil {
				return nil, err
			}
			if block != nil {
				blocks = append(blocks, block)
			}
			i = rest
		default:
			// Prose fence: skip to its closing fence. An unclosed prose
			// fence is harmless; only edit/shell fences must balance.
			i = skipFence(lines, i)
		}
	}

	if err := preFlightCheck(raw, blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// ParseRequired behaves like Parse but fails with *NoBlocksFoundError when
// the text contains zero recognized blocks.
func ParseRequired(raw string) ([]Block, error) {
	blocks, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, &NoBlocksFoundError{}
	}
	return blocks, nil
}

// parseSearchReplace consumes one fenced search/replace block starting at the
// fence opener index and returns the block plus the index after the closing
// fence.
func parseSearchReplace(lines []string, start int) (*SearchReplaceBlock, int, error) {
	i := start + 1 // file marker line
	header := strings.TrimRight(lines[i], "\r")
	path := strings.TrimSpace(strings.TrimPrefix(header, fileMarker))
	if path == "" {
		return nil, 0, &PreFlightUnparsableError{Reason: "file marker with empty path"}
	}

	i++
	if i >= len(lines) || strings.TrimRight(lines[i], "\r") != searchMarker {
		return nil, 0, &PreFlightUnparsableError{Reason: "expected SEARCH marker after file path in " + path}
	}

	i++
	var search []string
	for {
		if i >= len(lines) {
			return nil, 0, &PreFlightUnparsableError{Reason: "unterminated block: missing divider in " + path}
		}
		line := strings.TrimRight(lines[i], "\r")
		if line == dividerMarker {
			break
		}
		search = append(search, line)
		i++
	}

	i++
	var replace []string
	for {
		if i >= len(lines) {
			return nil, 0, &PreFlightUnparsableError{Reason: "unterminated block: missing REPLACE marker in " + path}
		}
		line := strings.TrimRight(lines[i], "\r")
		if line == replaceMarker {
			break
		}
		replace = append(replace, line)
		i++
	}

	i++
	if i >= len(lines) || strings.TrimSpace(strings.TrimRight(lines[i], "\r")) != "```" {
		return nil, 0, &PreFlightUnparsableError{Reason: "missing closing fence for " + path}
	}

	block := &SearchReplaceBlock{
		FilePath:       path,
		SearchContent:  strings.Join(search, "\n"),
		ReplaceContent: strings.Join(replace, "\n"),
		Status:         StatusPending,
	}
	return block, i + 1, nil
}

// parseShell consumes one shell-tagged fence and returns its command lines.
// A fence with no commands yields a nil block.
func parseShell(lines []string, start int) (*ShellCommandBlock, int, error) {
	i := start + 1
	var commands []string
	for {
		if i >= len(lines) {
			return nil, 0, &PreFlightUnparsableError{Reason: "unterminated shell block"}
		}
		line := strings.TrimRight(lines[i], "\r")
		if strings.TrimSpace(line) == "```" {
			break
		}
		if strings.TrimSpace(line) != "" {
			commands = append(commands, strings.TrimSpace(line))
		}
		i++
	}
	if len(commands) == 0 {
		return nil, i + 1, nil
	}
	return &ShellCommandBlock{Commands: commands, Status: StatusPending}, i + 1, nil
}

// skipFence advances past a prose fence, returning the index after its
// closing fence, or the end of input when none exists.
func skipFence(lines []string, start int) int {
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(strings.TrimRight(lines[i], "\r")) == "```" {
			return i + 1
		}
	}
	return len(lines)
}

// preFlightCheck verifies the marker lines in the raw text balance against
// the parsed blocks. A SEARCH marker stranded outside a well-formed fence
// means the model emitted a broken block that would otherwise be silently
// dropped.
func preFlightCheck(raw string, blocks []Block) error {
	searchReplaceCount := 0
	for _, b := range blocks {
		if b.Kind() == KindSearchReplace {
			searchReplaceCount++
		}
	}

	searchLines := countMarkerLines(raw, searchMarker)
	replaceLines := countMarkerLines(raw, replaceMarker)
	if searchLines != searchReplaceCount || replaceLines != searchReplaceCount {
		return &PreFlightUnparsableError{
			Reason: fmt.Sprintf("marker counts do not balance: SEARCH=%d REPLACE=%d parsed=%d",
				searchLines, replaceLines, searchReplaceCount),
		}
	}
	return nil
}

func countMarkerLines(raw, marker string) int {
	n := 0
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimRight(line, "\r") == marker {
			n++
		}
	}
	return n
}
