package editblock

// Status is the apply state of a block. The parser always produces
// StatusPending; only the Applier moves a block to applied or failed.
type Status string

const (
	StatusPending Status = "pending"
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
)

// Kind discriminates the block union.
type Kind string

const (
	KindSearchReplace Kind = "search_replace"
	KindShellCommand  Kind = "shell_command"
)

// Block is a parsed, typed instruction extracted from model output.
// Implementations are *SearchReplaceBlock and *ShellCommandBlock.
type Block interface {
	Kind() Kind
	BlockStatus() Status
}

// SearchReplaceBlock is a find/replace instruction against one file.
type SearchReplaceBlock struct {
	FilePath       string
	SearchContent  string
	ReplaceContent string
	Status         Status
	StatusMessage  string
}

func (b *SearchReplaceBlock) Kind() Kind          { return KindSearchReplace }
func (b *SearchReplaceBlock) BlockStatus() Status { return b.Status }

// ShellCommandBlock is a post-edit shell command sequence.
type ShellCommandBlock struct {
	Commands      []string
	Status        Status
	StatusMessage string
}

func (b *ShellCommandBlock) Kind() Kind          { return KindShellCommand }
func (b *ShellCommandBlock) BlockStatus() Status { return b.Status }

// EditedFiles returns the distinct file paths targeted by search/replace
// blocks, in first-seen order.
func EditedFiles(blocks []Block) []string {
	seen := map[string]bool{}
	var paths []string
	for _, b := range blocks {
		sr, ok := b.(*SearchReplaceBlock)
		if !ok {
			continue
		}
		if !seen[sr.FilePath] {
			seen[sr.FilePath] = true
			paths = append(paths, sr.FilePath)
		}
	}
	return paths
}
